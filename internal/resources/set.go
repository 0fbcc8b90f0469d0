// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/ManuGH/cloudportal/internal/model"
	"github.com/ManuGH/cloudportal/internal/slice"
)

// Set holds the eight resource caches of the current tenancy. Each slice is
// lifecycled independently.
type Set struct {
	Quotas       slice.State[model.Quota]       `json:"quotas"`
	Images       slice.State[model.Image]       `json:"images"`
	Sizes        slice.State[model.Size]        `json:"sizes"`
	ExternalIPs  slice.State[model.ExternalIP]  `json:"external_ips"`
	Volumes      slice.State[model.Volume]      `json:"volumes"`
	Machines     slice.State[model.Machine]     `json:"machines"`
	ClusterTypes slice.State[model.ClusterType] `json:"cluster_types"`
	Clusters     slice.State[model.Cluster]     `json:"clusters"`
}

// Reduce forwards ev to every slice reducer.
func (s Set) Reduce(ev event.Event) Set {
	s.Quotas = Quotas.Reduce(s.Quotas, ev)
	s.Images = Images.Reduce(s.Images, ev)
	s.Sizes = Sizes.Reduce(s.Sizes, ev)
	s.ExternalIPs = ExternalIPs.Reduce(s.ExternalIPs, ev)
	s.Volumes = Volumes.Reduce(s.Volumes, ev)
	s.Machines = Machines.Reduce(s.Machines, ev)
	s.ClusterTypes = ClusterTypes.Reduce(s.ClusterTypes, ev)
	s.Clusters = Clusters.Reduce(s.Clusters, ev)
	return s
}

// FetchAll returns one list request per resource kind for the tenancy.
func FetchAll(tenancyID string) []event.Event {
	out := make([]event.Event, 0, len(All))
	for _, r := range All {
		out = append(out, r.FetchList(tenancyID))
	}
	return out
}

// ListFailure reports whether kind is the list-failure kind of a resource and
// returns that resource.
func ListFailure(kind event.Kind) (slice.Resource, bool) {
	for _, r := range All {
		if r.Kinds().FetchListFailed == kind {
			return r, true
		}
	}
	return nil, false
}
