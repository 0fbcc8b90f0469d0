// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package resources declares the eight tenancy-scoped resource caches and the
// resource-specific operations on top of the uniform slice taxonomy.
package resources

import (
	"net/http"

	"github.com/ManuGH/cloudportal/internal/model"
	"github.com/ManuGH/cloudportal/internal/slice"
)

// Per-item action names.
const (
	ActionStart        = "START"
	ActionStop         = "STOP"
	ActionRestart      = "RESTART"
	ActionAttachVolume = "ATTACH_VOLUME"
	ActionDetachVolume = "DETACH_VOLUME"
	ActionPatch        = "PATCH"
)

var (
	Quotas = slice.New("QUOTA", "quotas",
		func(q model.Quota) string { return q.Resource })

	Images = slice.New("IMAGE", "images",
		func(i model.Image) string { return i.ID })

	Sizes = slice.New("SIZE", "sizes",
		func(s model.Size) string { return s.ID })

	ExternalIPs = slice.New("EXTERNAL_IP", "external_ips",
		func(ip model.ExternalIP) string { return ip.ExternalIP })

	Volumes = slice.New("VOLUME", "volumes",
		func(v model.Volume) string { return v.ID },
		slice.WithActive(model.Volume.IsActive))

	Machines = slice.New("MACHINE", "machines",
		func(m model.Machine) string { return m.ID },
		slice.WithActive(model.Machine.IsActive),
		slice.WithTransform(normalizeMachine),
		slice.WithAction[model.Machine](ActionStart, http.MethodPost, "start/", slice.FlagActionInProgress, true),
		slice.WithAction[model.Machine](ActionStop, http.MethodPost, "stop/", slice.FlagActionInProgress, true),
		slice.WithAction[model.Machine](ActionRestart, http.MethodPost, "restart/", slice.FlagActionInProgress, true),
		slice.WithAction[model.Machine](ActionAttachVolume, http.MethodPost, "volumes/", slice.FlagAttachingVolume, false),
		slice.WithAction[model.Machine](ActionDetachVolume, http.MethodDelete, "volumes/", slice.FlagDetachingVolume, false))

	ClusterTypes = slice.New("CLUSTER_TYPE", "cluster_types",
		func(ct model.ClusterType) string { return ct.Name },
		slice.AsProbe[model.ClusterType]())

	Clusters = slice.New("CLUSTER", "clusters",
		func(c model.Cluster) string { return c.ID },
		slice.WithActive(model.Cluster.IsActive),
		slice.WithTransform(normalizeCluster),
		slice.AsProbe[model.Cluster](),
		slice.WithAction[model.Cluster](ActionPatch, http.MethodPost, "patch/", slice.FlagActionInProgress, true))
)

// All lists every resource kind in fan-out order.
var All = []slice.Resource{Quotas, Images, Sizes, ExternalIPs, Volumes, Machines, ClusterTypes, Clusters}

// Lookup returns the resource owning kind, if any.
func Lookup(kind string) (slice.Resource, bool) {
	for _, r := range All {
		if r.Name() == kind {
			return r, true
		}
	}
	return nil, false
}

func normalizeMachine(m model.Machine) model.Machine {
	m.Created.Time = m.Created.UTC()
	return m
}

func normalizeCluster(c model.Cluster) model.Cluster {
	c.Created.Time = c.Created.UTC()
	c.Updated.Time = c.Updated.UTC()
	if c.PatchedAt != nil {
		c.PatchedAt = &model.Timestamp{Time: c.PatchedAt.UTC()}
	}
	return c
}
