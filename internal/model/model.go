// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package model holds the server-side shapes of portal resources as they are
// decoded from API responses.
package model

import "encoding/json"

// Tenancy is the summary of a tenancy (project) the user belongs to.
type Tenancy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Quota is the allocation and usage of one resource within a tenancy.
type Quota struct {
	Resource  string `json:"resource"`
	Label     string `json:"label,omitempty"`
	Units     string `json:"units,omitempty"`
	Allocated int    `json:"allocated"`
	Used      int    `json:"used"`
}

// Image is a machine image available to a tenancy.
type Image struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsPublic   bool   `json:"is_public"`
	NATAllowed bool   `json:"nat_allowed"`
}

// Size is a machine flavour.
type Size struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	CPUs int    `json:"cpus"`
	RAM  int    `json:"ram"`
	Disk int    `json:"disk"`
}

// ExternalIP is a floating address and the machine it is attached to.
type ExternalIP struct {
	ExternalIP string `json:"external_ip"`
	MachineID  string `json:"machine_id,omitempty"`
	Available  bool   `json:"available"`
}

// Volume statuses reported while the server works on a volume.
const (
	VolumeCreating  = "CREATING"
	VolumeDeleting  = "DELETING"
	VolumeAttaching = "ATTACHING"
	VolumeDetaching = "DETACHING"
)

// Volume is a block storage volume.
type Volume struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Size      int    `json:"size"`
	MachineID string `json:"machine_id,omitempty"`
	Device    string `json:"device,omitempty"`
}

// IsActive reports whether the server is still working on the volume.
func (v Volume) IsActive() bool {
	switch v.Status {
	case VolumeCreating, VolumeDeleting, VolumeAttaching, VolumeDetaching:
		return true
	default:
		return false
	}
}

// MachineStatusBuild is the status type of a machine that is being built.
const MachineStatusBuild = "BUILD"

// MachineStatus is the server's view of a machine's state.
type MachineStatus struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
}

// Machine is a virtual machine.
type Machine struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	ImageID    string        `json:"image_id,omitempty"`
	SizeID     string        `json:"size_id,omitempty"`
	Status     MachineStatus `json:"status"`
	PowerState string        `json:"power_state,omitempty"`
	Task       string        `json:"task,omitempty"`
	InternalIP string        `json:"internal_ip,omitempty"`
	ExternalIP string        `json:"external_ip,omitempty"`
	NATAllowed bool          `json:"nat_allowed"`
	Owner      string        `json:"owner,omitempty"`
	Created    Timestamp     `json:"created"`
}

// IsActive reports whether the machine has an in-progress server operation.
func (m Machine) IsActive() bool {
	return m.Status.Type == MachineStatusBuild || m.Task != ""
}

// ClusterType is a kind of cluster the tenancy can deploy.
type ClusterType struct {
	Name        string          `json:"name"`
	Label       string          `json:"label,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Cluster statuses reported while the server works on a cluster.
const (
	ClusterConfiguring = "CONFIGURING"
	ClusterDeleting    = "DELETING"
	ClusterReady       = "READY"
	ClusterError       = "ERROR"
)

// Cluster is a deployed cluster.
type Cluster struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	ClusterType     string         `json:"cluster_type"`
	Status          string         `json:"status"`
	Task            string         `json:"task,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	ParameterValues map[string]any `json:"parameter_values,omitempty"`
	Created         Timestamp      `json:"created"`
	Updated         Timestamp      `json:"updated"`
	PatchedAt       *Timestamp     `json:"patched,omitempty"`
}

// IsActive reports whether the server is still working on the cluster.
func (c Cluster) IsActive() bool {
	return c.Status == ClusterConfiguring || c.Status == ClusterDeleting || c.Task != ""
}
