// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/ManuGH/cloudportal/internal/slice"
)

// MachineSpec is the body of a machine creation request.
type MachineSpec struct {
	Name    string `json:"name"`
	ImageID string `json:"image_id"`
	SizeID  string `json:"size_id"`
}

// VolumeSpec is the body of a volume creation request.
type VolumeSpec struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// ClusterSpec is the body of a cluster creation request.
type ClusterSpec struct {
	Name            string         `json:"name"`
	ClusterType     string         `json:"cluster_type"`
	ParameterValues map[string]any `json:"parameter_values"`
}

// attachment is the body used to (de)associate a volume or external IP with a
// machine. A nil MachineID detaches.
type attachment struct {
	MachineID *string `json:"machine_id"`
}

type volumeSize struct {
	Size int `json:"size"`
}

func act(def interface {
	Act(name, tenancyID, id string, body any, extra ...string) (event.Event, bool)
}, name, tenancyID, id string, body any, extra ...string) event.Event {
	ev, ok := def.Act(name, tenancyID, id, body, extra...)
	if !ok {
		panic("resources: unregistered action " + name)
	}
	return ev
}

// CreateMachine asks for a new machine.
func CreateMachine(tenancyID string, spec MachineSpec) event.Event {
	return Machines.Create(tenancyID, spec)
}

// DeleteMachine asks for a machine to be deleted.
func DeleteMachine(tenancyID, machineID string) event.Event {
	return Machines.Delete(tenancyID, machineID)
}

// StartMachine powers a machine on.
func StartMachine(tenancyID, machineID string) event.Event {
	return act(Machines, ActionStart, tenancyID, machineID, nil)
}

// StopMachine powers a machine off.
func StopMachine(tenancyID, machineID string) event.Event {
	return act(Machines, ActionStop, tenancyID, machineID, nil)
}

// RestartMachine reboots a machine.
func RestartMachine(tenancyID, machineID string) event.Event {
	return act(Machines, ActionRestart, tenancyID, machineID, nil)
}

// AttachNewVolume creates a volume of the given size and attaches it to the
// machine.
func AttachNewVolume(tenancyID, machineID string, size int) event.Event {
	return act(Machines, ActionAttachVolume, tenancyID, machineID, volumeSize{Size: size})
}

// DetachMachineVolume detaches a volume through the machine's endpoint.
func DetachMachineVolume(tenancyID, machineID, volumeID string) event.Event {
	return act(Machines, ActionDetachVolume, tenancyID, machineID, nil, volumeID)
}

// CreateVolume asks for a new volume.
func CreateVolume(tenancyID string, spec VolumeSpec) event.Event {
	return Volumes.Create(tenancyID, spec)
}

// DeleteVolume asks for a volume to be deleted.
func DeleteVolume(tenancyID, volumeID string) event.Event {
	return Volumes.Delete(tenancyID, volumeID)
}

// AttachVolume attaches a volume to a machine; an empty machineID detaches it.
func AttachVolume(tenancyID, volumeID, machineID string) event.Event {
	return Volumes.Update(tenancyID, volumeID, newAttachment(machineID))
}

// AllocateExternalIP asks for a new external IP for the tenancy.
func AllocateExternalIP(tenancyID string) event.Event {
	return ExternalIPs.Create(tenancyID, struct{}{})
}

// AssignExternalIP associates an external IP with a machine; an empty
// machineID releases the association.
func AssignExternalIP(tenancyID, ip, machineID string) event.Event {
	return ExternalIPs.Update(tenancyID, ip, newAttachment(machineID))
}

// CreateCluster asks for a new cluster.
func CreateCluster(tenancyID string, spec ClusterSpec) event.Event {
	return Clusters.Create(tenancyID, spec)
}

// UpdateCluster changes a cluster's parameter values.
func UpdateCluster(tenancyID, clusterID string, params map[string]any) event.Event {
	return Clusters.Update(tenancyID, clusterID, map[string]any{"parameter_values": params})
}

// PatchCluster asks the server to apply pending patches to a cluster.
func PatchCluster(tenancyID, clusterID string) event.Event {
	return act(Clusters, ActionPatch, tenancyID, clusterID, nil)
}

// DeleteCluster asks for a cluster to be deleted.
func DeleteCluster(tenancyID, clusterID string) event.Event {
	return Clusters.Delete(tenancyID, clusterID)
}

func newAttachment(machineID string) attachment {
	if machineID == "" {
		return attachment{}
	}
	return attachment{MachineID: &machineID}
}

// ActionKinds returns the kinds of a named action of a resource.
func ActionKinds(r slice.Resource, name string) (slice.Triple, bool) {
	for _, a := range r.Actions() {
		if a.Name == name {
			return a.Kinds, true
		}
	}
	return slice.Triple{}, false
}
