package inventory

import (
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
)

// Manager provides authoritative device snapshots. Every listing
// re-probes the kernel; there is no cache to go stale while partitions
// are created and renumbered.
type Manager interface {
	ListDevices() (Snapshot, error)
}

type manager struct {
	prober Prober
	logger boshlog.Logger
	logTag string
}

func NewManager(prober Prober, logger boshlog.Logger) Manager {
	return manager{
		prober: prober,
		logger: logger,
		logTag: "inventoryManager",
	}
}

func (m manager) ListDevices() (Snapshot, error) {
	devices, err := m.prober.Probe()
	if err != nil {
		return Snapshot{}, err
	}
	m.logger.Debug(m.logTag, "Probed %d block devices", len(devices))
	return Snapshot{Devices: devices}, nil
}

// Snapshot is one probe's view of the device tree. Lookups that miss
// return false rather than an error; callers decide whether absence is
// fatal.
type Snapshot struct {
	Devices []DeviceInfo
}

func (s Snapshot) GetDevice(path string) (DeviceInfo, bool) {
	for _, d := range s.Devices {
		if d.Path == path {
			return d, true
		}
	}
	return DeviceInfo{}, false
}

func (s Snapshot) GetPartition(path string) (PartitionInfo, bool) {
	for _, d := range s.Devices {
		if p, found := d.GetPartition(path); found {
			return p, true
		}
	}
	return PartitionInfo{}, false
}

func (s Snapshot) FindPartitionByPartUUID(partUUID string) (PartitionInfo, bool) {
	if partUUID == "" {
		return PartitionInfo{}, false
	}
	for _, d := range s.Devices {
		for _, p := range d.Partitions {
			if p.PartUUID == partUUID {
				return p, true
			}
		}
	}
	return PartitionInfo{}, false
}

// PartUUIDs collects the partition identities present in the snapshot,
// used to notice partitions that appear between probes.
func (s Snapshot) PartUUIDs() map[string]struct{} {
	seen := map[string]struct{}{}
	for _, d := range s.Devices {
		for _, p := range d.Partitions {
			if p.PartUUID != "" {
				seen[p.PartUUID] = struct{}{}
			}
		}
	}
	return seen
}
