package layout

import (
	"github.com/diskmason/diskmason/inventory"
)

// DeviceModification groups the planned partition changes for one
// physical device. Wipe discards the existing partition table before
// anything else runs.
type DeviceModification struct {
	Device     inventory.DeviceInfo
	Wipe       bool
	Partitions []*PartitionModification
}

func NewDeviceModification(device inventory.DeviceInfo, wipe bool) *DeviceModification {
	return &DeviceModification{Device: device, Wipe: wipe}
}

func (d *DeviceModification) AddPartition(part *PartitionModification) {
	d.Partitions = append(d.Partitions, part)
}

func (d *DeviceModification) GetPartition(id string) (*PartitionModification, bool) {
	for _, part := range d.Partitions {
		if part.Id == id {
			return part, true
		}
	}
	return nil, false
}

func (d *DeviceModification) EFIPartition() *PartitionModification {
	for _, part := range d.Partitions {
		if part.Status == StatusDelete {
			continue
		}
		if part.IsEFI() {
			return part
		}
	}
	return nil
}

// BootPartition picks the partition the boot loader lives on. An
// XBOOTLDR partition only counts when a separate EFI system partition
// is present; otherwise the ESP carries the boot loader itself.
func (d *DeviceModification) BootPartition() *PartitionModification {
	if efi := d.EFIPartition(); efi != nil {
		for _, part := range d.Partitions {
			if part.Status == StatusDelete || part.Id == efi.Id {
				continue
			}
			if part.HasFlag(inventory.FlagXBootLdr) {
				return part
			}
		}
		return efi
	}
	for _, part := range d.Partitions {
		if part.Status == StatusDelete {
			continue
		}
		if part.IsBoot() {
			return part
		}
	}
	return nil
}

func (d *DeviceModification) RootPartition() *PartitionModification {
	for _, part := range d.Partitions {
		if part.Status == StatusDelete {
			continue
		}
		if part.IsRoot() {
			return part
		}
	}
	return nil
}

func (d *DeviceModification) SwapPartition() *PartitionModification {
	for _, part := range d.Partitions {
		if part.Status == StatusDelete {
			continue
		}
		if part.IsSwap() {
			return part
		}
	}
	return nil
}
