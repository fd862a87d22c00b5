// Package suggest synthesizes disk layout plans for the common cases:
// one disk, several disks, and LVM on top of a generated layout. All
// functions are pure; nothing here touches a device.
package suggest

import (
	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

const (
	bootPartitionBytes uint64 = 1 << 30

	// Root sizing when a separate /home partition is requested: a tenth
	// of the device, clamped.
	minRootBytes uint64 = 32 << 30
	maxRootBytes uint64 = 50 << 30

	// A separate /home needs this much total device capacity, whether
	// on the same disk or its own.
	minHomeDeviceBytes uint64 = 40 << 30

	// Multi-disk root device selection aims for this capacity.
	rootDeviceTargetBytes uint64 = 32 << 30

	// Fixed root logical volume size for LVM suggestions.
	lvmRootBytes uint64 = 20 << 30
)

// Options steer the suggestion engines. Subvolumes only applies when
// FsType is btrfs.
type Options struct {
	FsType       inventory.FilesystemType
	SeparateHome bool
	Subvolumes   bool
}

func (o Options) useSubvolumes() bool {
	return o.FsType == inventory.FilesystemBtrfs && o.Subvolumes
}

// DefaultBtrfsScheme is the subvolume set attached to a btrfs root in
// lieu of a separate /home partition.
func DefaultBtrfsScheme() []layout.SubvolumeModification {
	return []layout.SubvolumeModification{
		{Name: "@", Mountpoint: "/"},
		{Name: "@home", Mountpoint: "/home"},
		{Name: "@log", Mountpoint: "/var/log"},
		{Name: "@pkg", Mountpoint: "/var/cache/pacman/pkg"},
	}
}

func defaultMountOptions(fsType inventory.FilesystemType) layout.MountOptions {
	if fsType == inventory.FilesystemBtrfs {
		return layout.MountOptions{}.Set("compress=zstd")
	}
	return nil
}

func deviceBytes(device inventory.DeviceInfo) uint64 {
	bytes, err := device.TotalSize.BytesCtx(unit.Context{SectorSize: device.SectorSize})
	if err != nil {
		return 0
	}
	return bytes
}

func alignDownBytes(b uint64) uint64 {
	return b - b%inventory.DefaultAlignmentBytes
}

func clampRootBytes(b uint64) uint64 {
	b = alignDownBytes(b)
	if b < minRootBytes {
		return minRootBytes
	}
	if b > maxRootBytes {
		return maxRootBytes
	}
	return b
}

func newBootPartition(startSector uint64, ss unit.SectorSize) (*layout.PartitionModification, error) {
	boot, err := layout.NewCreatePartition(
		layout.PartitionTypePrimary,
		unit.NewSize(startSector*ss.Value, unit.B),
		unit.NewSize(bootPartitionBytes, unit.B),
		inventory.FilesystemFat32,
		"/boot",
	)
	if err != nil {
		return nil, err
	}
	boot.SetFlag(inventory.FlagBoot)
	boot.SetFlag(inventory.FlagESP)
	return boot, nil
}
