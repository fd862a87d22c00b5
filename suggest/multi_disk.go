package suggest

import (
	"fmt"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

// InsufficientCapacity reports that no device combination meets the
// suggestion minimums. It is an expected planning outcome, reported to
// the caller rather than raised as an error.
type InsufficientCapacity struct {
	Reason string
}

func (i InsufficientCapacity) String() string {
	return i.Reason
}

// MultiDiskSuggestion carries either a workable plan or the reason
// none exists.
type MultiDiskSuggestion struct {
	Modifications []*layout.DeviceModification
	Insufficient  *InsufficientCapacity
}

// MultiDisk spreads the layout across devices: /home goes to the
// largest device of at least 40 GiB, root and boot go to the remaining
// device whose capacity sits closest to a 32 GiB target. When btrfs
// subvolumes are requested the root device carries the default scheme
// minus @home, since /home lives on its own disk.
func MultiDisk(devices []inventory.DeviceInfo, opts Options) (MultiDiskSuggestion, error) {
	homeIdx := -1
	var homeCapacity uint64
	for i := range devices {
		capacity := deviceBytes(devices[i])
		if capacity >= minHomeDeviceBytes && capacity > homeCapacity {
			homeIdx = i
			homeCapacity = capacity
		}
	}
	if homeIdx < 0 {
		return insufficient("no device offers the %s minimum for a /home partition",
			unit.NewSize(minHomeDeviceBytes, unit.B).FormatHighest()), nil
	}

	rootIdx := -1
	var bestDistance uint64
	for i := range devices {
		if i == homeIdx {
			continue
		}
		capacity := deviceBytes(devices[i])
		if capacity <= bootPartitionBytes+2*inventory.DefaultAlignmentBytes {
			continue
		}
		distance := capacity - rootDeviceTargetBytes
		if capacity < rootDeviceTargetBytes {
			distance = rootDeviceTargetBytes - capacity
		}
		if rootIdx < 0 || distance < bestDistance {
			rootIdx = i
			bestDistance = distance
		}
	}
	if rootIdx < 0 {
		return insufficient("no second device can hold the boot and root partitions"), nil
	}

	rootMod, err := suggestRootDevice(devices[rootIdx], opts)
	if err != nil {
		return MultiDiskSuggestion{}, err
	}
	homeMod, err := suggestHomeDevice(devices[homeIdx], opts)
	if err != nil {
		return MultiDiskSuggestion{}, err
	}

	return MultiDiskSuggestion{
		Modifications: []*layout.DeviceModification{rootMod, homeMod},
	}, nil
}

func insufficient(format string, args ...interface{}) MultiDiskSuggestion {
	return MultiDiskSuggestion{
		Insufficient: &InsufficientCapacity{Reason: fmt.Sprintf(format, args...)},
	}
}

func suggestRootDevice(device inventory.DeviceInfo, opts Options) (*layout.DeviceModification, error) {
	span, err := usableSpan(device)
	if err != nil {
		return nil, err
	}
	ss := device.SectorSize

	mod := layout.NewDeviceModification(device, true)

	boot, err := newBootPartition(span.Start, ss)
	if err != nil {
		return nil, err
	}
	mod.AddPartition(boot)

	rootStart := span.Start + bootPartitionBytes/ss.Value
	rootBytes := (span.End - rootStart + 1) * ss.Value

	rootMountpoint := "/"
	if opts.useSubvolumes() {
		rootMountpoint = ""
	}

	root, err := layout.NewCreatePartition(
		layout.PartitionTypePrimary,
		unit.NewSize(rootStart*ss.Value, unit.B),
		unit.NewSize(rootBytes, unit.B),
		opts.FsType,
		rootMountpoint,
	)
	if err != nil {
		return nil, err
	}
	root.MountOptions = defaultMountOptions(opts.FsType)
	if opts.useSubvolumes() {
		for _, subvol := range DefaultBtrfsScheme() {
			if subvol.Mountpoint == "/home" {
				continue
			}
			root.BtrfsSubvols = append(root.BtrfsSubvols, subvol)
		}
	}
	mod.AddPartition(root)

	return mod, nil
}

func suggestHomeDevice(device inventory.DeviceInfo, opts Options) (*layout.DeviceModification, error) {
	span, err := usableSpan(device)
	if err != nil {
		return nil, err
	}
	ss := device.SectorSize

	mod := layout.NewDeviceModification(device, true)

	home, err := layout.NewCreatePartition(
		layout.PartitionTypePrimary,
		unit.NewSize(span.Start*ss.Value, unit.B),
		unit.NewSize(span.Sectors()*ss.Value, unit.B),
		opts.FsType,
		"/home",
	)
	if err != nil {
		return nil, err
	}
	home.MountOptions = defaultMountOptions(opts.FsType)
	mod.AddPartition(home)

	return mod, nil
}
