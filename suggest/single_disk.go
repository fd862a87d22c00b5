package suggest

import (
	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

// SingleDisk plans a wiped GPT layout on one device: a 1 GiB FAT32
// boot partition at the first aligned sector, then a root partition.
// With a separate /home requested (and the device large enough) the
// root is clamped to a tenth of the device within [32 GiB, 50 GiB] and
// /home takes the rest; with btrfs subvolumes requested the root takes
// everything and carries the default subvolume scheme instead. The
// last partition always runs to the last usable sector, so the plan
// tiles the device exactly.
func SingleDisk(device inventory.DeviceInfo, opts Options) (*layout.DeviceModification, error) {
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
	available := (span.End - rootStart + 1) * ss.Value

	useSubvols := opts.useSubvolumes()
	useHome := opts.SeparateHome && !useSubvols && deviceBytes(device) >= minHomeDeviceBytes

	rootBytes := available
	if useHome {
		rootBytes = clampRootBytes(deviceBytes(device) / 10)
	}

	rootMountpoint := "/"
	if useSubvols {
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
	if useSubvols {
		root.BtrfsSubvols = DefaultBtrfsScheme()
	}
	mod.AddPartition(root)

	if useHome {
		homeStart := rootStart + rootBytes/ss.Value
		homeBytes := (span.End - homeStart + 1) * ss.Value

		home, err := layout.NewCreatePartition(
			layout.PartitionTypePrimary,
			unit.NewSize(homeStart*ss.Value, unit.B),
			unit.NewSize(homeBytes, unit.B),
			opts.FsType,
			"/home",
		)
		if err != nil {
			return nil, err
		}
		home.MountOptions = defaultMountOptions(opts.FsType)
		mod.AddPartition(home)
	}

	return mod, nil
}
