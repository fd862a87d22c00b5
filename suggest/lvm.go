package suggest

import (
	bosherr "github.com/cloudfoundry/bosh-utils/errors"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

// Lvm wraps every non-boot partition of a generated layout into one
// volume group. The partitions become bare physical volumes; their
// filesystems move onto the logical volumes: a fixed 20 GiB root and a
// /home volume across the remainder, or a single root volume with the
// btrfs subvolume scheme when subvolumes are requested. The volume
// consuming the remainder is realized with whatever space the group
// actually has left.
func Lvm(cfg *layout.DiskLayoutConfiguration, vgName string, opts Options) (*layout.LvmConfiguration, error) {
	if cfg.Type != layout.LayoutDefault {
		return nil, layout.InvalidStateError{
			Reason: "an LVM suggestion requires a default layout",
		}
	}

	var pvs []*layout.PartitionModification
	var totalPvBytes uint64
	for _, mod := range cfg.Modifications {
		for _, part := range mod.Partitions {
			if part.Status == layout.StatusDelete || part.IsBoot() {
				continue
			}

			lengthBytes, err := part.Length.BytesCtx(unit.Context{SectorSize: mod.Device.SectorSize})
			if err != nil {
				return nil, bosherr.WrapErrorf(err, "Normalizing length of partition `%s'", part.Id)
			}

			part.FsType = inventory.FilesystemNone
			part.Mountpoint = ""
			part.MountOptions = nil
			part.BtrfsSubvols = nil
			part.Formattable = part.Status == layout.StatusCreate

			pvs = append(pvs, part)
			totalPvBytes += lengthBytes
		}
	}

	if len(pvs) == 0 {
		return nil, layout.InvalidStateError{
			Reason: "the layout has no partitions usable as physical volumes",
		}
	}
	if totalPvBytes <= lvmRootBytes {
		return nil, bosherr.Errorf(
			"Volume group `%s' would hold %s, smaller than the %s root volume",
			vgName,
			unit.NewSize(totalPvBytes, unit.B).FormatHighest(),
			unit.NewSize(lvmRootBytes, unit.B).FormatHighest(),
		)
	}

	var volumes []*layout.LvmVolume
	if opts.useSubvolumes() {
		root, err := layout.NewLvmVolume("root", opts.FsType, unit.NewSize(totalPvBytes, unit.B), "")
		if err != nil {
			return nil, err
		}
		root.MountOptions = defaultMountOptions(opts.FsType)
		root.BtrfsSubvols = DefaultBtrfsScheme()
		volumes = append(volumes, root)
	} else {
		root, err := layout.NewLvmVolume("root", opts.FsType, unit.NewSize(lvmRootBytes, unit.B), "/")
		if err != nil {
			return nil, err
		}
		root.MountOptions = defaultMountOptions(opts.FsType)

		home, err := layout.NewLvmVolume("home", opts.FsType, unit.NewSize(totalPvBytes-lvmRootBytes, unit.B), "/home")
		if err != nil {
			return nil, err
		}
		home.MountOptions = defaultMountOptions(opts.FsType)

		volumes = append(volumes, root, home)
	}

	group, err := layout.NewLvmVolumeGroup(vgName, pvs, volumes)
	if err != nil {
		return nil, err
	}
	return layout.NewLvmConfiguration(group)
}
