package layout

import (
	"fmt"
)

type LayoutType string

const (
	// LayoutDefault is a generated layout for one or more wiped disks.
	LayoutDefault LayoutType = "default_layout"
	// LayoutManual is a user-assembled set of modifications.
	LayoutManual LayoutType = "manual_partitioning"
	// LayoutPreMounted skips provisioning entirely: the target tree is
	// already assembled under MountPointPath.
	LayoutPreMounted LayoutType = "pre_mounted_config"
)

// DiskLayoutConfiguration is the root of the modification model: the
// layout kind, the per-device partition plans and the optional LVM
// plan on top of them.
type DiskLayoutConfiguration struct {
	Type          LayoutType
	Modifications []*DeviceModification
	LvmConfig     *LvmConfiguration

	// MountPointPath is where a pre-mounted tree lives. Set exactly for
	// pre-mounted layouts.
	MountPointPath string
}

func NewDiskLayoutConfiguration(
	layoutType LayoutType,
	modifications []*DeviceModification,
	lvmConfig *LvmConfiguration,
	mountPointPath string,
) (*DiskLayoutConfiguration, error) {
	switch layoutType {
	case LayoutPreMounted:
		if mountPointPath == "" {
			return nil, InvalidStateError{Reason: "a pre-mounted layout requires a mount point path"}
		}
	case LayoutDefault, LayoutManual:
		if mountPointPath != "" {
			return nil, InvalidStateError{
				Reason: fmt.Sprintf("a mount point path is only valid for pre-mounted layouts, not '%s'", layoutType),
			}
		}
	default:
		return nil, InvalidStateError{Reason: fmt.Sprintf("unknown layout type '%s'", layoutType)}
	}

	return &DiskLayoutConfiguration{
		Type:           layoutType,
		Modifications:  modifications,
		LvmConfig:      lvmConfig,
		MountPointPath: mountPointPath,
	}, nil
}

// FindPartition resolves an opaque partition Id across every device.
func (c *DiskLayoutConfiguration) FindPartition(id string) (*PartitionModification, bool) {
	for _, mod := range c.Modifications {
		if part, found := mod.GetPartition(id); found {
			return part, true
		}
	}
	return nil, false
}

// FindVolume resolves an opaque logical volume Id.
func (c *DiskLayoutConfiguration) FindVolume(id string) (*LvmVolume, bool) {
	if c.LvmConfig == nil {
		return nil, false
	}
	for _, group := range c.LvmConfig.VolGroups {
		if vol, found := group.GetVolume(id); found {
			return vol, true
		}
	}
	return nil, false
}
