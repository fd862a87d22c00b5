package layout

import (
	"fmt"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/unit"
)

type LvmLayoutType string

const LvmLayoutDefault LvmLayoutType = "default"

// LvmVolume is a planned logical volume. Like partitions, volumes carry
// an opaque stable Id so encryption configs can reference them.
type LvmVolume struct {
	Id     string
	Status ModificationStatus
	Name   string

	FsType inventory.FilesystemType
	Length unit.Size

	Mountpoint   string
	MountOptions MountOptions
	BtrfsSubvols []SubvolumeModification

	// DevPath is the /dev/<vg>/<lv> mapper path and Uuid the filesystem
	// UUID, both filled in by the executor once the volume exists.
	DevPath string
	Uuid    string
}

func NewLvmVolume(name string, fsType inventory.FilesystemType, length unit.Size, mountpoint string) (*LvmVolume, error) {
	if name == "" {
		return nil, InvalidStateError{Reason: "a logical volume requires a name"}
	}

	id, err := idGenerator.Generate()
	if err != nil {
		return nil, err
	}

	return &LvmVolume{
		Id:         id,
		Status:     StatusCreate,
		Name:       name,
		FsType:     fsType,
		Length:     length,
		Mountpoint: mountpoint,
	}, nil
}

func (v *LvmVolume) IsRoot() bool {
	if v.Mountpoint == "/" {
		return true
	}
	for _, subvol := range v.BtrfsSubvols {
		if subvol.Mountpoint == "/" {
			return true
		}
	}
	return false
}

// LvmVolumeGroup maps physical volumes onto the logical volumes carved
// out of them.
type LvmVolumeGroup struct {
	Name    string
	Pvs     []*PartitionModification
	Volumes []*LvmVolume
}

func NewLvmVolumeGroup(name string, pvs []*PartitionModification, volumes []*LvmVolume) (*LvmVolumeGroup, error) {
	if name == "" {
		return nil, InvalidStateError{Reason: "a volume group requires a name"}
	}
	if len(pvs) == 0 {
		return nil, InvalidStateError{
			Reason: fmt.Sprintf("volume group '%s' requires at least one physical volume", name),
		}
	}
	return &LvmVolumeGroup{Name: name, Pvs: pvs, Volumes: volumes}, nil
}

func (g *LvmVolumeGroup) GetVolume(id string) (*LvmVolume, bool) {
	for _, vol := range g.Volumes {
		if vol.Id == id {
			return vol, true
		}
	}
	return nil, false
}

// LvmConfiguration is the full LVM plan. A physical volume belongs to
// exactly one volume group; sharing is rejected at construction.
type LvmConfiguration struct {
	ConfigType LvmLayoutType
	VolGroups  []*LvmVolumeGroup
}

func NewLvmConfiguration(volGroups ...*LvmVolumeGroup) (*LvmConfiguration, error) {
	claimed := map[string]string{}
	for _, group := range volGroups {
		for _, pv := range group.Pvs {
			if owner, ok := claimed[pv.Id]; ok {
				return nil, InvalidStateError{
					Reason: fmt.Sprintf(
						"physical volume '%s' belongs to both volume group '%s' and '%s'",
						pv.Id, owner, group.Name,
					),
				}
			}
			claimed[pv.Id] = group.Name
		}
	}
	return &LvmConfiguration{ConfigType: LvmLayoutDefault, VolGroups: volGroups}, nil
}

// AllPvs flattens the physical volumes across every group.
func (c *LvmConfiguration) AllPvs() []*PartitionModification {
	var pvs []*PartitionModification
	for _, group := range c.VolGroups {
		pvs = append(pvs, group.Pvs...)
	}
	return pvs
}

func (c *LvmConfiguration) GetVolumeGroup(name string) (*LvmVolumeGroup, bool) {
	for _, group := range c.VolGroups {
		if group.Name == name {
			return group, true
		}
	}
	return nil, false
}

// VolumeFromMountpoint finds the logical volume mounted at the given
// path, if any.
func (c *LvmConfiguration) VolumeFromMountpoint(mountpoint string) (*LvmVolume, bool) {
	for _, group := range c.VolGroups {
		for _, vol := range group.Volumes {
			if vol.Mountpoint == mountpoint {
				return vol, true
			}
		}
	}
	return nil, false
}
