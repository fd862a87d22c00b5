package layout

import (
	"fmt"
	"time"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/unit"
)

// The document types mirror the persisted JSON shape. Object pointers
// are flattened to opaque ids on save and re-linked by id on load, and
// devices are re-matched against a freshly probed inventory rather than
// trusted from the file.

type ConfigDocument struct {
	LayoutType LayoutType         `json:"layout_type"`
	Devices    []DeviceDocument   `json:"device_modifications"`
	Lvm        *LvmDocument       `json:"lvm,omitempty"`
	MountPoint string             `json:"mountpoint,omitempty"`
}

type DeviceDocument struct {
	Path       string              `json:"device"`
	Wipe       bool                `json:"wipe"`
	Partitions []PartitionDocument `json:"partitions"`
}

type PartitionDocument struct {
	ObjId        string                   `json:"obj_id"`
	Status       ModificationStatus       `json:"status"`
	Type         PartitionType            `json:"type"`
	Start        unit.Size                `json:"start"`
	Size         unit.Size                `json:"size"`
	FsType       inventory.FilesystemType `json:"fs_type,omitempty"`
	Mountpoint   string                   `json:"mountpoint,omitempty"`
	MountOptions MountOptions             `json:"mount_options,omitempty"`
	Flags        []inventory.PartitionFlag `json:"flags,omitempty"`
	BtrfsSubvols []SubvolumeModification  `json:"btrfs,omitempty"`
	DevPath      string                   `json:"dev_path,omitempty"`
	Formattable  bool                     `json:"formattable,omitempty"`
}

type LvmDocument struct {
	ConfigType LvmLayoutType       `json:"config_type"`
	VolGroups  []VolGroupDocument  `json:"vol_groups"`
}

type VolGroupDocument struct {
	Name    string           `json:"name"`
	PvIds   []string         `json:"lvm_pvs"`
	Volumes []VolumeDocument `json:"volumes"`
}

type VolumeDocument struct {
	ObjId        string                   `json:"obj_id"`
	Status       ModificationStatus       `json:"status"`
	Name         string                   `json:"name"`
	FsType       inventory.FilesystemType `json:"fs_type,omitempty"`
	Length       unit.Size                `json:"length"`
	Mountpoint   string                   `json:"mountpoint,omitempty"`
	MountOptions MountOptions             `json:"mount_options,omitempty"`
	BtrfsSubvols []SubvolumeModification  `json:"btrfs,omitempty"`
}

type EncryptionDocument struct {
	EncType      EncryptionType `json:"encryption_type"`
	Password     string         `json:"encryption_password,omitempty"`
	PartitionIds []string       `json:"partition_ids,omitempty"`
	VolumeIds    []string       `json:"volume_ids,omitempty"`
	HSMDevice    *Fido2Device   `json:"hsm_device,omitempty"`
	IterTimeMs   int64          `json:"iter_time_ms,omitempty"`
}

// BuildConfigDocument flattens a layout configuration into its
// persisted shape.
func BuildConfigDocument(cfg *DiskLayoutConfiguration) ConfigDocument {
	doc := ConfigDocument{
		LayoutType: cfg.Type,
		MountPoint: cfg.MountPointPath,
	}

	for _, mod := range cfg.Modifications {
		devDoc := DeviceDocument{Path: mod.Device.Path, Wipe: mod.Wipe}
		for _, part := range mod.Partitions {
			devDoc.Partitions = append(devDoc.Partitions, PartitionDocument{
				ObjId:        part.Id,
				Status:       part.Status,
				Type:         part.Type,
				Start:        part.Start,
				Size:         part.Length,
				FsType:       part.FsType,
				Mountpoint:   part.Mountpoint,
				MountOptions: part.MountOptions,
				Flags:        part.Flags,
				BtrfsSubvols: part.BtrfsSubvols,
				DevPath:      part.DevPath,
				Formattable:  part.Formattable,
			})
		}
		doc.Devices = append(doc.Devices, devDoc)
	}

	if cfg.LvmConfig != nil {
		lvmDoc := &LvmDocument{ConfigType: cfg.LvmConfig.ConfigType}
		for _, group := range cfg.LvmConfig.VolGroups {
			groupDoc := VolGroupDocument{Name: group.Name}
			for _, pv := range group.Pvs {
				groupDoc.PvIds = append(groupDoc.PvIds, pv.Id)
			}
			for _, vol := range group.Volumes {
				groupDoc.Volumes = append(groupDoc.Volumes, VolumeDocument{
					ObjId:        vol.Id,
					Status:       vol.Status,
					Name:         vol.Name,
					FsType:       vol.FsType,
					Length:       vol.Length,
					Mountpoint:   vol.Mountpoint,
					MountOptions: vol.MountOptions,
					BtrfsSubvols: vol.BtrfsSubvols,
				})
			}
			lvmDoc.VolGroups = append(lvmDoc.VolGroups, groupDoc)
		}
		doc.Lvm = lvmDoc
	}

	return doc
}

// BuildEncryptionDocument flattens an encryption config, replacing
// target pointers with their ids.
func BuildEncryptionDocument(enc *DiskEncryption) *EncryptionDocument {
	if !enc.Enabled() {
		return nil
	}

	doc := &EncryptionDocument{
		EncType:    enc.EncType,
		Password:   enc.Password,
		HSMDevice:  enc.HSMDevice,
		IterTimeMs: enc.IterTime.Milliseconds(),
	}
	for _, part := range enc.Partitions {
		doc.PartitionIds = append(doc.PartitionIds, part.Id)
	}
	for _, vol := range enc.LvmVolumes {
		doc.VolumeIds = append(doc.VolumeIds, vol.Id)
	}
	return doc
}

// ParseConfigDocument rebuilds a layout configuration, re-validating
// every invariant and re-matching devices against the live snapshot.
func ParseConfigDocument(doc ConfigDocument, snapshot inventory.Snapshot) (*DiskLayoutConfiguration, error) {
	var mods []*DeviceModification

	for _, devDoc := range doc.Devices {
		device, found := snapshot.GetDevice(devDoc.Path)
		if !found {
			return nil, InvalidStateError{
				Reason: fmt.Sprintf("device '%s' is not present in the probed inventory", devDoc.Path),
			}
		}

		mod := NewDeviceModification(device, devDoc.Wipe)
		for _, partDoc := range devDoc.Partitions {
			part, err := parsePartitionDocument(partDoc)
			if err != nil {
				return nil, err
			}
			mod.AddPartition(part)
		}
		mods = append(mods, mod)
	}

	var lvmConfig *LvmConfiguration
	if doc.Lvm != nil {
		var groups []*LvmVolumeGroup
		for _, groupDoc := range doc.Lvm.VolGroups {
			var pvs []*PartitionModification
			for _, pvId := range groupDoc.PvIds {
				pv, found := findPartitionIn(mods, pvId)
				if !found {
					return nil, InvalidStateError{
						Reason: fmt.Sprintf("volume group '%s' references unknown partition id '%s'", groupDoc.Name, pvId),
					}
				}
				pvs = append(pvs, pv)
			}

			var volumes []*LvmVolume
			for _, volDoc := range groupDoc.Volumes {
				vol, err := parseVolumeDocument(volDoc)
				if err != nil {
					return nil, err
				}
				volumes = append(volumes, vol)
			}

			group, err := NewLvmVolumeGroup(groupDoc.Name, pvs, volumes)
			if err != nil {
				return nil, err
			}
			groups = append(groups, group)
		}

		var err error
		lvmConfig, err = NewLvmConfiguration(groups...)
		if err != nil {
			return nil, err
		}
	}

	return NewDiskLayoutConfiguration(doc.LayoutType, mods, lvmConfig, doc.MountPoint)
}

// ParseEncryptionDocument resolves the persisted target ids against a
// parsed layout configuration.
func ParseEncryptionDocument(doc *EncryptionDocument, cfg *DiskLayoutConfiguration) (*DiskEncryption, error) {
	if doc == nil || doc.EncType == NoEncryption || doc.EncType == "" {
		return &DiskEncryption{EncType: NoEncryption}, nil
	}

	var partitions []*PartitionModification
	for _, id := range doc.PartitionIds {
		part, found := cfg.FindPartition(id)
		if !found {
			return nil, InvalidStateError{
				Reason: fmt.Sprintf("encryption references unknown partition id '%s'", id),
			}
		}
		partitions = append(partitions, part)
	}

	var volumes []*LvmVolume
	for _, id := range doc.VolumeIds {
		vol, found := cfg.FindVolume(id)
		if !found {
			return nil, InvalidStateError{
				Reason: fmt.Sprintf("encryption references unknown volume id '%s'", id),
			}
		}
		volumes = append(volumes, vol)
	}

	enc, err := NewDiskEncryption(doc.EncType, doc.Password, partitions, volumes, doc.HSMDevice)
	if err != nil {
		return nil, err
	}
	if doc.IterTimeMs > 0 {
		enc.IterTime = time.Duration(doc.IterTimeMs) * time.Millisecond
	}
	return enc, nil
}

func parsePartitionDocument(doc PartitionDocument) (*PartitionModification, error) {
	switch doc.Status {
	case StatusExist, StatusModify, StatusDelete, StatusCreate:
	default:
		return nil, InvalidStateError{Reason: fmt.Sprintf("unknown partition status '%s'", doc.Status)}
	}

	part, err := NewPartitionModification(doc.Status, doc.Type, doc.Start, doc.Size, doc.DevPath)
	if err != nil {
		return nil, err
	}

	if doc.ObjId != "" {
		part.Id = doc.ObjId
	}
	part.FsType = doc.FsType
	part.Mountpoint = doc.Mountpoint
	part.MountOptions = doc.MountOptions
	part.Flags = doc.Flags
	part.BtrfsSubvols = doc.BtrfsSubvols
	part.Formattable = doc.Formattable || part.Formattable
	return part, nil
}

func parseVolumeDocument(doc VolumeDocument) (*LvmVolume, error) {
	vol, err := NewLvmVolume(doc.Name, doc.FsType, doc.Length, doc.Mountpoint)
	if err != nil {
		return nil, err
	}

	if doc.ObjId != "" {
		vol.Id = doc.ObjId
	}
	if doc.Status != "" {
		vol.Status = doc.Status
	}
	vol.MountOptions = doc.MountOptions
	vol.BtrfsSubvols = doc.BtrfsSubvols
	return vol, nil
}

func findPartitionIn(mods []*DeviceModification, id string) (*PartitionModification, bool) {
	for _, mod := range mods {
		if part, found := mod.GetPartition(id); found {
			return part, true
		}
	}
	return nil, false
}
