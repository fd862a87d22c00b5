package layout

import (
	"fmt"

	boshuuid "github.com/cloudfoundry/bosh-utils/uuid"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/unit"
)

// ModificationStatus is the lifecycle state of a planned change.
type ModificationStatus string

const (
	// StatusExist marks a probed partition kept untouched.
	StatusExist ModificationStatus = "existing"
	// StatusModify marks a probed partition whose attributes change.
	StatusModify ModificationStatus = "modify"
	// StatusDelete marks a probed partition to be removed.
	StatusDelete ModificationStatus = "delete"
	// StatusCreate marks a partition that does not exist on disk yet.
	StatusCreate ModificationStatus = "create"
)

type PartitionType string

const PartitionTypePrimary PartitionType = "primary"

// SubvolumeModification describes a btrfs subvolume to create and where
// to mount it.
type SubvolumeModification struct {
	Name       string `json:"name"`
	Mountpoint string `json:"mountpoint"`
}

var idGenerator = boshuuid.NewGenerator()

// PartitionModification is a planned change to a single partition. The
// Id is opaque and stable for the lifetime of the plan; other objects
// reference partitions by Id, never by index or path.
type PartitionModification struct {
	Id     string
	Status ModificationStatus
	Type   PartitionType

	Start  unit.Size
	Length unit.Size

	FsType       inventory.FilesystemType
	Mountpoint   string
	MountOptions MountOptions
	Flags        []inventory.PartitionFlag
	BtrfsSubvols []SubvolumeModification

	// DevPath is required for partitions that exist on disk and is
	// filled in by the executor for created ones.
	DevPath  string
	PartUUID string
	Uuid     string

	// Formattable records that a format step may legally run against
	// this partition. The formatter refuses anything else.
	Formattable bool
}

// NewPartitionModification validates the lifecycle invariant that a
// partition claiming to exist on disk names the device it refers to.
func NewPartitionModification(
	status ModificationStatus,
	partType PartitionType,
	start unit.Size,
	length unit.Size,
	devPath string,
) (*PartitionModification, error) {
	if (status == StatusExist || status == StatusModify || status == StatusDelete) && devPath == "" {
		return nil, InvalidStateError{
			Reason: fmt.Sprintf("a partition with status '%s' requires a device path", status),
		}
	}

	id, err := idGenerator.Generate()
	if err != nil {
		return nil, err
	}

	return &PartitionModification{
		Id:          id,
		Status:      status,
		Type:        partType,
		Start:       start,
		Length:      length,
		DevPath:     devPath,
		Formattable: status == StatusCreate,
	}, nil
}

// NewCreatePartition plans a brand new partition. Created partitions
// are always formattable.
func NewCreatePartition(
	partType PartitionType,
	start unit.Size,
	length unit.Size,
	fsType inventory.FilesystemType,
	mountpoint string,
) (*PartitionModification, error) {
	part, err := NewPartitionModification(StatusCreate, partType, start, length, "")
	if err != nil {
		return nil, err
	}
	part.FsType = fsType
	part.Mountpoint = mountpoint
	return part, nil
}

// NewExistingPartition lifts a probed partition into the modification
// model untouched.
func NewExistingPartition(info inventory.PartitionInfo) (*PartitionModification, error) {
	part, err := NewPartitionModification(StatusExist, PartitionTypePrimary, info.Start, info.Length, info.Path)
	if err != nil {
		return nil, err
	}
	part.FsType = info.FsType
	part.Flags = append([]inventory.PartitionFlag(nil), info.Flags...)
	part.PartUUID = info.PartUUID
	part.Uuid = info.Uuid
	return part, nil
}

// ChangeFsType switches the target filesystem. Changing the filesystem
// of an on-disk partition implies a reformat, so the partition becomes
// formattable and its status moves to modify.
func (p *PartitionModification) ChangeFsType(fsType inventory.FilesystemType) {
	p.FsType = fsType
	if p.Status == StatusExist {
		p.Status = StatusModify
	}
	p.Formattable = true
}

func (p *PartitionModification) Exists() bool {
	return p.Status == StatusExist || p.Status == StatusModify || p.Status == StatusDelete
}

func (p *PartitionModification) IsCreate() bool {
	return p.Status == StatusCreate
}

func (p *PartitionModification) HasFlag(flag inventory.PartitionFlag) bool {
	return inventory.HasFlag(p.Flags, flag)
}

func (p *PartitionModification) SetFlag(flag inventory.PartitionFlag) {
	if !p.HasFlag(flag) {
		p.Flags = append(p.Flags, flag)
	}
}

func (p *PartitionModification) IsBoot() bool {
	return p.HasFlag(inventory.FlagBoot) ||
		p.HasFlag(inventory.FlagESP) ||
		p.HasFlag(inventory.FlagXBootLdr)
}

// IsEFI reports whether the partition can serve as the EFI system
// partition. XBOOTLDR partitions hold a boot loader but are not ESPs.
func (p *PartitionModification) IsEFI() bool {
	return p.FsType == inventory.FilesystemFat32 &&
		(p.HasFlag(inventory.FlagBoot) || p.HasFlag(inventory.FlagESP)) &&
		!p.HasFlag(inventory.FlagXBootLdr)
}

func (p *PartitionModification) IsRoot() bool {
	if p.Mountpoint == "/" {
		return true
	}
	for _, subvol := range p.BtrfsSubvols {
		if subvol.Mountpoint == "/" {
			return true
		}
	}
	return false
}

func (p *PartitionModification) IsHome() bool {
	if p.Mountpoint == "/home" {
		return true
	}
	for _, subvol := range p.BtrfsSubvols {
		if subvol.Mountpoint == "/home" {
			return true
		}
	}
	return false
}

func (p *PartitionModification) IsSwap() bool {
	return p.FsType == inventory.FilesystemSwap || p.HasFlag(inventory.FlagSwap)
}

// End is the first byte past the partition.
func (p *PartitionModification) End(ctx unit.Context) (unit.Size, error) {
	startBytes, err := p.Start.BytesCtx(ctx)
	if err != nil {
		return unit.Size{}, err
	}
	lengthBytes, err := p.Length.BytesCtx(ctx)
	if err != nil {
		return unit.Size{}, err
	}
	return unit.NewSize(startBytes+lengthBytes, unit.B), nil
}
