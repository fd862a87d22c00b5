package inventory

import (
	"github.com/diskmason/diskmason/unit"
)

// PartitionInfo describes one currently-existing partition as the
// kernel reports it. Probed records are never mutated; a fresh probe
// replaces them wholesale.
type PartitionInfo struct {
	Path         string
	Number       uint
	TypeCode     string
	FsType       FilesystemType
	Start        unit.Size
	Length       unit.Size
	Flags        []PartitionFlag
	PartUUID     string
	Uuid         string
	Mountpoints  []string
	BtrfsSubvols []BtrfsSubvolumeInfo
}

func (p PartitionInfo) HasFlag(flag PartitionFlag) bool {
	return HasFlag(p.Flags, flag)
}

func (p PartitionInfo) IsMounted() bool {
	return len(p.Mountpoints) > 0
}

// DeviceInfo describes one block device and its partitions.
type DeviceInfo struct {
	Model       string
	Path        string
	Type        DeviceType
	TotalSize   unit.Size
	SectorSize  unit.SectorSize
	ReadOnly    bool
	Table       PartitionTable
	Partitions  []PartitionInfo
	FreeRegions []Region
}

// TotalSectors is the device capacity in its own sector size.
func (d DeviceInfo) TotalSectors() uint64 {
	if d.SectorSize.Value == 0 {
		return 0
	}
	bytes, err := d.TotalSize.BytesCtx(unit.Context{SectorSize: d.SectorSize})
	if err != nil {
		return 0
	}
	return bytes / d.SectorSize.Value
}

func (d DeviceInfo) GetPartition(path string) (PartitionInfo, bool) {
	for _, p := range d.Partitions {
		if p.Path == path {
			return p, true
		}
	}
	return PartitionInfo{}, false
}

// usedRegions is the partition geometry as inclusive sector spans.
func (d DeviceInfo) usedRegions() []Region {
	used := make([]Region, 0, len(d.Partitions))
	for _, p := range d.Partitions {
		start := p.Start.Value
		sectors, err := p.Length.Sectors(d.SectorSize)
		if err != nil || sectors == 0 {
			continue
		}
		used = append(used, Region{Start: start, End: start + sectors - 1})
	}
	return used
}
