package inventory

import (
	"sort"

	"github.com/diskmason/diskmason/unit"
)

// DefaultAlignmentBytes is the buffer kept clear at the start of a
// device and the minimum span worth reporting as usable free space.
const DefaultAlignmentBytes uint64 = 1 << 20

// gptReservedSectors is the secondary GPT header plus partition table
// at the end of the disk.
const gptReservedSectors uint64 = 33

// Region is an inclusive span of sectors on one device.
type Region struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

func (r Region) Sectors() uint64 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r Region) Size(ss unit.SectorSize) unit.Size {
	return unit.NewSize(r.Sectors()*ss.Value, unit.B)
}

// subtractRegions removes each used span from the gaps accumulated so
// far. A used span can miss a gap, cover it, split it, or trim either
// edge.
func subtractRegions(span Region, used []Region) []Region {
	gaps := []Region{span}
	for _, u := range used {
		next := make([]Region, 0, len(gaps)+1)
		for _, g := range gaps {
			switch {
			case u.End < g.Start || u.Start > g.End:
				next = append(next, g)
			case u.Start <= g.Start && u.End >= g.End:
			case u.Start > g.Start && u.End < g.End:
				next = append(next, Region{Start: g.Start, End: u.Start - 1})
				next = append(next, Region{Start: u.End + 1, End: g.End})
			case u.Start <= g.Start:
				next = append(next, Region{Start: u.End + 1, End: g.End})
			default:
				next = append(next, Region{Start: g.Start, End: u.Start - 1})
			}
		}
		gaps = next
	}
	return gaps
}

// FreeRegions derives the unused spans of a device: the complement of
// the used spans within the usable range. The first alignment buffer
// of the disk is never usable, a GPT table keeps its secondary header
// sectors at the end, and spans shorter than minSectors are dropped.
func FreeRegions(totalSectors uint64, ss unit.SectorSize, table PartitionTable, used []Region, minSectors uint64) []Region {
	if totalSectors == 0 || ss.Value == 0 {
		return nil
	}

	firstUsable := DefaultAlignmentBytes / ss.Value
	lastUsable := totalSectors - 1
	if table == PartitionTableGPT {
		if totalSectors <= gptReservedSectors {
			return nil
		}
		lastUsable = totalSectors - gptReservedSectors - 1
	}
	if firstUsable > lastUsable {
		return nil
	}

	gaps := subtractRegions(Region{Start: firstUsable, End: lastUsable}, used)

	usable := make([]Region, 0, len(gaps))
	for _, g := range gaps {
		if g.Sectors() >= minSectors {
			usable = append(usable, g)
		}
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].Start < usable[j].Start })
	return usable
}
