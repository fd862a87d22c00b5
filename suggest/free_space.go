package suggest

import (
	bosherr "github.com/cloudfoundry/bosh-utils/errors"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

// FreeSpace computes the usable gaps on a device given the staged
// partition modifications: partitions marked for deletion free their
// span, everything else occupies it. Pure, and deterministic for the
// same inputs. Gaps narrower than the 1 MiB alignment buffer are
// dropped.
func FreeSpace(device inventory.DeviceInfo, staged []*layout.PartitionModification) ([]inventory.Region, error) {
	ss := device.SectorSize
	if ss.Value == 0 {
		return nil, bosherr.Errorf("Device `%s' reports no sector size", device.Path)
	}

	total := device.TotalSize
	ctx := unit.Context{SectorSize: ss, Total: &total}

	var used []inventory.Region
	for _, part := range staged {
		if part.Status == layout.StatusDelete {
			continue
		}

		startSectors, err := part.Start.Sectors(ss)
		if err != nil {
			return nil, bosherr.WrapErrorf(err, "Normalizing start of partition `%s'", part.Id)
		}
		lengthBytes, err := part.Length.BytesCtx(ctx)
		if err != nil {
			return nil, bosherr.WrapErrorf(err, "Normalizing length of partition `%s'", part.Id)
		}
		lengthSectors := (lengthBytes + ss.Value - 1) / ss.Value
		if lengthSectors == 0 {
			continue
		}

		used = append(used, inventory.Region{Start: startSectors, End: startSectors + lengthSectors - 1})
	}

	minSectors := inventory.DefaultAlignmentBytes / ss.Value
	return inventory.FreeRegions(device.TotalSectors(), ss, device.Table, used, minSectors), nil
}

// usableSpan is the whole usable range of a device about to be wiped
// and re-labeled GPT.
func usableSpan(device inventory.DeviceInfo) (inventory.Region, error) {
	ss := device.SectorSize
	if ss.Value == 0 {
		return inventory.Region{}, bosherr.Errorf("Device `%s' reports no sector size", device.Path)
	}

	minSectors := inventory.DefaultAlignmentBytes / ss.Value
	regions := inventory.FreeRegions(device.TotalSectors(), ss, inventory.PartitionTableGPT, nil, minSectors)
	if len(regions) == 0 {
		return inventory.Region{}, bosherr.Errorf("Device `%s' has no usable space", device.Path)
	}
	return regions[0], nil
}
