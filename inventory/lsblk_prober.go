package inventory

import (
	"encoding/json"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	mapstruc "github.com/mitchellh/mapstructure"

	"github.com/diskmason/diskmason/unit"
)

const lsblkColumns = "NAME,KNAME,PATH,TYPE,SIZE,START,RO,LOG-SEC,PTTYPE,MODEL,SERIAL,VENDOR,PARTN,PARTTYPE,PARTUUID,PARTLABEL,PARTFLAGS,FSTYPE,UUID,LABEL,MOUNTPOINTS,PKNAME"

type lsblkProber struct {
	cmdRunner boshsys.CmdRunner
	logger    boshlog.Logger
	logTag    string
}

func NewLsblkProber(cmdRunner boshsys.CmdRunner, logger boshlog.Logger) Prober {
	return lsblkProber{
		cmdRunner: cmdRunner,
		logger:    logger,
		logTag:    "lsblkProber",
	}
}

func (p lsblkProber) Probe() ([]DeviceInfo, error) {
	stdout, _, _, err := p.cmdRunner.RunCommand("lsblk", "--json", "--bytes", "--output", lsblkColumns)
	if err != nil {
		return nil, ProbeError{Reason: "listing block devices", Err: err}
	}

	doc, err := parseLsblkDocument(stdout)
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo
	for _, record := range doc.Blockdevices {
		device, ok := p.buildDevice(record)
		if !ok {
			continue
		}
		devices = append(devices, device)
	}
	return devices, nil
}

type lsblkDocument struct {
	Blockdevices []lsblkRecord `mapstructure:"blockdevices"`
}

// lsblkRecord is decoded weakly: depending on the util-linux version,
// numeric columns arrive as JSON numbers or as strings.
type lsblkRecord struct {
	Name        string        `mapstructure:"name"`
	Kname       string        `mapstructure:"kname"`
	Path        string        `mapstructure:"path"`
	Type        string        `mapstructure:"type"`
	Size        uint64        `mapstructure:"size"`
	Start       uint64        `mapstructure:"start"`
	ReadOnly    bool          `mapstructure:"ro"`
	LogSec      uint64        `mapstructure:"log-sec"`
	PtType      string        `mapstructure:"pttype"`
	Model       string        `mapstructure:"model"`
	Serial      string        `mapstructure:"serial"`
	Vendor      string        `mapstructure:"vendor"`
	PartN       uint          `mapstructure:"partn"`
	PartType    string        `mapstructure:"parttype"`
	PartUUID    string        `mapstructure:"partuuid"`
	PartLabel   string        `mapstructure:"partlabel"`
	PartFlags   string        `mapstructure:"partflags"`
	FsType      string        `mapstructure:"fstype"`
	UUID        string        `mapstructure:"uuid"`
	Label       string        `mapstructure:"label"`
	Mountpoints []string      `mapstructure:"mountpoints"`
	PkName      string        `mapstructure:"pkname"`
	Children    []lsblkRecord `mapstructure:"children"`
}

func parseLsblkDocument(output string) (lsblkDocument, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(output), &raw); err != nil {
		return lsblkDocument{}, ProbeError{Reason: "unparsable lsblk output", Err: err}
	}

	var doc lsblkDocument
	decoder, err := mapstruc.NewDecoder(&mapstruc.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return lsblkDocument{}, bosherr.WrapError(err, "Building lsblk decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return lsblkDocument{}, ProbeError{Reason: "unparsable lsblk output", Err: err}
	}
	return doc, nil
}

func (p lsblkProber) buildDevice(record lsblkRecord) (DeviceInfo, bool) {
	deviceType, ok := deviceTypeFromLsblk(record.Type)
	if !ok {
		p.logger.Debug(p.logTag, "Skipping device '%s' of type '%s'", record.Path, record.Type)
		return DeviceInfo{}, false
	}

	sectorSize := unit.SectorSize{Value: record.LogSec}
	if sectorSize.Value == 0 {
		sectorSize = unit.DefaultSectorSize
	}

	device := DeviceInfo{
		Model:      strings.TrimSpace(record.Model),
		Path:       record.Path,
		Type:       deviceType,
		TotalSize:  unit.NewSize(record.Size, unit.B),
		SectorSize: sectorSize,
		ReadOnly:   record.ReadOnly,
		Table:      partitionTableFromLsblk(record.PtType),
	}

	for _, child := range record.Children {
		if child.Type != "part" {
			continue
		}
		device.Partitions = append(device.Partitions, p.buildPartition(child))
	}

	minSectors := DefaultAlignmentBytes / sectorSize.Value
	device.FreeRegions = FreeRegions(device.TotalSectors(), sectorSize, device.Table, device.usedRegions(), minSectors)

	return device, true
}

func (p lsblkProber) buildPartition(record lsblkRecord) PartitionInfo {
	mountpoints := make([]string, 0, len(record.Mountpoints))
	for _, m := range record.Mountpoints {
		if m != "" {
			mountpoints = append(mountpoints, m)
		}
	}

	part := PartitionInfo{
		Path:        record.Path,
		Number:      record.PartN,
		TypeCode:    strings.ToLower(record.PartType),
		FsType:      filesystemFromLsblk(record.FsType),
		Start:       unit.NewSize(record.Start, unit.Sectors),
		Length:      unit.NewSize(record.Size, unit.B),
		Flags:       flagsFromPartType(record.PartType, record.PartFlags),
		PartUUID:    record.PartUUID,
		Uuid:        record.UUID,
		Mountpoints: mountpoints,
	}

	if part.FsType == FilesystemBtrfs && len(mountpoints) > 0 {
		part.BtrfsSubvols = p.listBtrfsSubvolumes(mountpoints[0])
	}

	return part
}

// listBtrfsSubvolumes parses lines of the form
// "ID 256 gen 25 top level 5 path @home". Failures degrade to an
// empty list since subvolume info is descriptive only.
func (p lsblkProber) listBtrfsSubvolumes(mountpoint string) []BtrfsSubvolumeInfo {
	stdout, _, _, err := p.cmdRunner.RunCommand("btrfs", "subvolume", "list", mountpoint)
	if err != nil {
		p.logger.Warn(p.logTag, "Listing btrfs subvolumes on '%s': %s", mountpoint, err.Error())
		return nil
	}

	var subvols []BtrfsSubvolumeInfo
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[len(fields)-2] != "path" {
			continue
		}
		subvols = append(subvols, BtrfsSubvolumeInfo{Name: fields[len(fields)-1]})
	}
	return subvols
}
