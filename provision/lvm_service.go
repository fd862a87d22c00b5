package provision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	mapstruc "github.com/mitchellh/mapstructure"
)

type lvmService struct {
	cmdRunner boshsys.CmdRunner
	logger    boshlog.Logger
	logTag    string
}

func NewLvmService(cmdRunner boshsys.CmdRunner, logger boshlog.Logger) LvmService {
	return lvmService{
		cmdRunner: cmdRunner,
		logger:    logger,
		logTag:    "lvmService",
	}
}

func (s lvmService) CreatePhysicalVolume(devPath string) error {
	_, _, _, err := s.cmdRunner.RunCommand("pvcreate", "--yes", devPath)
	if err != nil {
		return bosherr.WrapErrorf(err, "Creating physical volume on `%s'", devPath)
	}
	return nil
}

func (s lvmService) CreateVolumeGroup(name string, pvPaths []string) error {
	args := append([]string{"--yes", name}, pvPaths...)
	_, _, _, err := s.cmdRunner.RunCommand("vgcreate", args...)
	if err != nil {
		return bosherr.WrapErrorf(err, "Creating volume group `%s'", name)
	}
	return nil
}

func (s lvmService) CreateLogicalVolume(vgName, lvName string, sizeBytes uint64, consumeRemainder bool) (string, error) {
	args := []string{"--yes", "--wipesignatures", "y", "--name", lvName}
	if consumeRemainder {
		args = append(args, "--extents", "100%FREE")
	} else {
		args = append(args, "--size", fmt.Sprintf("%dB", sizeBytes))
	}
	args = append(args, vgName)

	_, _, _, err := s.cmdRunner.RunCommand("lvcreate", args...)
	if err != nil {
		return "", bosherr.WrapErrorf(err, "Creating logical volume `%s' in group `%s'", lvName, vgName)
	}

	return fmt.Sprintf("/dev/%s/%s", vgName, lvName), nil
}

func (s lvmService) ActivateVolumeGroup(name string) error {
	_, _, _, err := s.cmdRunner.RunCommand("vgchange", "-a", "y", name)
	if err != nil {
		return bosherr.WrapErrorf(err, "Activating volume group `%s'", name)
	}
	return nil
}

// lvm reports every JSON value as a string, sizes included, so the
// report rows decode weakly and sizes are parsed off their suffix.
type lvsReport struct {
	Report []struct {
		Lv []lvsRow `mapstructure:"lv"`
	} `mapstructure:"report"`
}

type lvsRow struct {
	LvName string `mapstructure:"lv_name"`
	VgName string `mapstructure:"vg_name"`
	LvPath string `mapstructure:"lv_path"`
	LvSize string `mapstructure:"lv_size"`
}

func (s lvmService) ListLogicalVolumes(vgName string) ([]LogicalVolumeInfo, error) {
	stdout, _, _, err := s.cmdRunner.RunCommand(
		"lvs", "--reportformat", "json",
		"--units", "b", "--nosuffix",
		"-o", "lv_name,vg_name,lv_path,lv_size",
		vgName,
	)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Listing logical volumes of `%s'", vgName)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		return nil, bosherr.WrapError(err, "Parsing lvs report")
	}

	var report lvsReport
	decoder, err := mapstruc.NewDecoder(&mapstruc.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &report,
	})
	if err != nil {
		return nil, bosherr.WrapError(err, "Building lvs report decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, bosherr.WrapError(err, "Decoding lvs report")
	}

	var volumes []LogicalVolumeInfo
	for _, section := range report.Report {
		for _, row := range section.Lv {
			sizeBytes, err := strconv.ParseUint(strings.TrimSpace(row.LvSize), 10, 64)
			if err != nil {
				s.logger.Debug(s.logTag, "Skipping unparsable lv_size %q for %s", row.LvSize, row.LvName)
				sizeBytes = 0
			}
			volumes = append(volumes, LogicalVolumeInfo{
				Name:      row.LvName,
				VgName:    row.VgName,
				Path:      row.LvPath,
				SizeBytes: sizeBytes,
			})
		}
	}
	return volumes, nil
}
