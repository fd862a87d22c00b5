package provision

import (
	"fmt"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshretry "github.com/cloudfoundry/bosh-utils/retrystrategy"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/diskmason/diskmason/inventory"
)

const (
	partedOpTimeout    = 1 * time.Minute
	partedOpRetryDelay = 5 * time.Second
)

// partedFlags maps partition flags onto parted's flag vocabulary.
// linux-home has no parted flag; it is recognized on probe only.
var partedFlags = map[inventory.PartitionFlag]string{
	inventory.FlagBoot:     "boot",
	inventory.FlagESP:      "esp",
	inventory.FlagXBootLdr: "bls_boot",
	inventory.FlagSwap:     "swap",
}

type partedPartitioner struct {
	cmdRunner   boshsys.CmdRunner
	timeService clock.Clock
	logger      boshlog.Logger
	logTag      string
}

func NewPartedPartitioner(cmdRunner boshsys.CmdRunner, timeService clock.Clock, logger boshlog.Logger) Partitioner {
	return partedPartitioner{
		cmdRunner:   cmdRunner,
		timeService: timeService,
		logger:      logger,
		logTag:      "partedPartitioner",
	}
}

func (p partedPartitioner) WipeDevice(devPath string, table inventory.PartitionTable) error {
	if table == inventory.PartitionTableUnknown {
		return bosherr.Errorf("Refusing to label `%s' with an unknown table type", devPath)
	}

	wipeRetryable := boshretry.NewRetryable(func() (bool, error) {
		_, _, _, err := p.cmdRunner.RunCommand("wipefs", "--force", "-a", devPath)
		if err != nil {
			return true, bosherr.WrapErrorf(err, "Wiping signatures on `%s'", devPath)
		}
		return false, nil
	})
	if err := p.newRetryStrategy(wipeRetryable).Try(); err != nil {
		return err
	}

	_, _, _, err := p.cmdRunner.RunCommand("parted", "-s", devPath, "mklabel", string(table))
	if err != nil {
		return bosherr.WrapErrorf(err, "Writing %s label on `%s'", table, devPath)
	}

	return p.reread(devPath)
}

func (p partedPartitioner) ProbeTable(devPath string) (inventory.PartitionTable, error) {
	stdout, _, _, err := p.cmdRunner.RunCommand("lsblk", "--nodeps", "-no", "PTTYPE", devPath)
	if err != nil {
		return inventory.PartitionTableUnknown, bosherr.WrapErrorf(err, "Reading partition table type of `%s'", devPath)
	}

	switch strings.TrimSpace(stdout) {
	case "gpt":
		return inventory.PartitionTableGPT, nil
	case "dos", "msdos":
		return inventory.PartitionTableMBR, nil
	}
	return inventory.PartitionTableUnknown, nil
}

func (p partedPartitioner) CreatePartition(devPath string, spec PartitionSpec) error {
	label := spec.Label
	if label == "" {
		label = fmt.Sprintf("primary-%d", spec.Number)
	}

	createRetryable := boshretry.NewRetryable(func() (bool, error) {
		args := []string{
			"-s", devPath,
			"unit", "B",
			"mkpart", label,
		}
		if spec.FsTypeHint != inventory.FilesystemNone {
			args = append(args, partedFsHint(spec.FsTypeHint))
		}
		args = append(args,
			fmt.Sprintf("%d", spec.StartBytes),
			fmt.Sprintf("%d", spec.EndBytes),
		)

		_, _, _, err := p.cmdRunner.RunCommand("parted", args...)
		if err != nil {
			p.logger.Error(p.logTag, "Failed to create partition %d on %s: %s", spec.Number, devPath, err)
			return true, bosherr.WrapError(err, "Creating partition using parted")
		}

		if err := p.reread(devPath); err != nil {
			return true, err
		}

		p.logger.Info(p.logTag, "Created partition %d on %s", spec.Number, devPath)
		return false, nil
	})
	if err := p.newRetryStrategy(createRetryable).Try(); err != nil {
		return bosherr.WrapErrorf(err, "Partitioning disk `%s'", devPath)
	}

	for _, flag := range spec.Flags {
		partedFlag, known := partedFlags[flag]
		if !known {
			p.logger.Debug(p.logTag, "No parted flag for '%s', skipping", flag)
			continue
		}
		_, _, _, err := p.cmdRunner.RunCommand(
			"parted", "-s", devPath,
			"set", fmt.Sprintf("%d", spec.Number), partedFlag, "on",
		)
		if err != nil {
			return bosherr.WrapErrorf(err, "Setting flag '%s' on partition %d of `%s'", partedFlag, spec.Number, devPath)
		}
	}

	return nil
}

func (p partedPartitioner) RemovePartition(devPath string, number uint) error {
	_, _, _, err := p.cmdRunner.RunCommand("parted", "-s", devPath, "rm", fmt.Sprintf("%d", number))
	if err != nil {
		return bosherr.WrapErrorf(err, "Removing partition %d from `%s'", number, devPath)
	}
	return p.reread(devPath)
}

// reread pushes the new table to the kernel and waits for udev to
// finish creating device nodes.
func (p partedPartitioner) reread(devPath string) error {
	_, _, _, err := p.cmdRunner.RunCommand("partprobe", devPath)
	if err != nil {
		return bosherr.WrapErrorf(err, "Re-reading partition table of `%s'", devPath)
	}

	_, _, _, err = p.cmdRunner.RunCommand("udevadm", "settle")
	if err != nil {
		p.logger.Error(p.logTag, "Failed to run udevadm settle: %s", err)
	}
	return nil
}

func (p partedPartitioner) newRetryStrategy(retryable boshretry.Retryable) boshretry.RetryStrategy {
	return boshretry.NewTimeoutRetryStrategy(partedOpTimeout, partedOpRetryDelay, retryable, p.timeService, p.logger)
}

// partedFsHint translates filesystem types into the names parted's
// mkpart accepts as a hint. The hint only seeds the partition type
// GUID; mkfs decides the real filesystem.
func partedFsHint(fsType inventory.FilesystemType) string {
	switch fsType {
	case inventory.FilesystemSwap:
		return "linux-swap"
	case inventory.FilesystemFat16:
		return "fat16"
	case inventory.FilesystemFat32:
		return "fat32"
	default:
		return string(fsType)
	}
}
