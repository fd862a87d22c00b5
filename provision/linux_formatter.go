package provision

import (
	"regexp"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
)

var blkidTypeRegexp = regexp.MustCompile(` TYPE="([^"]+)"`)

type linuxFormatter struct {
	runner  boshsys.CmdRunner
	fs      boshsys.FileSystem
	mounter Mounter
	logger  boshlog.Logger
	logTag  string
}

func NewLinuxFormatter(runner boshsys.CmdRunner, fs boshsys.FileSystem, mounter Mounter, logger boshlog.Logger) Formatter {
	return linuxFormatter{
		runner:  runner,
		fs:      fs,
		mounter: mounter,
		logger:  logger,
		logTag:  "linuxFormatter",
	}
}

func (f linuxFormatter) Format(path string, fsType inventory.FilesystemType, label string) error {
	existing, err := f.GetFilesystemType(path)
	if err != nil {
		return bosherr.WrapError(err, "Checking filesystem format of partition")
	}
	if existing != inventory.FilesystemNone {
		f.logger.Debug(f.logTag, "Overwriting existing %s filesystem on %s", existing, path)
	}

	switch fsType {
	case inventory.FilesystemFat32:
		return f.runFormat(path, "mkfs.vfat", f.labeled("-n", label, "-F32", path)...)

	case inventory.FilesystemFat16:
		return f.runFormat(path, "mkfs.vfat", f.labeled("-n", label, "-F16", path)...)

	case inventory.FilesystemExt2, inventory.FilesystemExt3, inventory.FilesystemExt4:
		return f.makeExtFileSystem(path, fsType, label)

	case inventory.FilesystemXfs:
		return f.runFormat(path, "mkfs.xfs", f.labeled("-L", label, "-f", path)...)

	case inventory.FilesystemBtrfs:
		return f.runFormat(path, "mkfs.btrfs", f.labeled("-L", label, "-f", path)...)

	case inventory.FilesystemF2fs:
		return f.runFormat(path, "mkfs.f2fs", f.labeled("-l", label, "-f", path)...)

	case inventory.FilesystemNtfs:
		return f.runFormat(path, "mkfs.ntfs", f.labeled("-L", label, "-Q", "-F", path)...)

	case inventory.FilesystemSwap:
		return f.runFormat(path, "mkswap", path)

	default:
		return UnknownFilesystemFormatError{FsType: fsType}
	}
}

func (f linuxFormatter) runFormat(path, command string, args ...string) error {
	_, _, _, err := f.runner.RunCommand(command, args...)
	if err != nil {
		return bosherr.WrapErrorf(err, "Shelling out to %s for `%s'", command, path)
	}
	return nil
}

// labeled prepends a label option pair when a label is set.
func (f linuxFormatter) labeled(labelFlag, label string, args ...string) []string {
	if label == "" {
		return args
	}
	return append([]string{labelFlag, label}, args...)
}

func (f linuxFormatter) makeExtFileSystem(path string, fsType inventory.FilesystemType, label string) error {
	args := []string{"-t", string(fsType)}
	if fsType != inventory.FilesystemExt2 {
		// ext3 and ext4 carry a journal
		args = append(args, "-j")
	}
	if f.fs.FileExists("/sys/fs/ext4/features/lazy_itable_init") {
		args = append(args, "-E", "lazy_itable_init=1")
	}
	if label != "" {
		args = append(args, "-L", label)
	}
	args = append(args, path)

	_, _, _, err := f.runner.RunCommand("mke2fs", args...)
	if err != nil {
		return bosherr.WrapError(err, "Shelling out to mke2fs")
	}
	return nil
}

func (f linuxFormatter) GetFilesystemType(path string) (inventory.FilesystemType, error) {
	stdout, stderr, exitStatus, err := f.runner.RunCommand("blkid", "-p", path)
	if err != nil {
		if exitStatus == 2 && stderr == "" {
			// the device carries no filesystem at all
			return inventory.FilesystemNone, nil
		}
		return inventory.FilesystemNone, err
	}

	match := blkidTypeRegexp.FindStringSubmatch(stdout)
	if match == nil {
		return inventory.FilesystemNone, nil
	}

	if match[1] == "vfat" {
		return inventory.FilesystemFat32, nil
	}
	return inventory.FilesystemType(match[1]), nil
}

func (f linuxFormatter) GetFilesystemUuid(path string) (string, error) {
	stdout, _, _, err := f.runner.RunCommand("blkid", "-s", "UUID", "-o", "value", path)
	if err != nil {
		return "", bosherr.WrapErrorf(err, "Reading filesystem UUID of `%s'", path)
	}
	return strings.TrimSpace(stdout), nil
}

func (f linuxFormatter) CreateBtrfsSubvolumes(path string, subvols []layout.SubvolumeModification) error {
	if len(subvols) == 0 {
		return nil
	}

	tempDir, err := f.fs.TempDir("btrfs-subvol")
	if err != nil {
		return bosherr.WrapError(err, "Creating scratch mount point for subvolumes")
	}
	defer f.fs.RemoveAll(tempDir) //nolint:errcheck

	err = f.mounter.Mount(path, tempDir, string(inventory.FilesystemBtrfs))
	if err != nil {
		return bosherr.WrapErrorf(err, "Mounting `%s' to create subvolumes", path)
	}
	defer f.mounter.Unmount(tempDir) //nolint:errcheck

	for _, subvol := range subvols {
		_, _, _, err := f.runner.RunCommand("btrfs", "subvolume", "create", tempDir+"/"+subvol.Name)
		if err != nil {
			return bosherr.WrapErrorf(err, "Creating btrfs subvolume `%s' on `%s'", subvol.Name, path)
		}
		f.logger.Debug(f.logTag, "Created subvolume %s on %s", subvol.Name, path)
	}

	return nil
}
