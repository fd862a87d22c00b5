package provision

import (
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

type linuxMounter struct {
	runner         boshsys.CmdRunner
	mountsSearcher MountsSearcher
}

func NewLinuxMounter(runner boshsys.CmdRunner, mountsSearcher MountsSearcher) Mounter {
	return linuxMounter{
		runner:         runner,
		mountsSearcher: mountsSearcher,
	}
}

func (m linuxMounter) Mount(source, target, fstype string, options ...string) error {
	alreadyMounted, err := m.isMountedAt(source, target)
	if err != nil {
		return err
	}
	if alreadyMounted {
		return nil
	}

	args := []string{}
	if fstype != "" {
		args = append(args, "-t", fstype)
	}
	for _, option := range options {
		args = append(args, "-o", option)
	}
	args = append(args, source, target)

	_, _, _, err = m.runner.RunCommand("mount", args...)
	if err != nil {
		return bosherr.WrapErrorf(err, "Mounting `%s' at `%s'", source, target)
	}
	return nil
}

func (m linuxMounter) Unmount(target string) (bool, error) {
	mounted, err := m.IsMounted(target)
	if err != nil || !mounted {
		return false, err
	}

	_, _, _, err = m.runner.RunCommand("umount", target)
	if err != nil {
		return false, bosherr.WrapErrorf(err, "Unmounting `%s'", target)
	}
	return true, nil
}

func (m linuxMounter) IsMounted(devicePathOrMountPoint string) (bool, error) {
	mounts, err := m.mountsSearcher.SearchMounts()
	if err != nil {
		return false, bosherr.WrapError(err, "Searching mounts")
	}

	for _, mount := range mounts {
		if mount.PartitionPath == devicePathOrMountPoint || mount.MountPoint == devicePathOrMountPoint {
			return true, nil
		}
	}
	return false, nil
}

func (m linuxMounter) SwapOn(path string) error {
	_, _, _, err := m.runner.RunCommand("swapon", path)
	if err != nil {
		return bosherr.WrapErrorf(err, "Activating swap on `%s'", path)
	}
	return nil
}

// isMountedAt treats a repeat mount of the same source at the same
// target as done; a different source already holding the target is an
// error.
func (m linuxMounter) isMountedAt(source, target string) (bool, error) {
	mounts, err := m.mountsSearcher.SearchMounts()
	if err != nil {
		return false, bosherr.WrapError(err, "Searching mounts")
	}

	for _, mount := range mounts {
		if mount.MountPoint != target {
			continue
		}
		if mount.PartitionPath == source {
			return true, nil
		}
		return false, bosherr.Errorf("`%s' is already mounted at `%s'", mount.PartitionPath, target)
	}
	return false, nil
}
