package provision

import (
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	sigar "github.com/cloudfoundry/gosigar"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . UsageReporter

// FsUsage is the capacity picture of one mounted filesystem.
type FsUsage struct {
	Total uint64
	Used  uint64
	Avail uint64
}

// MountUsage ties a capacity reading to the mount it was taken from.
type MountUsage struct {
	Mountpoint string
	Target     string
	Usage      FsUsage
}

// UsageReporter reads filesystem capacity off a mounted path.
type UsageReporter interface {
	GetUsage(path string) (FsUsage, error)
}

type sigarUsageReporter struct{}

func NewSigarUsageReporter() UsageReporter {
	return sigarUsageReporter{}
}

func (r sigarUsageReporter) GetUsage(path string) (FsUsage, error) {
	fsUsage := sigar.FileSystemUsage{}
	err := fsUsage.Get(path)
	if err != nil {
		return FsUsage{}, bosherr.WrapErrorf(err, "Getting filesystem usage of `%s'", path)
	}
	return FsUsage{Total: fsUsage.Total, Used: fsUsage.Used, Avail: fsUsage.Avail}, nil
}
