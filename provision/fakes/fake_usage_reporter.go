package fakes

import (
	"errors"

	"github.com/diskmason/diskmason/provision"
)

type FakeUsageReporter struct {
	GetUsagePaths  []string
	GetUsageUsages map[string]provision.FsUsage
	GetUsageErr    error
}

func NewFakeUsageReporter() *FakeUsageReporter {
	return &FakeUsageReporter{
		GetUsageUsages: make(map[string]provision.FsUsage),
	}
}

func (r *FakeUsageReporter) GetUsage(path string) (provision.FsUsage, error) {
	r.GetUsagePaths = append(r.GetUsagePaths, path)
	if r.GetUsageErr != nil {
		return provision.FsUsage{}, r.GetUsageErr
	}
	usage, found := r.GetUsageUsages[path]
	if !found {
		return provision.FsUsage{}, errors.New("no usage stubbed for " + path)
	}
	return usage, nil
}
