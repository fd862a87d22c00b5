package fakes

import (
	"github.com/diskmason/diskmason/provision"
)

type FakeMountsSearcher struct {
	SearchMountsCallCount int
	SearchMountsMounts    []provision.Mount
	SearchMountsErr       error
}

func NewFakeMountsSearcher() *FakeMountsSearcher {
	return &FakeMountsSearcher{}
}

func (s *FakeMountsSearcher) AddMount(partitionPath, mountPoint string) {
	s.SearchMountsMounts = append(s.SearchMountsMounts, provision.Mount{
		PartitionPath: partitionPath,
		MountPoint:    mountPoint,
	})
}

func (s *FakeMountsSearcher) SearchMounts() ([]provision.Mount, error) {
	s.SearchMountsCallCount++
	if s.SearchMountsErr != nil {
		return nil, s.SearchMountsErr
	}
	return s.SearchMountsMounts, nil
}
