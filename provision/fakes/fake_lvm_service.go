package fakes

import (
	"fmt"

	"github.com/diskmason/diskmason/provision"
)

type FakeLvmService struct {
	CreatePhysicalVolumeCalled bool
	CreatePhysicalVolumePaths  []string
	CreatePhysicalVolumeErr    error

	CreateVolumeGroupCalled  bool
	CreateVolumeGroupNames   []string
	CreateVolumeGroupPvPaths [][]string
	CreateVolumeGroupErr     error

	CreateLogicalVolumeCalled     bool
	CreateLogicalVolumeVgNames    []string
	CreateLogicalVolumeLvNames    []string
	CreateLogicalVolumeSizes      []uint64
	CreateLogicalVolumeRemainders []bool
	CreateLogicalVolumeErr        error

	ActivateVolumeGroupCalled bool
	ActivateVolumeGroupNames  []string
	ActivateVolumeGroupErr    error

	ListLogicalVolumesInfos []provision.LogicalVolumeInfo
	ListLogicalVolumesErr   error
}

func NewFakeLvmService() *FakeLvmService {
	return &FakeLvmService{}
}

func (s *FakeLvmService) CreatePhysicalVolume(devPath string) error {
	s.CreatePhysicalVolumeCalled = true
	s.CreatePhysicalVolumePaths = append(s.CreatePhysicalVolumePaths, devPath)
	return s.CreatePhysicalVolumeErr
}

func (s *FakeLvmService) CreateVolumeGroup(name string, pvPaths []string) error {
	s.CreateVolumeGroupCalled = true
	s.CreateVolumeGroupNames = append(s.CreateVolumeGroupNames, name)
	s.CreateVolumeGroupPvPaths = append(s.CreateVolumeGroupPvPaths, pvPaths)
	return s.CreateVolumeGroupErr
}

func (s *FakeLvmService) CreateLogicalVolume(vgName, lvName string, sizeBytes uint64, consumeRemainder bool) (string, error) {
	s.CreateLogicalVolumeCalled = true
	s.CreateLogicalVolumeVgNames = append(s.CreateLogicalVolumeVgNames, vgName)
	s.CreateLogicalVolumeLvNames = append(s.CreateLogicalVolumeLvNames, lvName)
	s.CreateLogicalVolumeSizes = append(s.CreateLogicalVolumeSizes, sizeBytes)
	s.CreateLogicalVolumeRemainders = append(s.CreateLogicalVolumeRemainders, consumeRemainder)
	if s.CreateLogicalVolumeErr != nil {
		return "", s.CreateLogicalVolumeErr
	}
	return fmt.Sprintf("/dev/%s/%s", vgName, lvName), nil
}

func (s *FakeLvmService) ActivateVolumeGroup(name string) error {
	s.ActivateVolumeGroupCalled = true
	s.ActivateVolumeGroupNames = append(s.ActivateVolumeGroupNames, name)
	return s.ActivateVolumeGroupErr
}

func (s *FakeLvmService) ListLogicalVolumes(vgName string) ([]provision.LogicalVolumeInfo, error) {
	if s.ListLogicalVolumesErr != nil {
		return nil, s.ListLogicalVolumesErr
	}
	return s.ListLogicalVolumesInfos, nil
}
