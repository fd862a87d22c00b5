package fakes

import (
	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
)

type FakeFormatter struct {
	FormatCalled  bool
	FormatPaths   []string
	FormatFsTypes []inventory.FilesystemType
	FormatLabels  []string
	FormatErr     error

	GetFilesystemTypeTypes map[string]inventory.FilesystemType
	GetFilesystemTypeErr   error

	GetFilesystemUuidUuids map[string]string
	GetFilesystemUuidErr   error

	CreateBtrfsSubvolumesCalled  bool
	CreateBtrfsSubvolumesPaths   []string
	CreateBtrfsSubvolumesSubvols [][]layout.SubvolumeModification
	CreateBtrfsSubvolumesErr     error
}

func NewFakeFormatter() *FakeFormatter {
	return &FakeFormatter{
		GetFilesystemTypeTypes: make(map[string]inventory.FilesystemType),
		GetFilesystemUuidUuids: make(map[string]string),
	}
}

func (f *FakeFormatter) Format(path string, fsType inventory.FilesystemType, label string) error {
	f.FormatCalled = true
	f.FormatPaths = append(f.FormatPaths, path)
	f.FormatFsTypes = append(f.FormatFsTypes, fsType)
	f.FormatLabels = append(f.FormatLabels, label)
	return f.FormatErr
}

func (f *FakeFormatter) GetFilesystemType(path string) (inventory.FilesystemType, error) {
	if f.GetFilesystemTypeErr != nil {
		return inventory.FilesystemNone, f.GetFilesystemTypeErr
	}
	fsType, found := f.GetFilesystemTypeTypes[path]
	if !found {
		return inventory.FilesystemNone, nil
	}
	return fsType, nil
}

func (f *FakeFormatter) GetFilesystemUuid(path string) (string, error) {
	if f.GetFilesystemUuidErr != nil {
		return "", f.GetFilesystemUuidErr
	}
	return f.GetFilesystemUuidUuids[path], nil
}

func (f *FakeFormatter) CreateBtrfsSubvolumes(path string, subvols []layout.SubvolumeModification) error {
	f.CreateBtrfsSubvolumesCalled = true
	f.CreateBtrfsSubvolumesPaths = append(f.CreateBtrfsSubvolumesPaths, path)
	f.CreateBtrfsSubvolumesSubvols = append(f.CreateBtrfsSubvolumesSubvols, subvols)
	return f.CreateBtrfsSubvolumesErr
}
