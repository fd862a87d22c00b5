package fakes

import (
	"time"

	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/provision"
)

type FakeLuksService struct {
	FormatCalled    bool
	FormatDevPaths  []string
	FormatKeys      []provision.LuksKey
	FormatIterTimes []time.Duration
	FormatErr       error

	OpenCalled      bool
	OpenDevPaths    []string
	OpenMapperNames []string
	OpenKeys        []provision.LuksKey
	OpenErr         error

	CloseCalled      bool
	CloseMapperNames []string
	CloseErr         error

	GenerateKeyfileCalled bool
	GenerateKeyfilePaths  []string
	GenerateKeyfileErr    error

	AddKeyfileCalled       bool
	AddKeyfileDevPaths     []string
	AddKeyfileKeys         []provision.LuksKey
	AddKeyfileKeyfilePaths []string
	AddKeyfileErr          error

	EnrollFido2Called     bool
	EnrollFido2DevPaths   []string
	EnrollFido2Fido2Paths []string
	EnrollFido2Keys       []provision.LuksKey
	EnrollFido2Err        error

	ListFido2DevicesDevices []layout.Fido2Device
	ListFido2DevicesErr     error
}

func NewFakeLuksService() *FakeLuksService {
	return &FakeLuksService{}
}

func (s *FakeLuksService) Format(devPath string, key provision.LuksKey, iterTime time.Duration) error {
	s.FormatCalled = true
	s.FormatDevPaths = append(s.FormatDevPaths, devPath)
	s.FormatKeys = append(s.FormatKeys, key)
	s.FormatIterTimes = append(s.FormatIterTimes, iterTime)
	return s.FormatErr
}

func (s *FakeLuksService) Open(devPath, mapperName string, key provision.LuksKey) (string, error) {
	s.OpenCalled = true
	s.OpenDevPaths = append(s.OpenDevPaths, devPath)
	s.OpenMapperNames = append(s.OpenMapperNames, mapperName)
	s.OpenKeys = append(s.OpenKeys, key)
	if s.OpenErr != nil {
		return "", s.OpenErr
	}
	return "/dev/mapper/" + mapperName, nil
}

func (s *FakeLuksService) Close(mapperName string) error {
	s.CloseCalled = true
	s.CloseMapperNames = append(s.CloseMapperNames, mapperName)
	return s.CloseErr
}

func (s *FakeLuksService) GenerateKeyfile(path string) error {
	s.GenerateKeyfileCalled = true
	s.GenerateKeyfilePaths = append(s.GenerateKeyfilePaths, path)
	return s.GenerateKeyfileErr
}

func (s *FakeLuksService) AddKeyfile(devPath string, key provision.LuksKey, keyfilePath string) error {
	s.AddKeyfileCalled = true
	s.AddKeyfileDevPaths = append(s.AddKeyfileDevPaths, devPath)
	s.AddKeyfileKeys = append(s.AddKeyfileKeys, key)
	s.AddKeyfileKeyfilePaths = append(s.AddKeyfileKeyfilePaths, keyfilePath)
	return s.AddKeyfileErr
}

func (s *FakeLuksService) EnrollFido2(devPath, fido2Path string, key provision.LuksKey) error {
	s.EnrollFido2Called = true
	s.EnrollFido2DevPaths = append(s.EnrollFido2DevPaths, devPath)
	s.EnrollFido2Fido2Paths = append(s.EnrollFido2Fido2Paths, fido2Path)
	s.EnrollFido2Keys = append(s.EnrollFido2Keys, key)
	return s.EnrollFido2Err
}

func (s *FakeLuksService) ListFido2Devices() ([]layout.Fido2Device, error) {
	if s.ListFido2DevicesErr != nil {
		return nil, s.ListFido2DevicesErr
	}
	return s.ListFido2DevicesDevices, nil
}
