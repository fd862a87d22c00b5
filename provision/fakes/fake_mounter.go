package fakes

type FakeMounter struct {
	MountCalled  bool
	MountSources []string
	MountTargets []string
	MountFstypes []string
	MountOptions [][]string
	MountErr     error

	UnmountCalled  bool
	UnmountTargets []string
	UnmountDid     bool
	UnmountErr     error

	IsMountedResults map[string]bool
	IsMountedErr     error

	SwapOnCalled bool
	SwapOnPaths  []string
	SwapOnErr    error
}

func NewFakeMounter() *FakeMounter {
	return &FakeMounter{
		IsMountedResults: make(map[string]bool),
	}
}

func (m *FakeMounter) Mount(source, target, fstype string, options ...string) error {
	m.MountCalled = true
	m.MountSources = append(m.MountSources, source)
	m.MountTargets = append(m.MountTargets, target)
	m.MountFstypes = append(m.MountFstypes, fstype)
	m.MountOptions = append(m.MountOptions, options)
	return m.MountErr
}

func (m *FakeMounter) Unmount(target string) (bool, error) {
	m.UnmountCalled = true
	m.UnmountTargets = append(m.UnmountTargets, target)
	return m.UnmountDid, m.UnmountErr
}

func (m *FakeMounter) IsMounted(devicePathOrMountPoint string) (bool, error) {
	if m.IsMountedErr != nil {
		return false, m.IsMountedErr
	}
	return m.IsMountedResults[devicePathOrMountPoint], nil
}

func (m *FakeMounter) SwapOn(path string) error {
	m.SwapOnCalled = true
	m.SwapOnPaths = append(m.SwapOnPaths, path)
	return m.SwapOnErr
}
