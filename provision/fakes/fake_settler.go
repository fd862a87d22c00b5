package fakes

type FakeSettler struct {
	TriggerCallCount int
	TriggerErr       error

	SettleCallCount int
	SettleErr       error

	EnsureDeviceReadableCalled bool
	EnsureDeviceReadablePaths  []string
	EnsureDeviceReadableErr    error
}

func NewFakeSettler() *FakeSettler {
	return &FakeSettler{}
}

func (s *FakeSettler) Trigger() error {
	s.TriggerCallCount++
	return s.TriggerErr
}

func (s *FakeSettler) Settle() error {
	s.SettleCallCount++
	return s.SettleErr
}

func (s *FakeSettler) EnsureDeviceReadable(path string) error {
	s.EnsureDeviceReadableCalled = true
	s.EnsureDeviceReadablePaths = append(s.EnsureDeviceReadablePaths, path)
	return s.EnsureDeviceReadableErr
}
