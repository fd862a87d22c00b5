package fakes

import (
	"github.com/diskmason/diskmason/inventory"
)

type FakeProber struct {
	ProbeCallCount int

	// ProbeResults are consumed in order; the last one repeats.
	ProbeResults [][]inventory.DeviceInfo
	ProbeErr     error
}

func NewFakeProber() *FakeProber {
	return &FakeProber{}
}

func (f *FakeProber) AddProbeResult(devices []inventory.DeviceInfo) {
	f.ProbeResults = append(f.ProbeResults, devices)
}

func (f *FakeProber) Probe() ([]inventory.DeviceInfo, error) {
	f.ProbeCallCount++
	if f.ProbeErr != nil {
		return nil, f.ProbeErr
	}
	if len(f.ProbeResults) == 0 {
		return nil, nil
	}
	result := f.ProbeResults[0]
	if len(f.ProbeResults) > 1 {
		f.ProbeResults = f.ProbeResults[1:]
	}
	return result, nil
}
