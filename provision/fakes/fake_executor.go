package fakes

import (
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/provision"
)

type FakeExecutor struct {
	ApplyCallCount  int
	ApplyLayouts    []*layout.DiskLayoutConfiguration
	ApplyEncryption []*layout.DiskEncryption

	ApplyResult *provision.Result
	ApplyErr    error
}

func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{ApplyResult: &provision.Result{DevicePaths: map[string]string{}}}
}

func (e *FakeExecutor) Apply(cfg *layout.DiskLayoutConfiguration, enc *layout.DiskEncryption) (*provision.Result, error) {
	e.ApplyCallCount++
	e.ApplyLayouts = append(e.ApplyLayouts, cfg)
	e.ApplyEncryption = append(e.ApplyEncryption, enc)
	if e.ApplyErr != nil {
		return nil, e.ApplyErr
	}
	return e.ApplyResult, nil
}
