package inventory

import (
	"fmt"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . Prober

// Prober enumerates the block devices currently visible to the kernel
// and their partitions. Implementations shell out to the system's
// block-device listing tool.
type Prober interface {
	Probe() ([]DeviceInfo, error)
}

// ProbeError reports that the probe tool failed or returned output
// that could not be parsed.
type ProbeError struct {
	Reason string
	Err    error
}

func (e ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Probing block devices: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("Probing block devices: %s", e.Reason)
}

func (e ProbeError) Unwrap() error { return e.Err }
