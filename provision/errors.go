package provision

import (
	"fmt"

	"github.com/diskmason/diskmason/inventory"
)

// PartitionTableMismatchError reports that a device carries a different
// partition table than the plan was built against. The plan must be
// rebuilt from a fresh probe.
type PartitionTableMismatchError struct {
	DevPath string
	Want    inventory.PartitionTable
	Got     inventory.PartitionTable
}

func (e PartitionTableMismatchError) Error() string {
	return fmt.Sprintf(
		"Device `%s' carries a '%s' partition table, the plan expects '%s'",
		e.DevPath, e.Got, e.Want,
	)
}

// PartitionNeverAppearedError reports that a created partition did not
// show up in the kernel's view within the bounded polling window.
type PartitionNeverAppearedError struct {
	DevPath  string
	Attempts int
}

func (e PartitionNeverAppearedError) Error() string {
	return fmt.Sprintf(
		"Partition created on `%s' never appeared after %d probe attempts",
		e.DevPath, e.Attempts,
	)
}

// MapperNeverAppearedError reports that a device-mapper node did not
// appear after LVM or LUKS realization.
type MapperNeverAppearedError struct {
	MapperPath string
	Attempts   int
}

func (e MapperNeverAppearedError) Error() string {
	return fmt.Sprintf(
		"Mapper device `%s' never appeared after %d attempts",
		e.MapperPath, e.Attempts,
	)
}

// UnknownFilesystemFormatError reports a formattable target whose
// filesystem type has no known mkfs invocation.
type UnknownFilesystemFormatError struct {
	FsType inventory.FilesystemType
}

func (e UnknownFilesystemFormatError) Error() string {
	return fmt.Sprintf("No known format invocation for filesystem type '%s'", e.FsType)
}

// InvalidMountOrderError reports a mount plan that does not start at
// the root of the target tree.
type InvalidMountOrderError struct {
	First string
}

func (e InvalidMountOrderError) Error() string {
	return fmt.Sprintf("Mount plan must start at '/', got `%s'", e.First)
}

// MountVerificationFailedError reports a mount that did not show up in
// the mount table after the bounded verification retries.
type MountVerificationFailedError struct {
	Source   string
	Target   string
	Attempts int
}

func (e MountVerificationFailedError) Error() string {
	return fmt.Sprintf(
		"Mount of `%s' at `%s' not visible after %d verification attempts",
		e.Source, e.Target, e.Attempts,
	)
}
