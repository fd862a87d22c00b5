package provision

import (
	"github.com/diskmason/diskmason/inventory"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . Partitioner

// PartitionSpec is one partition to create, in absolute byte
// coordinates on the device.
type PartitionSpec struct {
	Number     uint
	StartBytes uint64
	EndBytes   uint64
	FsTypeHint inventory.FilesystemType
	Flags      []inventory.PartitionFlag
	Label      string
}

// Partitioner talks to parted. Destructive throughout.
type Partitioner interface {
	// WipeDevice clears all signatures and writes a fresh partition
	// table of the given kind.
	WipeDevice(devPath string, table inventory.PartitionTable) error

	// ProbeTable reports the partition table currently on the device.
	ProbeTable(devPath string) (inventory.PartitionTable, error)

	CreatePartition(devPath string, spec PartitionSpec) error
	RemovePartition(devPath string, number uint) error
}
