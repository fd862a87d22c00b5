package provision

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . LvmService

// LogicalVolumeInfo is one row of an lvs report.
type LogicalVolumeInfo struct {
	Name      string
	VgName    string
	Path      string
	SizeBytes uint64
}

// LvmService wraps the lvm2 userspace tools.
type LvmService interface {
	CreatePhysicalVolume(devPath string) error
	CreateVolumeGroup(name string, pvPaths []string) error

	// CreateLogicalVolume carves a volume out of the group and returns
	// its device path. With consumeRemainder set the size is ignored
	// and the volume takes all remaining extents.
	CreateLogicalVolume(vgName, lvName string, sizeBytes uint64, consumeRemainder bool) (string, error)

	ActivateVolumeGroup(name string) error
	ListLogicalVolumes(vgName string) ([]LogicalVolumeInfo, error)
}
