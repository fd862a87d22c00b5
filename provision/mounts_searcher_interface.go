package provision

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . MountsSearcher

// Mount is one line of the kernel mount table.
type Mount struct {
	PartitionPath string
	MountPoint    string
}

type MountsSearcher interface {
	SearchMounts() ([]Mount, error)
}
