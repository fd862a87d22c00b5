package provision

import (
	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . Formatter

// Formatter creates filesystems. Only the executor decides what may be
// formatted; the formatter just refuses types it cannot build.
type Formatter interface {
	Format(path string, fsType inventory.FilesystemType, label string) error

	// GetFilesystemType reports what blkid sees on the device, empty
	// when nothing is there.
	GetFilesystemType(path string) (inventory.FilesystemType, error)

	// GetFilesystemUuid reports the filesystem UUID after a format.
	GetFilesystemUuid(path string) (string, error)

	// CreateBtrfsSubvolumes mounts a fresh btrfs filesystem at a
	// scratch location and creates the named subvolumes in it.
	CreateBtrfsSubvolumes(path string, subvols []layout.SubvolumeModification) error
}
