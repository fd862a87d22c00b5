package provision

import (
	"path"
	"sort"
	"strings"
)

// MountPlanEntry is one mount to perform: a realized block device at
// an absolute target under the installation root.
type MountPlanEntry struct {
	// Source is the realized device path: a partition, an LVM mapper,
	// or a crypto mapper.
	Source string

	// Mountpoint is the logical path inside the installed system.
	Mountpoint string

	// Target is where the mount lands, Mountpoint joined under the
	// installation root.
	Target string

	Fstype  string
	Options []string

	// SubvolName is set for btrfs subvolume mounts.
	SubvolName string

	FsUuid   string
	PartUuid string

	// Swap entries have no mountpoint; they are activated after every
	// filesystem is mounted.
	Swap bool
}

// MountPlan accumulates entries while the executor realizes devices,
// then orders them so the root of the target tree mounts first.
type MountPlan struct {
	mountRoot string
	entries   []MountPlanEntry
}

func NewMountPlan(mountRoot string) *MountPlan {
	return &MountPlan{mountRoot: mountRoot}
}

func (p *MountPlan) AddFilesystem(source, mountpoint, fstype string, options []string, fsUuid, partUuid string) {
	p.entries = append(p.entries, MountPlanEntry{
		Source:     source,
		Mountpoint: path.Clean(mountpoint),
		Target:     path.Join(p.mountRoot, mountpoint),
		Fstype:     fstype,
		Options:    append([]string(nil), options...),
		FsUuid:     fsUuid,
		PartUuid:   partUuid,
	})
}

// AddSubvolume adds a btrfs subvolume mount. The subvolume rides on
// the owning filesystem's source device with a subvol option appended.
func (p *MountPlan) AddSubvolume(source, subvolName, mountpoint, fstype string, options []string, fsUuid, partUuid string) {
	opts := append([]string(nil), options...)
	opts = append(opts, "subvol="+subvolName)
	p.entries = append(p.entries, MountPlanEntry{
		Source:     source,
		Mountpoint: path.Clean(mountpoint),
		Target:     path.Join(p.mountRoot, mountpoint),
		Fstype:     fstype,
		Options:    opts,
		SubvolName: subvolName,
		FsUuid:     fsUuid,
		PartUuid:   partUuid,
	})
}

func (p *MountPlan) AddSwap(source, fsUuid, partUuid string) {
	p.entries = append(p.entries, MountPlanEntry{
		Source:   source,
		FsUuid:   fsUuid,
		PartUuid: partUuid,
		Swap:     true,
	})
}

// Ordered returns the entries sorted by mountpoint depth, shallowest
// first and ties broken lexicographically, with swap activation last.
// A plan that mounts filesystems without mounting the tree root first
// is refused.
func (p *MountPlan) Ordered() ([]MountPlanEntry, error) {
	var mounts, swaps []MountPlanEntry
	for _, entry := range p.entries {
		if entry.Swap {
			swaps = append(swaps, entry)
		} else {
			mounts = append(mounts, entry)
		}
	}

	sort.SliceStable(mounts, func(i, j int) bool {
		di, dj := mountDepth(mounts[i].Mountpoint), mountDepth(mounts[j].Mountpoint)
		if di != dj {
			return di < dj
		}
		return mounts[i].Mountpoint < mounts[j].Mountpoint
	})

	if len(mounts) > 0 && mounts[0].Mountpoint != "/" {
		return nil, InvalidMountOrderError{First: mounts[0].Mountpoint}
	}

	return append(mounts, swaps...), nil
}

// mountDepth counts path elements: "/" is 0, "/boot" is 1, "/boot/efi"
// is 2.
func mountDepth(mountpoint string) int {
	cleaned := path.Clean(mountpoint)
	if cleaned == "/" {
		return 0
	}
	return strings.Count(cleaned, "/")
}
