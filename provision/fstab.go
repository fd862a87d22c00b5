package provision

import (
	"fmt"
	"path"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

// RenderFstab renders the mount plan as fstab lines, in the same
// root-first order the mounts were performed. Sources are written by
// filesystem UUID when one is known.
func RenderFstab(entries []MountPlanEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Swap {
			lines = append(lines, fmt.Sprintf("%s none swap defaults 0 0", fstabSource(entry)))
			continue
		}

		options := "defaults"
		if len(entry.Options) > 0 {
			options = strings.Join(entry.Options, ",")
		}
		lines = append(lines, fmt.Sprintf(
			"%s %s %s %s 0 %d",
			fstabSource(entry), entry.Mountpoint, entry.Fstype, options, fsckPass(entry),
		))
	}
	return lines
}

func fstabSource(entry MountPlanEntry) string {
	if entry.FsUuid != "" {
		return "UUID=" + entry.FsUuid
	}
	return entry.Source
}

// fsckPass is 1 for the root filesystem, 2 for other checked
// filesystems, 0 for btrfs which carries no fsck.
func fsckPass(entry MountPlanEntry) int {
	switch entry.Fstype {
	case "btrfs", "":
		return 0
	}
	if entry.Mountpoint == "/" {
		return 1
	}
	return 2
}

// RenderCrypttab renders one line per unlocked container. Containers
// without a keyfile unlock interactively, or through the enrolled
// HSM, and get "none" as their key field.
func RenderCrypttab(entries []CryptEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		source := entry.DevPath
		if entry.Uuid != "" {
			source = "UUID=" + entry.Uuid
		} else if entry.PartUuid != "" {
			source = "PARTUUID=" + entry.PartUuid
		}

		key := entry.KeyfilePath
		if key == "" {
			key = "none"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s luks", entry.MapperName, source, key))
	}
	return lines
}

// WriteFstab writes etc/fstab, and etc/crypttab when containers were
// created, under the mounted target tree.
func WriteFstab(fs boshsys.FileSystem, result *Result, targetRoot string) error {
	etcDir := path.Join(targetRoot, "etc")
	if err := fs.MkdirAll(etcDir, 0755); err != nil {
		return bosherr.WrapErrorf(err, "Creating `%s'", etcDir)
	}

	fstab := strings.Join(RenderFstab(result.MountPlan), "\n") + "\n"
	if err := fs.WriteFileString(path.Join(etcDir, "fstab"), fstab); err != nil {
		return bosherr.WrapError(err, "Writing fstab")
	}

	if len(result.CryptEntries) == 0 {
		return nil
	}
	crypttab := strings.Join(RenderCrypttab(result.CryptEntries), "\n") + "\n"
	if err := fs.WriteFileString(path.Join(etcDir, "crypttab"), crypttab); err != nil {
		return bosherr.WrapError(err, "Writing crypttab")
	}
	return nil
}
