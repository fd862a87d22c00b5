package inventory

import (
	"strings"
)

// DeviceType classifies a probed block device.
type DeviceType string

const (
	DeviceTypeDisk  DeviceType = "disk"
	DeviceTypeLoop  DeviceType = "loop"
	DeviceTypeRaid  DeviceType = "raid"
	DeviceTypeCrypt DeviceType = "crypt"
)

// deviceTypeFromLsblk maps an lsblk TYPE value onto a DeviceType.
// lsblk reports raid levels individually (raid0, raid1, ...).
func deviceTypeFromLsblk(value string) (DeviceType, bool) {
	switch {
	case value == "disk":
		return DeviceTypeDisk, true
	case value == "loop":
		return DeviceTypeLoop, true
	case value == "crypt":
		return DeviceTypeCrypt, true
	case strings.HasPrefix(value, "raid"):
		return DeviceTypeRaid, true
	}
	return "", false
}

// PartitionTable is the partition table format, in the vocabulary the
// partitioning tool uses for mklabel.
type PartitionTable string

const (
	PartitionTableGPT     PartitionTable = "gpt"
	PartitionTableMBR     PartitionTable = "msdos"
	PartitionTableUnknown PartitionTable = ""
)

// partitionTableFromLsblk maps an lsblk PTTYPE value; lsblk says "dos"
// where parted says "msdos".
func partitionTableFromLsblk(value string) PartitionTable {
	switch value {
	case "gpt":
		return PartitionTableGPT
	case "dos", "msdos":
		return PartitionTableMBR
	}
	return PartitionTableUnknown
}

// FilesystemType names a filesystem as the format step understands it.
type FilesystemType string

const (
	FilesystemNone  FilesystemType = ""
	FilesystemExt2  FilesystemType = "ext2"
	FilesystemExt3  FilesystemType = "ext3"
	FilesystemExt4  FilesystemType = "ext4"
	FilesystemXfs   FilesystemType = "xfs"
	FilesystemBtrfs FilesystemType = "btrfs"
	FilesystemF2fs  FilesystemType = "f2fs"
	FilesystemFat16 FilesystemType = "fat16"
	FilesystemFat32 FilesystemType = "fat32"
	FilesystemNtfs  FilesystemType = "ntfs"
	FilesystemSwap  FilesystemType = "swap"

	// FilesystemLuks is what blkid/lsblk report for a LUKS container;
	// it is never a format target.
	FilesystemLuks FilesystemType = "crypto_LUKS"
)

// IsSupportedFormat reports whether the format step can produce this
// filesystem.
func (f FilesystemType) IsSupportedFormat() bool {
	switch f {
	case FilesystemExt2, FilesystemExt3, FilesystemExt4, FilesystemXfs,
		FilesystemBtrfs, FilesystemF2fs, FilesystemFat16, FilesystemFat32,
		FilesystemNtfs, FilesystemSwap:
		return true
	}
	return false
}

// filesystemFromLsblk normalizes an lsblk FSTYPE value. lsblk reports
// both FAT variants as vfat; the wider one is assumed.
func filesystemFromLsblk(value string) FilesystemType {
	if value == "vfat" {
		return FilesystemFat32
	}
	return FilesystemType(value)
}

// PartitionFlag is a partition-table attribute relevant to booting and
// layout decisions.
type PartitionFlag string

const (
	FlagBoot      PartitionFlag = "boot"
	FlagESP       PartitionFlag = "esp"
	FlagXBootLdr  PartitionFlag = "xbootldr"
	FlagLinuxHome PartitionFlag = "linux-home"
	FlagSwap      PartitionFlag = "swap"
)

// GPT partition type GUIDs, as reported in lsblk PARTTYPE.
const (
	partTypeESP       = "c12a7328-f81f-11d2-ba4b-00a0c93ec93b"
	partTypeXBootLdr  = "bc13c2ff-59e6-4262-a352-b275fd6f7172"
	partTypeLinuxHome = "933ac7e1-2eb4-4f13-b844-0e14e2aef915"
	partTypeLinuxSwap = "0657fd6d-a4ab-43c4-84e5-0933c84b4f4f"
)

// flagsFromPartType derives flags from the PARTTYPE identifier (a GUID
// on GPT, a hex id on dos tables) and the dos active-partition flag.
func flagsFromPartType(typeCode string, dosFlags string) []PartitionFlag {
	var flags []PartitionFlag
	switch strings.ToLower(typeCode) {
	case partTypeESP:
		flags = append(flags, FlagBoot, FlagESP)
	case partTypeXBootLdr:
		flags = append(flags, FlagBoot, FlagXBootLdr)
	case partTypeLinuxHome:
		flags = append(flags, FlagLinuxHome)
	case partTypeLinuxSwap, "0x82":
		flags = append(flags, FlagSwap)
	}
	if dosFlags == "0x80" {
		flags = append(flags, FlagBoot)
	}
	return flags
}

// HasFlag reports membership in a flag list.
func HasFlag(flags []PartitionFlag, flag PartitionFlag) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

// BtrfsSubvolumeInfo is one subvolume of a mounted btrfs filesystem.
type BtrfsSubvolumeInfo struct {
	Name       string
	Mountpoint string
}
