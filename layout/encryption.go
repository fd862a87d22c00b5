package layout

import (
	"time"
)

type EncryptionType string

const (
	NoEncryption EncryptionType = "no_encryption"
	// Luks encrypts plain partitions.
	Luks EncryptionType = "luks"
	// LvmOnLuks encrypts the partitions backing the volume group; the
	// logical volumes inherit the encryption.
	LvmOnLuks EncryptionType = "lvm_on_luks"
	// LuksOnLvm encrypts individual logical volumes.
	LuksOnLvm EncryptionType = "luks_on_lvm"
)

// DefaultIterTime is passed to luksFormat as the PBKDF benchmark time.
const DefaultIterTime = 10 * time.Second

// Fido2Device is a hardware security module usable for LUKS2 unlock.
type Fido2Device struct {
	Path         string `json:"path"`
	Manufacturer string `json:"manufacturer"`
	Product      string `json:"product"`
}

// DiskEncryption selects what gets encrypted and how it unlocks. A
// single config targets either partitions or logical volumes, never a
// mix: the two are realized at different steps and a mixed set has no
// well defined unlock order.
type DiskEncryption struct {
	EncType    EncryptionType
	Password   string
	Partitions []*PartitionModification
	LvmVolumes []*LvmVolume
	HSMDevice  *Fido2Device
	IterTime   time.Duration
}

func NewDiskEncryption(
	encType EncryptionType,
	password string,
	partitions []*PartitionModification,
	volumes []*LvmVolume,
	hsmDevice *Fido2Device,
) (*DiskEncryption, error) {
	if encType == NoEncryption {
		if len(partitions) > 0 || len(volumes) > 0 {
			return nil, InvalidStateError{Reason: "encryption targets given but encryption is disabled"}
		}
		return &DiskEncryption{EncType: NoEncryption}, nil
	}

	if password == "" && hsmDevice == nil {
		return nil, InvalidStateError{Reason: "encryption requires a password or an HSM device"}
	}
	if len(partitions) > 0 && len(volumes) > 0 {
		return nil, InvalidStateError{Reason: "encryption cannot target both partitions and LVM volumes"}
	}
	if len(partitions) == 0 && len(volumes) == 0 {
		return nil, InvalidStateError{Reason: "encryption enabled but no targets selected"}
	}

	switch encType {
	case Luks, LvmOnLuks:
		if len(partitions) == 0 {
			return nil, InvalidStateError{
				Reason: "partition level encryption selected but only LVM volumes targeted",
			}
		}
	case LuksOnLvm:
		if len(volumes) == 0 {
			return nil, InvalidStateError{
				Reason: "LVM volume encryption selected but only partitions targeted",
			}
		}
	}

	return &DiskEncryption{
		EncType:    encType,
		Password:   password,
		Partitions: partitions,
		LvmVolumes: volumes,
		HSMDevice:  hsmDevice,
		IterTime:   DefaultIterTime,
	}, nil
}

func (e *DiskEncryption) Enabled() bool {
	return e != nil && e.EncType != NoEncryption
}

func (e *DiskEncryption) IsPartitionEncrypted(id string) bool {
	for _, part := range e.Partitions {
		if part.Id == id {
			return true
		}
	}
	return false
}

func (e *DiskEncryption) IsVolumeEncrypted(id string) bool {
	for _, vol := range e.LvmVolumes {
		if vol.Id == id {
			return true
		}
	}
	return false
}

// ShouldGenerateKeyfile reports whether an encrypted target gets an
// auto-unlock keyfile. The root filesystem never does: it is unlocked
// interactively, or by the HSM when one is enrolled.
func (e *DiskEncryption) ShouldGenerateKeyfile(isRoot bool) bool {
	if !e.Enabled() {
		return false
	}
	return !isRoot
}
