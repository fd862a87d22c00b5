package provision

import (
	"time"

	"github.com/diskmason/diskmason/layout"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . LuksService

// LuksKey is how a LUKS container unlocks: an interactive passphrase
// or a keyfile on disk. Exactly one side is set.
type LuksKey struct {
	Passphrase  string
	KeyfilePath string
}

// LuksService wraps cryptsetup and the FIDO2 enrollment tooling.
type LuksService interface {
	Format(devPath string, key LuksKey, iterTime time.Duration) error

	// Open unlocks the container and returns the mapper path the
	// cleartext device appears at.
	Open(devPath, mapperName string, key LuksKey) (string, error)
	Close(mapperName string) error

	// GenerateKeyfile writes fresh random key material, readable only
	// by root.
	GenerateKeyfile(path string) error

	// AddKeyfile enrolls a keyfile into a container already unlockable
	// with key.
	AddKeyfile(devPath string, key LuksKey, keyfilePath string) error

	EnrollFido2(devPath, fido2Path string, key LuksKey) error
	ListFido2Devices() ([]layout.Fido2Device, error)
}
