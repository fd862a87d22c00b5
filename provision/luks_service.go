package provision

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/diskmason/diskmason/layout"
)

const keyfileSizeBytes = 512

type luksService struct {
	cmdRunner boshsys.CmdRunner
	fs        boshsys.FileSystem
	logger    boshlog.Logger
	logTag    string
}

func NewLuksService(cmdRunner boshsys.CmdRunner, fs boshsys.FileSystem, logger boshlog.Logger) LuksService {
	return luksService{
		cmdRunner: cmdRunner,
		fs:        fs,
		logger:    logger,
		logTag:    "luksService",
	}
}

func (s luksService) Format(devPath string, key LuksKey, iterTime time.Duration) error {
	args := []string{
		"-q", "--verbose",
		"--type", "luks2",
		"--iter-time", fmt.Sprintf("%d", iterTime.Milliseconds()),
	}

	var err error
	if key.KeyfilePath != "" {
		args = append(args, "--key-file", key.KeyfilePath, "luksFormat", devPath)
		_, _, _, err = s.cmdRunner.RunCommand("cryptsetup", args...)
	} else {
		args = append(args, "--key-file", "-", "luksFormat", devPath)
		_, _, _, err = s.cmdRunner.RunCommandWithInput(key.Passphrase, "cryptsetup", args...)
	}
	if err != nil {
		return bosherr.WrapErrorf(err, "Formatting LUKS container on `%s'", devPath)
	}

	s.logger.Info(s.logTag, "Formatted LUKS container on %s", devPath)
	return nil
}

func (s luksService) Open(devPath, mapperName string, key LuksKey) (string, error) {
	args := []string{"open", "--type", "luks"}

	var err error
	if key.KeyfilePath != "" {
		args = append(args, "--key-file", key.KeyfilePath, devPath, mapperName)
		_, _, _, err = s.cmdRunner.RunCommand("cryptsetup", args...)
	} else {
		args = append(args, "--key-file", "-", devPath, mapperName)
		_, _, _, err = s.cmdRunner.RunCommandWithInput(key.Passphrase, "cryptsetup", args...)
	}
	if err != nil {
		return "", bosherr.WrapErrorf(err, "Opening LUKS container `%s' as `%s'", devPath, mapperName)
	}

	return "/dev/mapper/" + mapperName, nil
}

func (s luksService) Close(mapperName string) error {
	_, _, _, err := s.cmdRunner.RunCommand("cryptsetup", "close", mapperName)
	if err != nil {
		return bosherr.WrapErrorf(err, "Closing LUKS mapper `%s'", mapperName)
	}
	return nil
}

func (s luksService) GenerateKeyfile(path string) error {
	keyMaterial := make([]byte, keyfileSizeBytes)
	if _, err := rand.Read(keyMaterial); err != nil {
		return bosherr.WrapError(err, "Generating key material")
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return bosherr.WrapErrorf(err, "Creating keyfile directory for `%s'", path)
	}
	if err := s.fs.WriteFile(path, keyMaterial); err != nil {
		return bosherr.WrapErrorf(err, "Writing keyfile `%s'", path)
	}
	if err := s.fs.Chmod(path, 0600); err != nil {
		return bosherr.WrapErrorf(err, "Restricting keyfile `%s'", path)
	}
	return nil
}

func (s luksService) AddKeyfile(devPath string, key LuksKey, keyfilePath string) error {
	var err error
	if key.KeyfilePath != "" {
		_, _, _, err = s.cmdRunner.RunCommand(
			"cryptsetup", "luksAddKey", "--key-file", key.KeyfilePath, devPath, keyfilePath,
		)
	} else {
		_, _, _, err = s.cmdRunner.RunCommandWithInput(
			key.Passphrase, "cryptsetup", "luksAddKey", "--key-file", "-", devPath, keyfilePath,
		)
	}
	if err != nil {
		return bosherr.WrapErrorf(err, "Enrolling keyfile into `%s'", devPath)
	}
	return nil
}

func (s luksService) EnrollFido2(devPath, fido2Path string, key LuksKey) error {
	args := []string{fmt.Sprintf("--fido2-device=%s", fido2Path), devPath}

	var err error
	if key.KeyfilePath != "" {
		args = append([]string{fmt.Sprintf("--unlock-key-file=%s", key.KeyfilePath)}, args...)
		_, _, _, err = s.cmdRunner.RunCommand("systemd-cryptenroll", args...)
	} else {
		_, _, _, err = s.cmdRunner.RunCommandWithInput(key.Passphrase, "systemd-cryptenroll", args...)
	}
	if err != nil {
		return bosherr.WrapErrorf(err, "Enrolling FIDO2 device `%s' into `%s'", fido2Path, devPath)
	}

	s.logger.Info(s.logTag, "Enrolled FIDO2 device %s into %s", fido2Path, devPath)
	return nil
}

func (s luksService) ListFido2Devices() ([]layout.Fido2Device, error) {
	stdout, _, _, err := s.cmdRunner.RunCommand("systemd-cryptenroll", "--fido2-device=list")
	if err != nil {
		return nil, bosherr.WrapError(err, "Listing FIDO2 devices")
	}

	var devices []layout.Fido2Device
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i, line := range lines {
		if i == 0 {
			// header: PATH MANUFACTURER PRODUCT
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			s.logger.Debug(s.logTag, "Skipping malformed FIDO2 listing line %q", line)
			continue
		}
		devices = append(devices, layout.Fido2Device{
			Path:         fields[0],
			Manufacturer: fields[1],
			Product:      strings.Join(fields[2:], " "),
		})
	}
	return devices, nil
}
