package provision

import (
	"errors"
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

const (
	deviceReadMaxAttempts = 5
	deviceReadDelay       = 500 * time.Millisecond
)

type udevSettler struct {
	cmdRunner   boshsys.CmdRunner
	timeService clock.Clock
	logger      boshlog.Logger
	logTag      string
}

func NewUdevSettler(cmdRunner boshsys.CmdRunner, timeService clock.Clock, logger boshlog.Logger) Settler {
	return udevSettler{
		cmdRunner:   cmdRunner,
		timeService: timeService,
		logger:      logger,
		logTag:      "udevSettler",
	}
}

func (u udevSettler) Trigger() error {
	_, _, _, err := u.cmdRunner.RunCommand("udevadm", "trigger")
	if err != nil {
		return bosherr.WrapError(err, "Triggering udev")
	}
	return nil
}

func (u udevSettler) Settle() error {
	_, _, _, err := u.cmdRunner.RunCommand("udevadm", "settle")
	if err != nil {
		return bosherr.WrapError(err, "Settling udev")
	}
	return nil
}

func (u udevSettler) EnsureDeviceReadable(path string) error {
	for attempt := 0; attempt < deviceReadMaxAttempts; attempt++ {
		u.logger.Debug(u.logTag, "Reading first byte of %s, attempt %d", path, attempt)
		err := u.readByte(path)
		if err == nil {
			return nil
		}
		u.timeService.Sleep(deviceReadDelay)
	}

	err := u.readByte(path)
	if err != nil {
		return bosherr.WrapErrorf(err, "Reading device node `%s'", path)
	}
	return nil
}

func (u udevSettler) readByte(path string) error {
	device, err := os.Open(path)
	if err != nil {
		return err
	}
	defer device.Close()

	buf := make([]byte, 1)
	read, err := device.Read(buf)
	if err != nil {
		return err
	}
	if read != 1 {
		return errors.New("device readable but zero length")
	}
	return nil
}
