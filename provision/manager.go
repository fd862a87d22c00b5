package provision

import (
	"code.cloudfoundry.org/clock"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/diskmason/diskmason/inventory"
)

// Manager assembles the provisioning services over one command runner
// and filesystem, so callers wire a single constructor instead of nine.
type Manager interface {
	GetPartitioner() Partitioner
	GetFormatter() Formatter
	GetMounter() Mounter
	GetMountsSearcher() MountsSearcher
	GetLvmService() LvmService
	GetLuksService() LuksService
	GetSettler() Settler
	GetUsageReporter() UsageReporter
	GetExecutor(inventoryMgr inventory.Manager, config ProvisioningConfig) Executor
}

type linuxProvisionManager struct {
	partitioner    Partitioner
	formatter      Formatter
	mounter        Mounter
	mountsSearcher MountsSearcher
	lvmService     LvmService
	luksService    LuksService
	settler        Settler
	usageReporter  UsageReporter

	fs     boshsys.FileSystem
	logger boshlog.Logger
}

func NewLinuxProvisionManager(
	logger boshlog.Logger,
	runner boshsys.CmdRunner,
	fs boshsys.FileSystem,
	timeService clock.Clock,
) Manager {
	// /proc/mounts is the most reliable source of mount information;
	// everything downstream (mounter, formatter scratch mounts, mount
	// verification) reads through the same searcher.
	mountsSearcher := NewProcMountsSearcher(fs)
	mounter := NewLinuxMounter(runner, mountsSearcher)

	return linuxProvisionManager{
		partitioner:    NewPartedPartitioner(runner, timeService, logger),
		formatter:      NewLinuxFormatter(runner, fs, mounter, logger),
		mounter:        mounter,
		mountsSearcher: mountsSearcher,
		lvmService:     NewLvmService(runner, logger),
		luksService:    NewLuksService(runner, fs, logger),
		settler:        NewUdevSettler(runner, timeService, logger),
		usageReporter:  NewSigarUsageReporter(),
		fs:             fs,
		logger:         logger,
	}
}

func (m linuxProvisionManager) GetPartitioner() Partitioner       { return m.partitioner }
func (m linuxProvisionManager) GetFormatter() Formatter           { return m.formatter }
func (m linuxProvisionManager) GetMounter() Mounter               { return m.mounter }
func (m linuxProvisionManager) GetMountsSearcher() MountsSearcher { return m.mountsSearcher }
func (m linuxProvisionManager) GetLvmService() LvmService         { return m.lvmService }
func (m linuxProvisionManager) GetLuksService() LuksService       { return m.luksService }
func (m linuxProvisionManager) GetSettler() Settler               { return m.settler }
func (m linuxProvisionManager) GetUsageReporter() UsageReporter   { return m.usageReporter }

func (m linuxProvisionManager) GetExecutor(inventoryMgr inventory.Manager, config ProvisioningConfig) Executor {
	return NewExecutor(
		inventoryMgr,
		m.partitioner,
		m.lvmService,
		m.luksService,
		m.formatter,
		m.mounter,
		m.mountsSearcher,
		m.settler,
		m.usageReporter,
		m.fs,
		config,
		m.logger,
	)
}
