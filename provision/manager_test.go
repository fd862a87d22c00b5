package provision_test

import (
	"code.cloudfoundry.org/clock"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/diskmason/diskmason/inventory"
	invfakes "github.com/diskmason/diskmason/inventory/fakes"
	"github.com/diskmason/diskmason/provision"
)

var _ = Describe("NewLinuxProvisionManager", func() {
	var (
		runner      *fakesys.FakeCmdRunner
		fs          *fakesys.FakeFileSystem
		timeService clock.Clock
		logger      boshlog.Logger
	)

	BeforeEach(func() {
		runner = fakesys.NewFakeCmdRunner()
		fs = fakesys.NewFakeFileSystem()
		timeService = clock.NewClock()
		logger = boshlog.NewLogger(boshlog.LevelNone)
	})

	It("wires the mounter and formatter over one mounts searcher", func() {
		expectedSearcher := provision.NewProcMountsSearcher(fs)
		expectedMounter := provision.NewLinuxMounter(runner, expectedSearcher)

		manager := provision.NewLinuxProvisionManager(logger, runner, fs, timeService)
		Expect(manager.GetMountsSearcher()).To(Equal(expectedSearcher))
		Expect(manager.GetMounter()).To(Equal(expectedMounter))
		Expect(manager.GetFormatter()).To(Equal(provision.NewLinuxFormatter(runner, fs, expectedMounter, logger)))
	})

	It("builds the command services over the shared runner", func() {
		manager := provision.NewLinuxProvisionManager(logger, runner, fs, timeService)
		Expect(manager.GetPartitioner()).To(Equal(provision.NewPartedPartitioner(runner, timeService, logger)))
		Expect(manager.GetLvmService()).To(Equal(provision.NewLvmService(runner, logger)))
		Expect(manager.GetLuksService()).To(Equal(provision.NewLuksService(runner, fs, logger)))
		Expect(manager.GetSettler()).To(Equal(provision.NewUdevSettler(runner, timeService, logger)))
		Expect(manager.GetUsageReporter()).To(Equal(provision.NewSigarUsageReporter()))
	})

	It("hands the executor every collaborator it was built with", func() {
		manager := provision.NewLinuxProvisionManager(logger, runner, fs, timeService)
		inventoryMgr := inventory.NewManager(invfakes.NewFakeProber(), logger)

		executor := manager.GetExecutor(inventoryMgr, provision.DefaultProvisioningConfig())
		Expect(executor).ToNot(BeNil())
	})
})
