package app

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"

	"github.com/diskmason/diskmason/inventory"
	invfakes "github.com/diskmason/diskmason/inventory/fakes"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/provision"
	provfakes "github.com/diskmason/diskmason/provision/fakes"
	"github.com/diskmason/diskmason/suggest"
	"github.com/diskmason/diskmason/unit"
)

func init() {
	Describe("App Setup", func() {
		var (
			baseDir    string
			configPath string
			cliApp     *app
		)

		BeforeEach(func() {
			var err error

			baseDir, err = ioutil.TempDir("", "diskmason-test")
			Expect(err).ToNot(HaveOccurred())

			configPath = filepath.Join(baseDir, "diskmason.json")
			configJSON := `{
				"log_level": "none",
				"mount_root": "/target",
				"provisioning": { "partition_wait_attempts": 3 }
			}`

			err = ioutil.WriteFile(configPath, []byte(configJSON), 0640)
			Expect(err).ToNot(HaveOccurred())

			cliApp = New(boshlog.NewLogger(boshlog.LevelNone)).(*app)
		})

		AfterEach(func() {
			os.RemoveAll(baseDir)
		})

		It("loads the configuration file and merges the provisioning budgets", func() {
			err := cliApp.Setup([]string{"diskmason", "-C", configPath, "-list-devices"})
			Expect(err).ToNot(HaveOccurred())

			Expect(cliApp.config.MountRoot).To(Equal("/target"))
			Expect(cliApp.provisionCfg.MountRoot).To(Equal("/target"))
			Expect(cliApp.provisionCfg.PartitionWaitAttempts).To(Equal(3))

			defaults := provision.DefaultProvisioningConfig()
			Expect(cliApp.provisionCfg.KeyfileDir).To(Equal(defaults.KeyfileDir))
			Expect(cliApp.provisionCfg.MapperWaitAttempts).To(Equal(defaults.MapperWaitAttempts))
		})

		It("runs on the provisioning defaults without a configuration file", func() {
			err := cliApp.Setup([]string{"diskmason", "-list-devices"})
			Expect(err).ToNot(HaveOccurred())

			Expect(cliApp.provisionCfg).To(Equal(provision.DefaultProvisioningConfig()))
		})

		It("returns an error for a missing configuration file", func() {
			err := cliApp.Setup([]string{"diskmason", "-C", filepath.Join(baseDir, "nope.json")})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Loading config"))
		})

		It("returns an error for an unknown log level", func() {
			err := cliApp.Setup([]string{"diskmason", "-log-level", "chatty"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Unknown log level `chatty'"))
		})
	})

	Describe("App Run", func() {
		var (
			fs       *fakesys.FakeFileSystem
			prober   *invfakes.FakeProber
			executor *provfakes.FakeExecutor
			out      *bytes.Buffer
			cliApp   *app
		)

		newDisk := func(sizeBytes uint64) inventory.DeviceInfo {
			return inventory.DeviceInfo{
				Model:      "QEMU HARDDISK",
				Path:       "/dev/sda",
				Type:       inventory.DeviceTypeDisk,
				TotalSize:  unit.NewSize(sizeBytes, unit.B),
				SectorSize: unit.SectorSize{Value: 512},
				Table:      inventory.PartitionTableGPT,
			}
		}

		BeforeEach(func() {
			logger := boshlog.NewLogger(boshlog.LevelNone)
			fs = fakesys.NewFakeFileSystem()
			prober = invfakes.NewFakeProber()
			executor = provfakes.NewFakeExecutor()
			out = &bytes.Buffer{}

			cliApp = &app{
				logger:       logger,
				logTag:       "App",
				provisionCfg: provision.DefaultProvisioningConfig(),
				fs:           fs,
				inventoryMgr: inventory.NewManager(prober, logger),
				executor:     executor,
				in:           strings.NewReader(""),
				out:          out,
			}
		})

		It("refuses to run without an action", func() {
			err := cliApp.Run()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Nothing to do"))
		})

		Context("listing devices", func() {
			BeforeEach(func() {
				device := newDisk(20 << 30)
				device.Partitions = []inventory.PartitionInfo{
					{
						Path:        "/dev/sda1",
						Number:      1,
						FsType:      inventory.FilesystemExt4,
						Start:       unit.NewSize(2048, unit.Sectors),
						Length:      unit.NewSize(10<<30, unit.B),
						Mountpoints: []string{"/"},
					},
				}
				prober.AddProbeResult([]inventory.DeviceInfo{device})

				cliApp.opts = Options{ListDevices: true}
			})

			It("prints every device with its partitions", func() {
				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				Expect(out.String()).To(ContainSubstring("/dev/sda"))
				Expect(out.String()).To(ContainSubstring("20 GiB"))
				Expect(out.String()).To(ContainSubstring("gpt"))
				Expect(out.String()).To(ContainSubstring("QEMU HARDDISK"))
				Expect(out.String()).To(ContainSubstring("/dev/sda1"))
				Expect(out.String()).To(ContainSubstring("ext4"))
			})

			It("reports a probe failure", func() {
				prober.ProbeErr = errors.New("fake-lsblk-error")

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("fake-lsblk-error"))
			})
		})

		Context("suggesting a layout", func() {
			BeforeEach(func() {
				prober.AddProbeResult([]inventory.DeviceInfo{newDisk(100 << 30)})

				cliApp.opts = Options{
					Suggest:       "single",
					SuggestDevice: "/dev/sda",
					SuggestFs:     "ext4",
					LayoutPath:    "/layout.json",
				}
			})

			It("writes the suggested layout document", func() {
				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				content, err := fs.ReadFileString("/layout.json")
				Expect(err).ToNot(HaveOccurred())
				Expect(content).To(ContainSubstring(`"layout_type": "default_layout"`))
				Expect(content).To(ContainSubstring("/dev/sda"))

				Expect(out.String()).To(ContainSubstring("Wrote suggested single layout to /layout.json"))
			})

			It("wraps the data partitions into a volume group for lvm", func() {
				cliApp.opts.Suggest = "lvm"

				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				content, err := fs.ReadFileString("/layout.json")
				Expect(err).ToNot(HaveOccurred())
				Expect(content).To(ContainSubstring(`"vol_groups"`))
				Expect(content).To(ContainSubstring(`"vgmain"`))
			})

			It("builds a spanning layout from every writable disk for multi", func() {
				second := newDisk(100 << 30)
				second.Path = "/dev/sdb"
				readOnly := newDisk(100 << 30)
				readOnly.Path = "/dev/sr0"
				readOnly.ReadOnly = true
				prober.ProbeResults = nil
				prober.AddProbeResult([]inventory.DeviceInfo{newDisk(100 << 30), second, readOnly})

				cliApp.opts.Suggest = "multi"

				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				content, err := fs.ReadFileString("/layout.json")
				Expect(err).ToNot(HaveOccurred())
				Expect(content).To(ContainSubstring("/dev/sda"))
				Expect(content).To(ContainSubstring("/dev/sdb"))
				Expect(content).ToNot(ContainSubstring("/dev/sr0"))
			})

			It("requires a layout document path", func() {
				cliApp.opts.LayoutPath = ""

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("layout document path"))
			})

			It("rejects unknown suggestion kinds", func() {
				cliApp.opts.Suggest = "raid"

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Unknown suggestion kind `raid'"))
			})

			It("rejects filesystems the formatter cannot produce", func() {
				cliApp.opts.SuggestFs = "zfs"

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Cannot suggest a layout with root filesystem `zfs'"))
			})

			It("fails when the device is not in the inventory", func() {
				cliApp.opts.SuggestDevice = "/dev/sdz"

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Device `/dev/sdz' is not present"))
			})
		})

		Context("applying a layout", func() {
			BeforeEach(func() {
				device := newDisk(100 << 30)
				prober.AddProbeResult([]inventory.DeviceInfo{device})

				mod, err := suggest.SingleDisk(device, suggest.Options{FsType: inventory.FilesystemExt4})
				Expect(err).ToNot(HaveOccurred())

				cfg, err := layout.NewDiskLayoutConfiguration(layout.LayoutDefault, []*layout.DeviceModification{mod}, nil, "")
				Expect(err).ToNot(HaveOccurred())

				doc := LayoutDocument{DiskConfig: layout.BuildConfigDocument(cfg)}
				Expect(SaveLayoutToPath(fs, "/layout.json", doc)).To(Succeed())

				executor.ApplyResult = &provision.Result{
					MountPlan: []provision.MountPlanEntry{
						{Source: "/dev/sda2", Mountpoint: "/", Target: "/mnt", Fstype: "ext4", FsUuid: "aaaa-bbbb"},
						{Source: "/dev/sda1", Mountpoint: "/boot", Target: "/mnt/boot", Fstype: "vfat", FsUuid: "1111-2222"},
					},
					RootPartUuid: "part-root",
					RootUuid:     "aaaa-bbbb",
					DevicePaths:  map[string]string{},
				}

				cliApp.opts = Options{Apply: true, LayoutPath: "/layout.json"}
				cliApp.in = strings.NewReader("y\n")
			})

			It("parses the document against the probed inventory and applies it", func() {
				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				Expect(executor.ApplyCallCount).To(Equal(1))
				Expect(executor.ApplyLayouts[0].Type).To(Equal(layout.LayoutDefault))
				Expect(executor.ApplyLayouts[0].Modifications[0].Device.Path).To(Equal("/dev/sda"))
				Expect(executor.ApplyEncryption[0].Enabled()).To(BeFalse())
			})

			It("warns what the run will destroy before touching anything", func() {
				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				Expect(out.String()).To(ContainSubstring("DESTROY ALL DATA on /dev/sda"))
				Expect(out.String()).To(ContainSubstring("Continue? [y/n]"))
			})

			It("aborts when the operator says no", func() {
				cliApp.in = strings.NewReader("n\n")

				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				Expect(executor.ApplyCallCount).To(Equal(0))
				Expect(out.String()).To(ContainSubstring("Aborted, no device was touched."))
			})

			It("skips the prompt when destruction was pre-approved", func() {
				cliApp.opts.AssumeYes = true
				cliApp.in = strings.NewReader("")

				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				Expect(executor.ApplyCallCount).To(Equal(1))
				Expect(out.String()).ToNot(ContainSubstring("Continue?"))
			})

			It("writes fstab under the mount root", func() {
				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				fstab, err := fs.ReadFileString("/mnt/etc/fstab")
				Expect(err).ToNot(HaveOccurred())
				Expect(fstab).To(ContainSubstring("UUID=aaaa-bbbb / ext4 defaults 0 1"))
				Expect(fstab).To(ContainSubstring("UUID=1111-2222 /boot vfat defaults 0 2"))
			})

			It("prints the resulting mount plan", func() {
				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				Expect(out.String()).To(ContainSubstring("/dev/sda2"))
				Expect(out.String()).To(ContainSubstring("root PARTUUID=part-root UUID=aaaa-bbbb"))
			})

			It("reports an executor failure", func() {
				executor.ApplyErr = errors.New("fake-apply-error")

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Applying layout"))
				Expect(err.Error()).To(ContainSubstring("fake-apply-error"))
			})

			It("stages the operations without running them for a dry run", func() {
				cliApp.opts = Options{DryRun: true, LayoutPath: "/layout.json"}

				err := cliApp.Run()
				Expect(err).ToNot(HaveOccurred())

				Expect(executor.ApplyCallCount).To(Equal(0))
				Expect(out.String()).To(ContainSubstring("wipe /dev/sda"))
			})

			It("requires a layout document path", func() {
				cliApp.opts.LayoutPath = ""

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("layout document path"))
			})

			It("fails when the layout document is missing", func() {
				cliApp.opts.LayoutPath = "/no-such-layout.json"

				err := cliApp.Run()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Loading layout document"))
			})
		})
	})
}
