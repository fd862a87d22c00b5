package provision_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"

	"github.com/diskmason/diskmason/provision"
)

var _ = Describe("LvmService", func() {
	var (
		fakeRunner *fakesys.FakeCmdRunner
		service    provision.LvmService
	)

	BeforeEach(func() {
		logger := boshlog.NewLogger(boshlog.LevelNone)
		fakeRunner = fakesys.NewFakeCmdRunner()
		service = provision.NewLvmService(fakeRunner, logger)
	})

	Describe("CreatePhysicalVolume", func() {
		It("initializes the device without prompting", func() {
			err := service.CreatePhysicalVolume("/dev/sda2")
			Expect(err).ToNot(HaveOccurred())

			Expect(fakeRunner.RunCommands).To(Equal([][]string{
				{"pvcreate", "--yes", "/dev/sda2"},
			}))
		})

		It("returns an error when pvcreate fails", func() {
			fakeRunner.AddCmdResult(
				"pvcreate --yes /dev/sda2",
				fakesys.FakeCmdResult{ExitStatus: 5, Error: errors.New("pvcreate-failure")},
			)

			err := service.CreatePhysicalVolume("/dev/sda2")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Creating physical volume on `/dev/sda2': pvcreate-failure"))
		})
	})

	Describe("CreateVolumeGroup", func() {
		It("builds the group over every physical volume", func() {
			err := service.CreateVolumeGroup("vgmain", []string{"/dev/sda2", "/dev/sdb1"})
			Expect(err).ToNot(HaveOccurred())

			Expect(fakeRunner.RunCommands).To(Equal([][]string{
				{"vgcreate", "--yes", "vgmain", "/dev/sda2", "/dev/sdb1"},
			}))
		})

		It("returns an error when vgcreate fails", func() {
			fakeRunner.AddCmdResult(
				"vgcreate --yes vgmain /dev/sda2",
				fakesys.FakeCmdResult{ExitStatus: 5, Error: errors.New("vgcreate-failure")},
			)

			err := service.CreateVolumeGroup("vgmain", []string{"/dev/sda2"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Creating volume group `vgmain': vgcreate-failure"))
		})
	})

	Describe("CreateLogicalVolume", func() {
		It("creates a fixed-size volume in bytes", func() {
			path, err := service.CreateLogicalVolume("vgmain", "root", 21474836480, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(path).To(Equal("/dev/vgmain/root"))

			Expect(fakeRunner.RunCommands).To(Equal([][]string{
				{"lvcreate", "--yes", "--wipesignatures", "y", "--name", "root", "--size", "21474836480B", "vgmain"},
			}))
		})

		It("gives a trailing volume the remaining extents", func() {
			path, err := service.CreateLogicalVolume("vgmain", "home", 0, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(path).To(Equal("/dev/vgmain/home"))

			Expect(fakeRunner.RunCommands).To(Equal([][]string{
				{"lvcreate", "--yes", "--wipesignatures", "y", "--name", "home", "--extents", "100%FREE", "vgmain"},
			}))
		})

		It("returns an error when lvcreate fails", func() {
			fakeRunner.AddCmdResult(
				"lvcreate --yes --wipesignatures y --name root --size 21474836480B vgmain",
				fakesys.FakeCmdResult{ExitStatus: 5, Error: errors.New("lvcreate-failure")},
			)

			_, err := service.CreateLogicalVolume("vgmain", "root", 21474836480, false)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Creating logical volume `root' in group `vgmain': lvcreate-failure"))
		})
	})

	Describe("ActivateVolumeGroup", func() {
		It("activates every volume in the group", func() {
			err := service.ActivateVolumeGroup("vgmain")
			Expect(err).ToNot(HaveOccurred())

			Expect(fakeRunner.RunCommands).To(Equal([][]string{
				{"vgchange", "-a", "y", "vgmain"},
			}))
		})

		It("returns an error when vgchange fails", func() {
			fakeRunner.AddCmdResult(
				"vgchange -a y vgmain",
				fakesys.FakeCmdResult{ExitStatus: 5, Error: errors.New("vgchange-failure")},
			)

			err := service.ActivateVolumeGroup("vgmain")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Activating volume group `vgmain': vgchange-failure"))
		})
	})

	Describe("ListLogicalVolumes", func() {
		It("decodes the lvs JSON report, sizes included", func() {
			fakeRunner.AddCmdResult(
				"lvs --reportformat json --units b --nosuffix -o lv_name,vg_name,lv_path,lv_size vgmain",
				fakesys.FakeCmdResult{Stdout: `{
					"report": [
						{
							"lv": [
								{"lv_name":"root", "vg_name":"vgmain", "lv_path":"/dev/vgmain/root", "lv_size":"21474836480"},
								{"lv_name":"home", "vg_name":"vgmain", "lv_path":"/dev/vgmain/home", "lv_size":"85899345920"}
							]
						}
					]
				}`},
			)

			volumes, err := service.ListLogicalVolumes("vgmain")
			Expect(err).ToNot(HaveOccurred())

			Expect(volumes).To(Equal([]provision.LogicalVolumeInfo{
				{Name: "root", VgName: "vgmain", Path: "/dev/vgmain/root", SizeBytes: 21474836480},
				{Name: "home", VgName: "vgmain", Path: "/dev/vgmain/home", SizeBytes: 85899345920},
			}))
		})

		It("keeps rows whose size does not parse, with a zero size", func() {
			fakeRunner.AddCmdResult(
				"lvs --reportformat json --units b --nosuffix -o lv_name,vg_name,lv_path,lv_size vgmain",
				fakesys.FakeCmdResult{Stdout: `{
					"report": [
						{"lv": [{"lv_name":"swap", "vg_name":"vgmain", "lv_path":"/dev/vgmain/swap", "lv_size":"<4.00g"}]}
					]
				}`},
			)

			volumes, err := service.ListLogicalVolumes("vgmain")
			Expect(err).ToNot(HaveOccurred())

			Expect(volumes).To(HaveLen(1))
			Expect(volumes[0].Name).To(Equal("swap"))
			Expect(volumes[0].SizeBytes).To(Equal(uint64(0)))
		})

		It("returns an empty list for a group with no volumes", func() {
			fakeRunner.AddCmdResult(
				"lvs --reportformat json --units b --nosuffix -o lv_name,vg_name,lv_path,lv_size vgempty",
				fakesys.FakeCmdResult{Stdout: `{"report": [{"lv": []}]}`},
			)

			volumes, err := service.ListLogicalVolumes("vgempty")
			Expect(err).ToNot(HaveOccurred())
			Expect(volumes).To(BeEmpty())
		})

		It("returns an error when lvs fails", func() {
			fakeRunner.AddCmdResult(
				"lvs --reportformat json --units b --nosuffix -o lv_name,vg_name,lv_path,lv_size vgmain",
				fakesys.FakeCmdResult{ExitStatus: 5, Error: errors.New("lvs-failure")},
			)

			_, err := service.ListLogicalVolumes("vgmain")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Listing logical volumes of `vgmain': lvs-failure"))
		})

		It("returns an error for a report that is not JSON", func() {
			fakeRunner.AddCmdResult(
				"lvs --reportformat json --units b --nosuffix -o lv_name,vg_name,lv_path,lv_size vgmain",
				fakesys.FakeCmdResult{Stdout: "not-json"},
			)

			_, err := service.ListLogicalVolumes("vgmain")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Parsing lvs report"))
		})
	})
})
