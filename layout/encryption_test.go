package layout_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

var _ = Describe("DiskEncryption", func() {
	var (
		rootPart *layout.PartitionModification
		homeVol  *layout.LvmVolume
	)

	BeforeEach(func() {
		var err error
		rootPart, err = layout.NewCreatePartition(
			layout.PartitionTypePrimary,
			unit.NewSize(1, unit.GiB),
			unit.NewSize(40, unit.GiB),
			inventory.FilesystemExt4,
			"/",
		)
		Expect(err).NotTo(HaveOccurred())

		homeVol, err = layout.NewLvmVolume("home", inventory.FilesystemExt4, unit.NewSize(100, unit.GiB), "/home")
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts a LUKS config over partitions", func() {
		enc, err := layout.NewDiskEncryption(
			layout.Luks,
			"hunter2",
			[]*layout.PartitionModification{rootPart},
			nil,
			nil,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(enc.Enabled()).To(BeTrue())
		Expect(enc.IsPartitionEncrypted(rootPart.Id)).To(BeTrue())
		Expect(enc.IterTime).To(Equal(layout.DefaultIterTime))
	})

	It("rejects mixing partition and volume targets", func() {
		_, err := layout.NewDiskEncryption(
			layout.Luks,
			"hunter2",
			[]*layout.PartitionModification{rootPart},
			[]*layout.LvmVolume{homeVol},
			nil,
		)
		Expect(err).To(HaveOccurred())

		var invalidErr layout.InvalidStateError
		Expect(errors.As(err, &invalidErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("both partitions and LVM volumes"))
	})

	It("rejects an enabled config with no targets", func() {
		_, err := layout.NewDiskEncryption(layout.Luks, "hunter2", nil, nil, nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no targets"))
	})

	It("rejects an enabled config without password or HSM", func() {
		_, err := layout.NewDiskEncryption(
			layout.Luks,
			"",
			[]*layout.PartitionModification{rootPart},
			nil,
			nil,
		)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("password or an HSM"))
	})

	It("accepts an HSM-only config without password", func() {
		hsm := &layout.Fido2Device{Path: "/dev/hidraw0", Manufacturer: "Yubico", Product: "YubiKey"}
		enc, err := layout.NewDiskEncryption(
			layout.Luks,
			"",
			[]*layout.PartitionModification{rootPart},
			nil,
			hsm,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(enc.HSMDevice).To(Equal(hsm))
	})

	It("requires partition targets for partition level types", func() {
		_, err := layout.NewDiskEncryption(
			layout.LvmOnLuks,
			"hunter2",
			nil,
			[]*layout.LvmVolume{homeVol},
			nil,
		)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("partition level encryption"))
	})

	It("requires volume targets for luks_on_lvm", func() {
		_, err := layout.NewDiskEncryption(
			layout.LuksOnLvm,
			"hunter2",
			[]*layout.PartitionModification{rootPart},
			nil,
			nil,
		)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("LVM volume encryption"))
	})

	It("rejects targets when encryption is disabled", func() {
		_, err := layout.NewDiskEncryption(
			layout.NoEncryption,
			"",
			[]*layout.PartitionModification{rootPart},
			nil,
			nil,
		)
		Expect(err).To(HaveOccurred())
	})

	Describe("ShouldGenerateKeyfile", func() {
		It("generates keyfiles for everything except root", func() {
			enc, err := layout.NewDiskEncryption(
				layout.Luks,
				"hunter2",
				[]*layout.PartitionModification{rootPart},
				nil,
				nil,
			)
			Expect(err).NotTo(HaveOccurred())

			Expect(enc.ShouldGenerateKeyfile(true)).To(BeFalse())
			Expect(enc.ShouldGenerateKeyfile(false)).To(BeTrue())
		})

		It("never generates keyfiles when disabled", func() {
			enc, err := layout.NewDiskEncryption(layout.NoEncryption, "", nil, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(enc.ShouldGenerateKeyfile(false)).To(BeFalse())
		})
	})
})
