package layout_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

var _ = Describe("PartitionModification", func() {
	Describe("construction", func() {
		It("rejects an existing partition without a device path", func() {
			_, err := layout.NewPartitionModification(
				layout.StatusExist,
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(1, unit.GiB),
				"",
			)
			Expect(err).To(HaveOccurred())

			var invalidErr layout.InvalidStateError
			Expect(errors.As(err, &invalidErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("requires a device path"))
		})

		It("rejects modify and delete without a device path", func() {
			for _, status := range []layout.ModificationStatus{layout.StatusModify, layout.StatusDelete} {
				_, err := layout.NewPartitionModification(
					status,
					layout.PartitionTypePrimary,
					unit.NewSize(1, unit.MiB),
					unit.NewSize(1, unit.GiB),
					"",
				)
				Expect(err).To(HaveOccurred(), string(status))
			}
		})

		It("allows create without a device path and assigns a fresh id", func() {
			first, err := layout.NewCreatePartition(
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(1, unit.GiB),
				inventory.FilesystemFat32,
				"/boot",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Id).NotTo(BeEmpty())
			Expect(first.Status).To(Equal(layout.StatusCreate))
			Expect(first.Formattable).To(BeTrue())

			second, err := layout.NewCreatePartition(
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(1, unit.GiB),
				inventory.FilesystemFat32,
				"/boot",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Id).NotTo(Equal(first.Id))
		})

		It("lifts a probed partition with its identity intact", func() {
			info := inventory.PartitionInfo{
				Path:     "/dev/sda2",
				Start:    unit.NewSize(2099200, unit.Sectors),
				Length:   unit.NewSize(33285996544, unit.B),
				FsType:   inventory.FilesystemBtrfs,
				PartUUID: "d0e7c1f2-aaaa-bbbb-cccc-000000000002",
				Uuid:     "11111111-2222-3333-4444-555555555555",
			}

			part, err := layout.NewExistingPartition(info)
			Expect(err).NotTo(HaveOccurred())
			Expect(part.Status).To(Equal(layout.StatusExist))
			Expect(part.DevPath).To(Equal("/dev/sda2"))
			Expect(part.PartUUID).To(Equal(info.PartUUID))
			Expect(part.Formattable).To(BeFalse())
		})
	})

	Describe("ChangeFsType", func() {
		It("marks an existing partition formattable and moves it to modify", func() {
			part, err := layout.NewPartitionModification(
				layout.StatusExist,
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(1, unit.GiB),
				"/dev/sda1",
			)
			Expect(err).NotTo(HaveOccurred())

			part.ChangeFsType(inventory.FilesystemExt4)
			Expect(part.Status).To(Equal(layout.StatusModify))
			Expect(part.FsType).To(Equal(inventory.FilesystemExt4))
			Expect(part.Formattable).To(BeTrue())
		})
	})

	Describe("predicates", func() {
		It("treats a FAT32 boot partition as EFI unless it is XBOOTLDR", func() {
			part, err := layout.NewCreatePartition(
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(1, unit.GiB),
				inventory.FilesystemFat32,
				"/boot",
			)
			Expect(err).NotTo(HaveOccurred())

			part.SetFlag(inventory.FlagBoot)
			part.SetFlag(inventory.FlagESP)
			Expect(part.IsBoot()).To(BeTrue())
			Expect(part.IsEFI()).To(BeTrue())

			part.SetFlag(inventory.FlagXBootLdr)
			Expect(part.IsBoot()).To(BeTrue())
			Expect(part.IsEFI()).To(BeFalse())
		})

		It("recognizes root through the mountpoint or a btrfs subvolume", func() {
			plain, err := layout.NewCreatePartition(
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(20, unit.GiB),
				inventory.FilesystemExt4,
				"/",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(plain.IsRoot()).To(BeTrue())

			subvoled, err := layout.NewCreatePartition(
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(20, unit.GiB),
				inventory.FilesystemBtrfs,
				"",
			)
			Expect(err).NotTo(HaveOccurred())
			subvoled.BtrfsSubvols = []layout.SubvolumeModification{
				{Name: "@", Mountpoint: "/"},
				{Name: "@home", Mountpoint: "/home"},
			}
			Expect(subvoled.IsRoot()).To(BeTrue())
			Expect(subvoled.IsHome()).To(BeTrue())
		})

		It("recognizes swap by filesystem or flag", func() {
			part, err := layout.NewCreatePartition(
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(4, unit.GiB),
				inventory.FilesystemSwap,
				"",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(part.IsSwap()).To(BeTrue())
		})
	})

	Describe("End", func() {
		It("adds start and length in bytes", func() {
			part, err := layout.NewCreatePartition(
				layout.PartitionTypePrimary,
				unit.NewSize(1, unit.MiB),
				unit.NewSize(1, unit.GiB),
				inventory.FilesystemFat32,
				"/boot",
			)
			Expect(err).NotTo(HaveOccurred())

			end, err := part.End(unit.Context{})
			Expect(err).NotTo(HaveOccurred())
			endBytes, err := end.Bytes()
			Expect(err).NotTo(HaveOccurred())
			Expect(endBytes).To(Equal(uint64(1<<20 + 1<<30)))
		})
	})
})

var _ = Describe("MountOptions", func() {
	It("keeps insertion order and replaces by option key", func() {
		opts := layout.MountOptions{}
		opts = opts.Set("noatime")
		opts = opts.Set("compress=lzo")
		opts = opts.Set("ssd")
		opts = opts.Set("compress=zstd:3")

		Expect(opts.Join()).To(Equal("noatime,compress=zstd:3,ssd"))
		Expect(opts.Has("compress")).To(BeTrue())
		Expect(opts.Has("discard")).To(BeFalse())
	})
})
