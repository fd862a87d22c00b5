package layout_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

var _ = Describe("LvmConfiguration", func() {
	var (
		pvA *layout.PartitionModification
		pvB *layout.PartitionModification
	)

	BeforeEach(func() {
		var err error
		pvA, err = layout.NewCreatePartition(
			layout.PartitionTypePrimary,
			unit.NewSize(1, unit.MiB),
			unit.NewSize(100, unit.GiB),
			inventory.FilesystemNone,
			"",
		)
		Expect(err).NotTo(HaveOccurred())

		pvB, err = layout.NewCreatePartition(
			layout.PartitionTypePrimary,
			unit.NewSize(100, unit.GiB),
			unit.NewSize(100, unit.GiB),
			inventory.FilesystemNone,
			"",
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts volume groups with disjoint physical volumes", func() {
		rootVol, err := layout.NewLvmVolume("root", inventory.FilesystemExt4, unit.NewSize(20, unit.GiB), "/")
		Expect(err).NotTo(HaveOccurred())

		groupA, err := layout.NewLvmVolumeGroup("vg-system", []*layout.PartitionModification{pvA}, []*layout.LvmVolume{rootVol})
		Expect(err).NotTo(HaveOccurred())
		groupB, err := layout.NewLvmVolumeGroup("vg-data", []*layout.PartitionModification{pvB}, nil)
		Expect(err).NotTo(HaveOccurred())

		config, err := layout.NewLvmConfiguration(groupA, groupB)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.AllPvs()).To(HaveLen(2))

		found, ok := config.VolumeFromMountpoint("/")
		Expect(ok).To(BeTrue())
		Expect(found.Name).To(Equal("root"))

		_, ok = config.VolumeFromMountpoint("/home")
		Expect(ok).To(BeFalse())
	})

	It("rejects a physical volume shared between volume groups", func() {
		groupA, err := layout.NewLvmVolumeGroup("vg-system", []*layout.PartitionModification{pvA}, nil)
		Expect(err).NotTo(HaveOccurred())
		groupB, err := layout.NewLvmVolumeGroup("vg-data", []*layout.PartitionModification{pvA, pvB}, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = layout.NewLvmConfiguration(groupA, groupB)
		Expect(err).To(HaveOccurred())

		var invalidErr layout.InvalidStateError
		Expect(errors.As(err, &invalidErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("vg-system"))
		Expect(err.Error()).To(ContainSubstring("vg-data"))
	})

	It("rejects a volume group without physical volumes", func() {
		_, err := layout.NewLvmVolumeGroup("vg-empty", nil, nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("at least one physical volume"))
	})

	It("rejects an unnamed logical volume", func() {
		_, err := layout.NewLvmVolume("", inventory.FilesystemExt4, unit.NewSize(20, unit.GiB), "/")
		Expect(err).To(HaveOccurred())
	})

	It("detects root through a subvolume on the volume", func() {
		vol, err := layout.NewLvmVolume("root", inventory.FilesystemBtrfs, unit.NewSize(20, unit.GiB), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(vol.IsRoot()).To(BeFalse())

		vol.BtrfsSubvols = []layout.SubvolumeModification{{Name: "@", Mountpoint: "/"}}
		Expect(vol.IsRoot()).To(BeTrue())
	})
})
