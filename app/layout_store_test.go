package app_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"

	. "github.com/diskmason/diskmason/app"
	"github.com/diskmason/diskmason/layout"
)

var _ = Describe("Layout store", func() {
	var fs *fakesys.FakeFileSystem

	BeforeEach(func() {
		fs = fakesys.NewFakeFileSystem()
	})

	Describe("SaveLayoutToPath", func() {
		It("writes the document as indented JSON", func() {
			doc := LayoutDocument{
				DiskConfig: layout.ConfigDocument{LayoutType: layout.LayoutDefault},
			}

			err := SaveLayoutToPath(fs, "/layout.json", doc)
			Expect(err).ToNot(HaveOccurred())

			content, err := fs.ReadFileString("/layout.json")
			Expect(err).ToNot(HaveOccurred())
			Expect(content).To(ContainSubstring(`"layout_type": "default_layout"`))
		})

		It("returns an error when the write fails", func() {
			fs.WriteFileError = errors.New("fake-write-error")

			err := SaveLayoutToPath(fs, "/layout.json", LayoutDocument{})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Writing file"))
			Expect(err.Error()).To(ContainSubstring("fake-write-error"))
		})
	})

	Describe("LoadLayoutFromPath", func() {
		It("round trips a saved document", func() {
			saved := LayoutDocument{
				DiskConfig: layout.ConfigDocument{
					LayoutType: layout.LayoutDefault,
					Devices:    []layout.DeviceDocument{{Path: "/dev/sda", Wipe: true}},
				},
			}
			Expect(SaveLayoutToPath(fs, "/layout.json", saved)).To(Succeed())

			loaded, err := LoadLayoutFromPath(fs, "/layout.json")
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})

		It("re-saves a loaded document byte for byte", func() {
			saved := LayoutDocument{
				DiskConfig: layout.ConfigDocument{
					LayoutType: layout.LayoutDefault,
					Devices:    []layout.DeviceDocument{{Path: "/dev/sda", Wipe: true}},
				},
			}
			Expect(SaveLayoutToPath(fs, "/first.json", saved)).To(Succeed())

			loaded, err := LoadLayoutFromPath(fs, "/first.json")
			Expect(err).ToNot(HaveOccurred())
			Expect(SaveLayoutToPath(fs, "/second.json", loaded)).To(Succeed())

			first, err := fs.ReadFileString("/first.json")
			Expect(err).ToNot(HaveOccurred())
			second, err := fs.ReadFileString("/second.json")
			Expect(err).ToNot(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("returns an error when the file is missing", func() {
			_, err := LoadLayoutFromPath(fs, "/no-such.json")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Reading file"))
		})

		It("returns an error for malformed JSON", func() {
			Expect(fs.WriteFileString("/layout.json", "{nope")).To(Succeed())

			_, err := LoadLayoutFromPath(fs, "/layout.json")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Loading file"))
		})
	})
})
