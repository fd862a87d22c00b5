package app_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/diskmason/diskmason/app"
)

var _ = Describe("ParseOptions", func() {
	It("parses config path", func() {
		opts, err := ParseOptions([]string{"diskmason", "-C", "/fake-path"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.ConfigPath).To(Equal("/fake-path"))

		opts, err = ParseOptions([]string{"diskmason"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.ConfigPath).To(Equal(""))
	})

	It("parses layout document path", func() {
		opts, err := ParseOptions([]string{"diskmason", "-l", "/fake-layout.json"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.LayoutPath).To(Equal("/fake-layout.json"))

		opts, err = ParseOptions([]string{"diskmason"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.LayoutPath).To(Equal(""))
	})

	It("parses the action flags", func() {
		opts, err := ParseOptions([]string{"diskmason", "-list-devices"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.ListDevices).To(BeTrue())

		opts, err = ParseOptions([]string{"diskmason", "-apply", "-yes-wipe-my-disks"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.Apply).To(BeTrue())
		Expect(opts.AssumeYes).To(BeTrue())

		opts, err = ParseOptions([]string{"diskmason", "-dry-run"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.DryRun).To(BeTrue())
		Expect(opts.Apply).To(BeFalse())
	})

	It("parses the suggestion flags with an ext4 default", func() {
		opts, err := ParseOptions([]string{
			"diskmason", "-suggest", "lvm", "-device", "/dev/sda", "-separate-home", "-subvolumes",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.Suggest).To(Equal("lvm"))
		Expect(opts.SuggestDevice).To(Equal("/dev/sda"))
		Expect(opts.SuggestFs).To(Equal("ext4"))
		Expect(opts.SeparateHome).To(BeTrue())
		Expect(opts.Subvolumes).To(BeTrue())

		opts, err = ParseOptions([]string{"diskmason", "-suggest", "single", "-fs", "btrfs"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.SuggestFs).To(Equal("btrfs"))
	})

	It("parses the log level", func() {
		opts, err := ParseOptions([]string{"diskmason", "-log-level", "debug"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.LogLevel).To(Equal("debug"))
	})

	It("errors on an unknown flag", func() {
		_, err := ParseOptions([]string{"diskmason", "-no-such-flag"})
		Expect(err).To(HaveOccurred())
	})
})
