package app

import (
	"flag"
	"fmt"
)

// Options is the parsed command line. One action flag (list-devices,
// suggest, apply, dry-run) selects what Run does.
type Options struct {
	ConfigPath string
	LayoutPath string
	LogLevel   string

	ListDevices bool

	Suggest       string
	SuggestDevice string
	SuggestFs     string
	SeparateHome  bool
	Subvolumes    bool

	Apply     bool
	DryRun    bool
	AssumeYes bool
}

func ParseOptions(args []string) (Options, error) {
	var opts Options

	flagSet := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagSet.StringVar(&opts.ConfigPath, "C", "", "Set configuration file path")
	flagSet.StringVar(&opts.LayoutPath, "l", "", "Set layout document path")
	flagSet.StringVar(&opts.LogLevel, "log-level", "", "Set log level (none, error, warn, info, debug)")
	flagSet.BoolVar(&opts.ListDevices, "list-devices", false, "Print the probed block devices and exit")
	flagSet.StringVar(&opts.Suggest, "suggest", "", "Write a suggested layout document: single, lvm or multi")
	flagSet.StringVar(&opts.SuggestDevice, "device", "", "Device the suggestion targets, e.g. /dev/sda")
	flagSet.StringVar(&opts.SuggestFs, "fs", "ext4", "Root filesystem for suggested layouts")
	flagSet.BoolVar(&opts.SeparateHome, "separate-home", false, "Suggest a separate /home")
	flagSet.BoolVar(&opts.Subvolumes, "subvolumes", false, "Suggest the btrfs subvolume scheme")
	flagSet.BoolVar(&opts.Apply, "apply", false, "Apply the layout document to this machine")
	flagSet.BoolVar(&opts.DryRun, "dry-run", false, "Print the staged operations without executing them")
	flagSet.BoolVar(&opts.AssumeYes, "yes-wipe-my-disks", false, "Skip the interactive confirmation before destructive steps")
	flagSet.Usage = func() {
		fmt.Fprintf(flagSet.Output(), `diskmason turns a declarative disk layout into partitions, LVM,
LUKS containers, filesystems and mounts.

Usage:

	%s [FLAGS]

Flags:
`, args[0])
		flagSet.PrintDefaults()
	}

	err := flagSet.Parse(args[1:])
	return opts, err
}
