package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"code.cloudfoundry.org/clock"
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	humanize "github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/provision"
	"github.com/diskmason/diskmason/suggest"
	"github.com/diskmason/diskmason/unit"
)

type App interface {
	Setup(args []string) error
	Run() error
}

type app struct {
	logger boshlog.Logger
	logTag string

	opts         Options
	config       Config
	provisionCfg provision.ProvisioningConfig

	fs           boshsys.FileSystem
	cmdRunner    boshsys.CmdRunner
	inventoryMgr inventory.Manager
	executor     provision.Executor

	in  io.Reader
	out io.Writer
}

func New(logger boshlog.Logger) App {
	return &app{
		logger: logger,
		logTag: "App",
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

func (app *app) Setup(args []string) error {
	opts, err := ParseOptions(args)
	if err != nil {
		return bosherr.WrapError(err, "Parsing options")
	}
	app.opts = opts

	config, err := app.loadConfig(opts.ConfigPath)
	if err != nil {
		return bosherr.WrapError(err, "Loading config")
	}
	app.config = config
	app.provisionCfg = config.ProvisioningConfig()

	if err := app.applyLogLevel(); err != nil {
		return err
	}

	app.fs = boshsys.NewOsFileSystem(app.logger)
	app.cmdRunner = boshsys.NewExecCmdRunner(app.logger)
	timeService := clock.NewClock()

	prober := inventory.NewLsblkProber(app.cmdRunner, app.logger)
	app.inventoryMgr = inventory.NewManager(prober, app.logger)

	provisionMgr := provision.NewLinuxProvisionManager(app.logger, app.cmdRunner, app.fs, timeService)
	app.executor = provisionMgr.GetExecutor(app.inventoryMgr, app.provisionCfg)

	return nil
}

func (app *app) Run() error {
	switch {
	case app.opts.ListDevices:
		return app.listDevices()
	case app.opts.Suggest != "":
		return app.suggestLayout()
	case app.opts.Apply || app.opts.DryRun:
		return app.applyLayout()
	}
	return bosherr.Error("Nothing to do: pass --list-devices, --suggest or --apply")
}

func (app *app) loadConfig(path string) (Config, error) {
	// Use one off copy of file system to read configuration file
	fs := boshsys.NewOsFileSystem(app.logger)
	return LoadConfigFromPath(fs, path)
}

// applyLogLevel rebuilds the logger when a level was asked for; the
// command line wins over the config file.
func (app *app) applyLogLevel() error {
	name := app.opts.LogLevel
	if name == "" {
		name = app.config.LogLevel
	}
	if name == "" {
		return nil
	}

	var level boshlog.LogLevel
	switch strings.ToLower(name) {
	case "none":
		level = boshlog.LevelNone
	case "error":
		level = boshlog.LevelError
	case "warn":
		level = boshlog.LevelWarn
	case "info":
		level = boshlog.LevelInfo
	case "debug":
		level = boshlog.LevelDebug
	default:
		return bosherr.Errorf("Unknown log level `%s'", name)
	}

	app.logger = boshlog.NewLogger(level)
	return nil
}

func (app *app) listDevices() error {
	snapshot, err := app.inventoryMgr.ListDevices()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "%-14s %-10s %-8s %-6s %s\n", "PATH", "SIZE", "TABLE", "TYPE", "MODEL")
	for _, device := range snapshot.Devices {
		table := string(device.Table)
		if table == "" {
			table = "-"
		}
		fmt.Fprintf(app.out, "%-14s %-10s %-8s %-6s %s\n",
			device.Path,
			humanize.IBytes(app.sizeBytes(device.TotalSize, device.SectorSize)),
			table,
			string(device.Type),
			device.Model,
		)

		for _, part := range device.Partitions {
			fstype := string(part.FsType)
			if fstype == "" {
				fstype = "-"
			}
			mounted := ""
			if part.IsMounted() {
				mounted = strings.Join(part.Mountpoints, ",")
			}
			fmt.Fprintf(app.out, "  %-12s %-10s %-8s %s\n",
				part.Path,
				humanize.IBytes(app.sizeBytes(part.Length, device.SectorSize)),
				fstype,
				mounted,
			)
		}
	}
	return nil
}

func (app *app) suggestLayout() error {
	if app.opts.LayoutPath == "" {
		return bosherr.Error("A layout document path is required to save the suggestion (-l)")
	}

	switch app.opts.Suggest {
	case "single", "lvm", "multi":
	default:
		return bosherr.Errorf("Unknown suggestion kind `%s' (want single, lvm or multi)", app.opts.Suggest)
	}

	fsType := inventory.FilesystemType(app.opts.SuggestFs)
	if !fsType.IsSupportedFormat() || fsType == inventory.FilesystemSwap {
		return bosherr.Errorf("Cannot suggest a layout with root filesystem `%s'", app.opts.SuggestFs)
	}

	snapshot, err := app.inventoryMgr.ListDevices()
	if err != nil {
		return err
	}

	suggestOpts := suggest.Options{
		FsType:       fsType,
		SeparateHome: app.opts.SeparateHome,
		Subvolumes:   app.opts.Subvolumes,
	}

	cfg, err := app.buildSuggestion(snapshot, suggestOpts)
	if err != nil {
		return err
	}

	doc := LayoutDocument{DiskConfig: layout.BuildConfigDocument(cfg)}
	if err := SaveLayoutToPath(app.fs, app.opts.LayoutPath, doc); err != nil {
		return bosherr.WrapError(err, "Saving layout document")
	}

	fmt.Fprintf(app.out, "Wrote suggested %s layout to %s\n", app.opts.Suggest, app.opts.LayoutPath)
	return nil
}

func (app *app) buildSuggestion(snapshot inventory.Snapshot, opts suggest.Options) (*layout.DiskLayoutConfiguration, error) {
	if app.opts.Suggest == "multi" {
		var candidates []inventory.DeviceInfo
		for _, device := range snapshot.Devices {
			if device.Type == inventory.DeviceTypeDisk && !device.ReadOnly {
				candidates = append(candidates, device)
			}
		}

		suggestion, err := suggest.MultiDisk(candidates, opts)
		if err != nil {
			return nil, bosherr.WrapError(err, "Suggesting a multi-disk layout")
		}
		if suggestion.Insufficient != nil {
			return nil, bosherr.Errorf("No workable multi-disk layout: %s", suggestion.Insufficient)
		}
		return layout.NewDiskLayoutConfiguration(layout.LayoutDefault, suggestion.Modifications, nil, "")
	}

	device, found := snapshot.GetDevice(app.opts.SuggestDevice)
	if !found {
		return nil, bosherr.Errorf("Device `%s' is not present; pass --device", app.opts.SuggestDevice)
	}

	mod, err := suggest.SingleDisk(device, opts)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Suggesting a layout for `%s'", device.Path)
	}

	cfg, err := layout.NewDiskLayoutConfiguration(layout.LayoutDefault, []*layout.DeviceModification{mod}, nil, "")
	if err != nil {
		return nil, err
	}

	if app.opts.Suggest == "lvm" {
		lvmConfig, err := suggest.Lvm(cfg, "vgmain", opts)
		if err != nil {
			return nil, bosherr.WrapErrorf(err, "Suggesting LVM on `%s'", device.Path)
		}
		cfg.LvmConfig = lvmConfig
	}

	return cfg, nil
}

func (app *app) applyLayout() error {
	if app.opts.LayoutPath == "" {
		return bosherr.Error("A layout document path is required (-l)")
	}

	doc, err := LoadLayoutFromPath(app.fs, app.opts.LayoutPath)
	if err != nil {
		return bosherr.WrapError(err, "Loading layout document")
	}

	snapshot, err := app.inventoryMgr.ListDevices()
	if err != nil {
		return err
	}

	cfg, err := layout.ParseConfigDocument(doc.DiskConfig, snapshot)
	if err != nil {
		return bosherr.WrapError(err, "Parsing layout document")
	}
	enc, err := layout.ParseEncryptionDocument(doc.Encryption, cfg)
	if err != nil {
		return bosherr.WrapError(err, "Parsing encryption document")
	}

	if app.opts.DryRun {
		app.printPlan(cfg, enc)
		return nil
	}

	if !app.opts.AssumeYes {
		confirmed, err := app.confirmDestruction(cfg)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(app.out, "Aborted, no device was touched.")
			return nil
		}
	}

	result, err := app.executor.Apply(cfg, enc)
	if err != nil {
		return bosherr.WrapError(err, "Applying layout")
	}

	if err := provision.WriteFstab(app.fs, result, app.provisionCfg.MountRoot); err != nil {
		return err
	}

	app.printResult(result)
	return nil
}

func (app *app) confirmDestruction(cfg *layout.DiskLayoutConfiguration) (bool, error) {
	var wiped, touched []string
	for _, mod := range cfg.Modifications {
		if mod.Wipe {
			wiped = append(wiped, mod.Device.Path)
		} else {
			touched = append(touched, mod.Device.Path)
		}
	}

	warn := color.New(color.FgRed, color.Bold)
	if len(wiped) > 0 {
		warn.Fprintf(app.out, "\nWARNING: this will DESTROY ALL DATA on %s\n", strings.Join(wiped, ", ")) //nolint:errcheck
	}
	if len(touched) > 0 {
		warn.Fprintf(app.out, "WARNING: partitions on %s will be changed\n", strings.Join(touched, ", ")) //nolint:errcheck
	}
	fmt.Fprint(app.out, "Continue? [y/n]: ")

	reader := bufio.NewReader(app.in)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, bosherr.WrapError(err, "Reading confirmation")
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func (app *app) printPlan(cfg *layout.DiskLayoutConfiguration, enc *layout.DiskEncryption) {
	for _, mod := range cfg.Modifications {
		if mod.Wipe {
			fmt.Fprintf(app.out, "wipe %s and write a fresh partition table\n", mod.Device.Path)
		}
		for _, part := range mod.Partitions {
			line := fmt.Sprintf("%-8s %s %s", part.Status, mod.Device.Path, humanize.IBytes(app.sizeBytes(part.Length, mod.Device.SectorSize)))
			if part.FsType != inventory.FilesystemNone {
				line += " " + string(part.FsType)
			}
			if part.Mountpoint != "" {
				line += " on " + part.Mountpoint
			}
			fmt.Fprintln(app.out, line)
		}
	}

	if cfg.LvmConfig != nil {
		for _, group := range cfg.LvmConfig.VolGroups {
			fmt.Fprintf(app.out, "volume group %s over %d physical volume(s)\n", group.Name, len(group.Pvs))
			for _, vol := range group.Volumes {
				fmt.Fprintf(app.out, "  %s %s %s on %s\n", vol.Name, humanize.IBytes(app.sizeBytes(vol.Length, unit.DefaultSectorSize)), vol.FsType, vol.Mountpoint)
			}
		}
	}

	if enc.Enabled() {
		targets := len(enc.Partitions) + len(enc.LvmVolumes)
		fmt.Fprintf(app.out, "encrypt %d target(s) as %s\n", targets, enc.EncType)
	}
}

func (app *app) printResult(result *provision.Result) {
	fmt.Fprintf(app.out, "\n%-24s %-16s %s\n", "SOURCE", "MOUNTPOINT", "FSTYPE")
	for _, entry := range result.MountPlan {
		mountpoint := entry.Mountpoint
		fstype := entry.Fstype
		if entry.Swap {
			mountpoint = "[swap]"
			fstype = "swap"
		}
		fmt.Fprintf(app.out, "%-24s %-16s %s\n", entry.Source, mountpoint, fstype)
	}

	if len(result.Usage) > 0 {
		fmt.Fprintf(app.out, "\n%-16s %-10s %-10s %s\n", "MOUNTPOINT", "TOTAL", "USED", "AVAIL")
		for _, usage := range result.Usage {
			fmt.Fprintf(app.out, "%-16s %-10s %-10s %s\n",
				usage.Mountpoint,
				humanize.IBytes(usage.Usage.Total),
				humanize.IBytes(usage.Usage.Used),
				humanize.IBytes(usage.Usage.Avail),
			)
		}
	}

	if result.RootPartUuid != "" || result.RootUuid != "" {
		fmt.Fprintf(app.out, "\nroot PARTUUID=%s UUID=%s\n", result.RootPartUuid, result.RootUuid)
	}
}

// sizeBytes renders through the device's own sector size; display code
// treats an unconvertible size as zero rather than failing a listing.
func (app *app) sizeBytes(size unit.Size, ss unit.SectorSize) uint64 {
	bytes, err := size.BytesCtx(unit.Context{SectorSize: ss})
	if err != nil {
		return 0
	}
	return bytes
}
