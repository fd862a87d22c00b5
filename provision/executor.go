package provision

import (
	"path"
	"sort"
	"strings"
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshretry "github.com/cloudfoundry/bosh-utils/retrystrategy"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/layout"
	"github.com/diskmason/diskmason/unit"
)

// ProvisioningConfig bounds the executor's polling loops and anchors
// the target tree. It is passed explicitly to NewExecutor; nothing in
// the executor reads global state.
type ProvisioningConfig struct {
	// MountRoot is where the installed tree is assembled.
	MountRoot string

	// KeyfileDir holds generated LUKS keyfiles for unattended unlock.
	KeyfileDir string

	PartitionWaitAttempts int
	PartitionWaitDelay    time.Duration

	MapperWaitAttempts int
	MapperWaitDelay    time.Duration

	MountVerifyAttempts int
	MountVerifyDelay    time.Duration
}

func DefaultProvisioningConfig() ProvisioningConfig {
	return ProvisioningConfig{
		MountRoot:             "/mnt",
		KeyfileDir:            "/etc/cryptsetup-keys.d",
		PartitionWaitAttempts: 10,
		PartitionWaitDelay:    1 * time.Second,
		MapperWaitAttempts:    10,
		MapperWaitDelay:       1 * time.Second,
		MountVerifyAttempts:   3,
		MountVerifyDelay:      1 * time.Second,
	}
}

// CryptEntry is one unlocked LUKS container, in the terms crypttab
// wants: the mapper name, the backing device and how it unlocks.
type CryptEntry struct {
	MapperName string
	DevPath    string
	PartUuid   string

	// Uuid is the LUKS container UUID on the backing device.
	Uuid string

	// KeyfilePath is empty when the container unlocks interactively or
	// through an enrolled HSM.
	KeyfilePath string
}

// Result is what later installation stages consume: where everything
// got mounted, and the identities of the boot-critical filesystems.
type Result struct {
	MountPlan []MountPlanEntry

	RootPartUuid string
	RootUuid     string
	BootPartUuid string
	BootUuid     string

	// DevicePaths maps modification ids to the realized block device,
	// the mapper path when the target is encrypted.
	DevicePaths map[string]string

	CryptEntries []CryptEntry

	Usage []MountUsage
}

// SourceFor resolves the realized device mounted at a logical
// mountpoint.
func (r *Result) SourceFor(mountpoint string) (string, bool) {
	for _, entry := range r.MountPlan {
		if !entry.Swap && entry.Mountpoint == mountpoint {
			return entry.Source, true
		}
	}
	return "", false
}

// Executor realizes a staged layout on real hardware, in a fixed step
// order per device: partition table, partitions, LVM, encryption,
// formats, mount plan, mounts. There is no rollback: once the wipe
// step begins the run is not abortable, and a failed run leaves each
// device in whatever state the last successful step produced. The
// returned error names the device and operation that failed.
type Executor interface {
	Apply(cfg *layout.DiskLayoutConfiguration, enc *layout.DiskEncryption) (*Result, error)
}

type executor struct {
	inventoryMgr  inventory.Manager
	partitioner   Partitioner
	lvmService    LvmService
	luksService   LuksService
	formatter     Formatter
	mounter       Mounter
	searcher      MountsSearcher
	settler       Settler
	usageReporter UsageReporter
	fs            boshsys.FileSystem
	config        ProvisioningConfig
	logger        boshlog.Logger
	logTag        string
}

func NewExecutor(
	inventoryMgr inventory.Manager,
	partitioner Partitioner,
	lvmService LvmService,
	luksService LuksService,
	formatter Formatter,
	mounter Mounter,
	searcher MountsSearcher,
	settler Settler,
	usageReporter UsageReporter,
	fs boshsys.FileSystem,
	config ProvisioningConfig,
	logger boshlog.Logger,
) Executor {
	return &executor{
		inventoryMgr:  inventoryMgr,
		partitioner:   partitioner,
		lvmService:    lvmService,
		luksService:   luksService,
		formatter:     formatter,
		mounter:       mounter,
		searcher:      searcher,
		settler:       settler,
		usageReporter: usageReporter,
		fs:            fs,
		config:        config,
		logger:        logger,
		logTag:        "provisionExecutor",
	}
}

func (e *executor) Apply(cfg *layout.DiskLayoutConfiguration, enc *layout.DiskEncryption) (*Result, error) {
	if cfg == nil {
		return nil, bosherr.Error("Applying a nil layout configuration")
	}
	if cfg.Type == layout.LayoutPreMounted {
		return e.applyPreMounted(cfg)
	}

	e.logger.Info(e.logTag, "Applying disk layout to %d device(s)", len(cfg.Modifications))

	result := &Result{DevicePaths: map[string]string{}}

	for _, mod := range cfg.Modifications {
		if err := e.prepareTable(mod); err != nil {
			return nil, err
		}
		if err := e.realizePartitions(mod, result); err != nil {
			return nil, err
		}
	}

	// LVM and encryption interleave by encryption kind: encrypted PVs
	// must be containers before pvcreate runs, encrypted LVs can only
	// be encrypted once lvcreate made them.
	switch {
	case enc.Enabled() && enc.EncType == layout.LvmOnLuks:
		if err := e.encryptPartitions(enc, result); err != nil {
			return nil, err
		}
		if err := e.realizeLvm(cfg.LvmConfig, result); err != nil {
			return nil, err
		}
	case enc.Enabled() && enc.EncType == layout.LuksOnLvm:
		if err := e.realizeLvm(cfg.LvmConfig, result); err != nil {
			return nil, err
		}
		if err := e.encryptVolumes(enc, result); err != nil {
			return nil, err
		}
	default:
		if err := e.realizeLvm(cfg.LvmConfig, result); err != nil {
			return nil, err
		}
		if enc.Enabled() {
			if err := e.encryptPartitions(enc, result); err != nil {
				return nil, err
			}
		}
	}

	if err := e.formatTargets(cfg, result); err != nil {
		return nil, err
	}

	entries, err := e.buildMountPlan(cfg, result)
	if err != nil {
		return nil, err
	}
	result.MountPlan = entries

	if err := e.executeMounts(entries); err != nil {
		return nil, err
	}

	e.resolveIdentities(cfg, result)
	result.Usage = e.collectUsage(entries)

	e.logger.Info(e.logTag, "Layout applied: %d mount plan entries, root PARTUUID '%s'", len(entries), result.RootPartUuid)
	return result, nil
}

// prepareTable is step 1: wipe and relabel, or verify the table the
// plan assumes is really there.
func (e *executor) prepareTable(mod *layout.DeviceModification) error {
	if mod.Wipe {
		table := mod.Device.Table
		if table != inventory.PartitionTableMBR {
			table = inventory.PartitionTableGPT
		}
		e.logger.Info(e.logTag, "Wiping %s and writing a fresh %s label", mod.Device.Path, table)
		return e.partitioner.WipeDevice(mod.Device.Path, table)
	}

	got, err := e.partitioner.ProbeTable(mod.Device.Path)
	if err != nil {
		return err
	}
	want := mod.Device.Table
	if want != inventory.PartitionTableUnknown && want != got {
		return PartitionTableMismatchError{DevPath: mod.Device.Path, Want: want, Got: got}
	}
	return nil
}

// realizePartitions is step 2: removals first, then creations in
// ascending start order, each polled into existence before the next.
func (e *executor) realizePartitions(mod *layout.DeviceModification, result *Result) error {
	if mod.Device.SectorSize.Value == 0 {
		return bosherr.Errorf("Device `%s' reports no sector size", mod.Device.Path)
	}
	ctx := unit.Context{SectorSize: mod.Device.SectorSize}

	if !mod.Wipe {
		if err := e.removePartitions(mod); err != nil {
			return err
		}
	}

	creates := make([]*layout.PartitionModification, 0, len(mod.Partitions))
	for _, part := range mod.Partitions {
		if part.IsCreate() {
			creates = append(creates, part)
		}
	}
	sort.SliceStable(creates, func(i, j int) bool {
		left, errL := creates[i].Start.BytesCtx(ctx)
		right, errR := creates[j].Start.BytesCtx(ctx)
		if errL != nil || errR != nil {
			return false
		}
		return left < right
	})

	for _, part := range creates {
		startBytes, err := part.Start.BytesCtx(ctx)
		if err != nil {
			return bosherr.WrapErrorf(err, "Computing start of partition '%s' on `%s'", part.Id, mod.Device.Path)
		}
		lengthBytes, err := part.Length.BytesCtx(ctx)
		if err != nil {
			return bosherr.WrapErrorf(err, "Computing size of partition '%s' on `%s'", part.Id, mod.Device.Path)
		}
		if lengthBytes == 0 {
			return bosherr.Errorf("Partition '%s' on `%s' has zero size", part.Id, mod.Device.Path)
		}

		before, err := e.inventoryMgr.ListDevices()
		if err != nil {
			return err
		}
		seen := before.PartUUIDs()

		spec := PartitionSpec{
			Number:     e.nextPartitionNumber(before, mod.Device.Path),
			StartBytes: startBytes,
			EndBytes:   startBytes + lengthBytes - 1,
			FsTypeHint: part.FsType,
			Flags:      part.Flags,
		}
		if err := e.partitioner.CreatePartition(mod.Device.Path, spec); err != nil {
			return err
		}

		startSector := startBytes / mod.Device.SectorSize.Value
		info, err := e.waitForNewPartition(mod.Device.Path, seen, startSector)
		if err != nil {
			return err
		}
		if err := e.settler.EnsureDeviceReadable(info.Path); err != nil {
			return err
		}

		part.DevPath = info.Path
		part.PartUUID = info.PartUUID
		if info.Uuid != "" {
			part.Uuid = info.Uuid
		}
		e.logger.Debug(e.logTag, "Partition '%s' realized as %s (PARTUUID %s)", part.Id, info.Path, info.PartUUID)
	}

	for _, part := range mod.Partitions {
		if part.Status == layout.StatusDelete || part.DevPath == "" {
			continue
		}
		result.DevicePaths[part.Id] = part.DevPath
	}
	return nil
}

func (e *executor) removePartitions(mod *layout.DeviceModification) error {
	snap, err := e.inventoryMgr.ListDevices()
	if err != nil {
		return err
	}
	for _, part := range mod.Partitions {
		if part.Status != layout.StatusDelete {
			continue
		}
		info, found := snap.GetPartition(part.DevPath)
		if !found {
			e.logger.Debug(e.logTag, "Partition %s already gone, nothing to remove", part.DevPath)
			continue
		}
		if err := e.partitioner.RemovePartition(mod.Device.Path, info.Number); err != nil {
			return err
		}
	}
	return nil
}

// nextPartitionNumber guesses the number parted will assign: the
// lowest free slot on the device.
func (e *executor) nextPartitionNumber(snap inventory.Snapshot, devPath string) uint {
	taken := map[uint]struct{}{}
	if device, found := snap.GetDevice(devPath); found {
		for _, p := range device.Partitions {
			taken[p.Number] = struct{}{}
		}
	}
	for number := uint(1); ; number++ {
		if _, used := taken[number]; !used {
			return number
		}
	}
}

// waitForNewPartition polls the inventory until a partition with a
// previously-unseen PARTUUID shows up at the expected start sector.
// Each attempt kicks udev first so the node exists by the time the
// probe reports it.
func (e *executor) waitForNewPartition(devPath string, seen map[string]struct{}, startSector uint64) (inventory.PartitionInfo, error) {
	var found inventory.PartitionInfo

	retryable := boshretry.NewRetryable(func() (bool, error) {
		if err := e.settler.Trigger(); err != nil {
			return true, err
		}
		if err := e.settler.Settle(); err != nil {
			return true, err
		}

		snap, err := e.inventoryMgr.ListDevices()
		if err != nil {
			return true, err
		}
		device, ok := snap.GetDevice(devPath)
		if !ok {
			return true, bosherr.Errorf("Device `%s' vanished from the inventory", devPath)
		}
		for _, p := range device.Partitions {
			if p.PartUUID == "" {
				continue
			}
			if _, old := seen[p.PartUUID]; old {
				continue
			}
			if p.Start.Value != startSector {
				continue
			}
			found = p
			return false, nil
		}
		return true, bosherr.Errorf("No new partition at sector %d of `%s' yet", startSector, devPath)
	})

	strategy := boshretry.NewAttemptRetryStrategy(e.config.PartitionWaitAttempts, e.config.PartitionWaitDelay, retryable, e.logger)
	if err := strategy.Try(); err != nil {
		return inventory.PartitionInfo{}, PartitionNeverAppearedError{DevPath: devPath, Attempts: e.config.PartitionWaitAttempts}
	}
	return found, nil
}

// realizeLvm is step 3. Physical volumes go on the realized paths, so
// for LVM-on-LUKS the containers opened in step 4 back the group. The
// trailing volume of each group takes the remaining extents, which
// absorbs the metadata overhead byte-exact planning cannot see.
func (e *executor) realizeLvm(lvmCfg *layout.LvmConfiguration, result *Result) error {
	if lvmCfg == nil {
		return nil
	}

	for _, group := range lvmCfg.VolGroups {
		pvPaths := make([]string, 0, len(group.Pvs))
		for _, pv := range group.Pvs {
			pvPath, ok := result.DevicePaths[pv.Id]
			if !ok || pvPath == "" {
				return bosherr.Errorf("Physical volume '%s' of group `%s' has no realized device path", pv.Id, group.Name)
			}
			if err := e.lvmService.CreatePhysicalVolume(pvPath); err != nil {
				return err
			}
			pvPaths = append(pvPaths, pvPath)
		}

		if err := e.lvmService.CreateVolumeGroup(group.Name, pvPaths); err != nil {
			return err
		}

		for i, vol := range group.Volumes {
			sizeBytes, err := vol.Length.Bytes()
			if err != nil {
				return bosherr.WrapErrorf(err, "Computing size of logical volume `%s'", vol.Name)
			}
			consumeRemainder := i == len(group.Volumes)-1

			mapperPath, err := e.lvmService.CreateLogicalVolume(group.Name, vol.Name, sizeBytes, consumeRemainder)
			if err != nil {
				return err
			}
			if err := e.waitForMapper(mapperPath); err != nil {
				return err
			}

			vol.DevPath = mapperPath
			result.DevicePaths[vol.Id] = mapperPath
		}

		if err := e.lvmService.ActivateVolumeGroup(group.Name); err != nil {
			return err
		}
	}
	return nil
}

// encryptPartitions is step 4 for Luks and LvmOnLuks: each target
// partition becomes a container and is opened immediately, so every
// later step operates on the mapper instead of the raw partition.
func (e *executor) encryptPartitions(enc *layout.DiskEncryption, result *Result) error {
	key, cleanup, err := e.formatKey(enc)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, part := range enc.Partitions {
		if part.DevPath == "" {
			return bosherr.Errorf("Encrypted partition '%s' has no realized device path", part.Id)
		}
		mapperPath, entry, err := e.encryptTarget(part.DevPath, part.PartUUID, part.IsRoot(), enc, key)
		if err != nil {
			return err
		}
		result.DevicePaths[part.Id] = mapperPath
		result.CryptEntries = append(result.CryptEntries, entry)
	}
	return nil
}

// encryptVolumes is step 4 for LuksOnLvm: logical volumes already
// exist, each target becomes a container on top of its mapper.
func (e *executor) encryptVolumes(enc *layout.DiskEncryption, result *Result) error {
	key, cleanup, err := e.formatKey(enc)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, vol := range enc.LvmVolumes {
		if vol.DevPath == "" {
			return bosherr.Errorf("Encrypted logical volume '%s' has no realized device path", vol.Id)
		}
		mapperPath, entry, err := e.encryptTarget(vol.DevPath, "", vol.IsRoot(), enc, key)
		if err != nil {
			return err
		}
		result.DevicePaths[vol.Id] = mapperPath
		result.CryptEntries = append(result.CryptEntries, entry)
	}
	return nil
}

func (e *executor) encryptTarget(devPath, partUuid string, isRoot bool, enc *layout.DiskEncryption, key LuksKey) (string, CryptEntry, error) {
	mapperName := mapperNameFor(devPath)

	if err := e.luksService.Format(devPath, key, enc.IterTime); err != nil {
		return "", CryptEntry{}, err
	}
	mapperPath, err := e.luksService.Open(devPath, mapperName, key)
	if err != nil {
		return "", CryptEntry{}, err
	}
	if err := e.waitForMapper(mapperPath); err != nil {
		return "", CryptEntry{}, err
	}

	entry := CryptEntry{MapperName: mapperName, DevPath: devPath, PartUuid: partUuid}

	if enc.ShouldGenerateKeyfile(isRoot) {
		keyfilePath := path.Join(e.config.KeyfileDir, mapperName+".key")
		if err := e.luksService.GenerateKeyfile(keyfilePath); err != nil {
			return "", CryptEntry{}, err
		}
		if err := e.luksService.AddKeyfile(devPath, key, keyfilePath); err != nil {
			return "", CryptEntry{}, err
		}
		entry.KeyfilePath = keyfilePath
	} else if enc.HSMDevice != nil {
		if err := e.luksService.EnrollFido2(devPath, enc.HSMDevice.Path, key); err != nil {
			return "", CryptEntry{}, err
		}
	}

	containerUuid, err := e.formatter.GetFilesystemUuid(devPath)
	if err != nil {
		e.logger.Debug(e.logTag, "Could not read container UUID of %s: %s", devPath, err)
	} else {
		entry.Uuid = containerUuid
	}

	e.logger.Info(e.logTag, "Encrypted %s, open at %s", devPath, mapperPath)
	return mapperPath, entry, nil
}

// formatKey produces the key material used to create containers. With
// no password set (HSM-only unlock) a throwaway keyfile is generated
// and removed after the run, leaving the HSM slot as the only way in.
func (e *executor) formatKey(enc *layout.DiskEncryption) (LuksKey, func(), error) {
	if enc.Password != "" {
		return LuksKey{Passphrase: enc.Password}, func() {}, nil
	}

	tempDir, err := e.fs.TempDir("luks-format-key")
	if err != nil {
		return LuksKey{}, nil, bosherr.WrapError(err, "Creating scratch dir for the format key")
	}
	cleanup := func() {
		if err := e.fs.RemoveAll(tempDir); err != nil {
			e.logger.Debug(e.logTag, "Removing scratch key dir: %s", err)
		}
	}

	keyPath := path.Join(tempDir, "format.key")
	if err := e.luksService.GenerateKeyfile(keyPath); err != nil {
		cleanup()
		return LuksKey{}, nil, err
	}
	return LuksKey{KeyfilePath: keyPath}, cleanup, nil
}

func (e *executor) waitForMapper(mapperPath string) error {
	retryable := boshretry.NewRetryable(func() (bool, error) {
		if err := e.settler.Settle(); err != nil {
			e.logger.Debug(e.logTag, "udev settle while waiting for %s: %s", mapperPath, err)
		}
		if e.fs.FileExists(mapperPath) {
			return false, nil
		}
		return true, bosherr.Errorf("Mapper `%s' not present yet", mapperPath)
	})

	strategy := boshretry.NewAttemptRetryStrategy(e.config.MapperWaitAttempts, e.config.MapperWaitDelay, retryable, e.logger)
	if err := strategy.Try(); err != nil {
		return MapperNeverAppearedError{MapperPath: mapperPath, Attempts: e.config.MapperWaitAttempts}
	}
	return nil
}

// formatTargets is step 5. Only targets explicitly marked formattable
// are ever handed to mkfs; everything else is skipped, which keeps a
// kept pre-existing filesystem (say a Windows partition) intact even
// if the plan is wrong about it.
func (e *executor) formatTargets(cfg *layout.DiskLayoutConfiguration, result *Result) error {
	for _, mod := range cfg.Modifications {
		for _, part := range mod.Partitions {
			if part.Status == layout.StatusDelete {
				continue
			}
			if !part.Formattable {
				e.logger.Debug(e.logTag, "Skipping format of %s: not marked formattable", part.DevPath)
				continue
			}
			if part.FsType == inventory.FilesystemNone {
				continue
			}

			target := result.DevicePaths[part.Id]
			if target == "" {
				return bosherr.Errorf("Formattable partition '%s' has no realized device path", part.Id)
			}
			if err := e.formatter.Format(target, part.FsType, ""); err != nil {
				return err
			}

			fsUuid, err := e.formatter.GetFilesystemUuid(target)
			if err != nil {
				return bosherr.WrapErrorf(err, "Resolving filesystem UUID of `%s'", target)
			}
			part.Uuid = fsUuid

			if part.FsType == inventory.FilesystemBtrfs && len(part.BtrfsSubvols) > 0 {
				if err := e.formatter.CreateBtrfsSubvolumes(target, part.BtrfsSubvols); err != nil {
					return err
				}
			}
		}
	}

	if cfg.LvmConfig == nil {
		return nil
	}
	for _, group := range cfg.LvmConfig.VolGroups {
		for _, vol := range group.Volumes {
			if vol.Status != layout.StatusCreate || vol.FsType == inventory.FilesystemNone {
				continue
			}

			target := result.DevicePaths[vol.Id]
			if target == "" {
				return bosherr.Errorf("Logical volume '%s' has no realized device path", vol.Id)
			}
			if err := e.formatter.Format(target, vol.FsType, ""); err != nil {
				return err
			}

			fsUuid, err := e.formatter.GetFilesystemUuid(target)
			if err != nil {
				return bosherr.WrapErrorf(err, "Resolving filesystem UUID of `%s'", target)
			}
			vol.Uuid = fsUuid

			if vol.FsType == inventory.FilesystemBtrfs && len(vol.BtrfsSubvols) > 0 {
				if err := e.formatter.CreateBtrfsSubvolumes(target, vol.BtrfsSubvols); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildMountPlan is step 6.
func (e *executor) buildMountPlan(cfg *layout.DiskLayoutConfiguration, result *Result) ([]MountPlanEntry, error) {
	plan := NewMountPlan(e.config.MountRoot)

	for _, mod := range cfg.Modifications {
		for _, part := range mod.Partitions {
			if part.Status == layout.StatusDelete {
				continue
			}
			source := result.DevicePaths[part.Id]
			if source == "" {
				continue
			}
			if part.IsSwap() {
				plan.AddSwap(source, part.Uuid, part.PartUUID)
				continue
			}
			fstype := string(part.FsType)
			if part.Mountpoint != "" {
				plan.AddFilesystem(source, part.Mountpoint, fstype, optionStrings(part.MountOptions), part.Uuid, part.PartUUID)
			}
			for _, subvol := range part.BtrfsSubvols {
				if subvol.Mountpoint == "" {
					continue
				}
				plan.AddSubvolume(source, subvol.Name, subvol.Mountpoint, fstype, optionStrings(part.MountOptions), part.Uuid, part.PartUUID)
			}
		}
	}

	if cfg.LvmConfig != nil {
		for _, group := range cfg.LvmConfig.VolGroups {
			for _, vol := range group.Volumes {
				source := result.DevicePaths[vol.Id]
				if source == "" {
					continue
				}
				if vol.FsType == inventory.FilesystemSwap {
					plan.AddSwap(source, vol.Uuid, "")
					continue
				}
				fstype := string(vol.FsType)
				if vol.Mountpoint != "" {
					plan.AddFilesystem(source, vol.Mountpoint, fstype, optionStrings(vol.MountOptions), vol.Uuid, "")
				}
				for _, subvol := range vol.BtrfsSubvols {
					if subvol.Mountpoint == "" {
						continue
					}
					plan.AddSubvolume(source, subvol.Name, subvol.Mountpoint, fstype, optionStrings(vol.MountOptions), vol.Uuid, "")
				}
			}
		}
	}

	return plan.Ordered()
}

// executeMounts is step 7.
func (e *executor) executeMounts(entries []MountPlanEntry) error {
	for _, entry := range entries {
		if entry.Swap {
			if err := e.mounter.SwapOn(entry.Source); err != nil {
				return err
			}
			continue
		}

		if err := e.fs.MkdirAll(entry.Target, 0755); err != nil {
			return bosherr.WrapErrorf(err, "Creating mountpoint `%s'", entry.Target)
		}
		if err := e.mounter.Mount(entry.Source, entry.Target, entry.Fstype, entry.Options...); err != nil {
			return err
		}
		if err := e.verifyMounted(entry); err != nil {
			return err
		}
	}
	return nil
}

func (e *executor) verifyMounted(entry MountPlanEntry) error {
	retryable := boshretry.NewRetryable(func() (bool, error) {
		mounts, err := e.searcher.SearchMounts()
		if err != nil {
			return true, err
		}
		for _, mount := range mounts {
			if mount.MountPoint == entry.Target && mount.PartitionPath == entry.Source {
				return false, nil
			}
		}
		return true, bosherr.Errorf("Mount of `%s' at `%s' not visible yet", entry.Source, entry.Target)
	})

	strategy := boshretry.NewAttemptRetryStrategy(e.config.MountVerifyAttempts, e.config.MountVerifyDelay, retryable, e.logger)
	if err := strategy.Try(); err != nil {
		return MountVerificationFailedError{Source: entry.Source, Target: entry.Target, Attempts: e.config.MountVerifyAttempts}
	}
	return nil
}

func (e *executor) resolveIdentities(cfg *layout.DiskLayoutConfiguration, result *Result) {
	for _, mod := range cfg.Modifications {
		if root := mod.RootPartition(); root != nil && result.RootPartUuid == "" {
			result.RootPartUuid = root.PartUUID
			result.RootUuid = root.Uuid
		}
		if boot := mod.BootPartition(); boot != nil && result.BootPartUuid == "" {
			result.BootPartUuid = boot.PartUUID
			result.BootUuid = boot.Uuid
		}
	}

	if cfg.LvmConfig == nil || result.RootUuid != "" {
		return
	}
	for _, group := range cfg.LvmConfig.VolGroups {
		for _, vol := range group.Volumes {
			if vol.IsRoot() {
				result.RootUuid = vol.Uuid
				return
			}
		}
	}
}

func (e *executor) collectUsage(entries []MountPlanEntry) []MountUsage {
	var usages []MountUsage
	for _, entry := range entries {
		if entry.Swap {
			continue
		}
		usage, err := e.usageReporter.GetUsage(entry.Target)
		if err != nil {
			e.logger.Debug(e.logTag, "Skipping usage of `%s': %s", entry.Target, err)
			continue
		}
		usages = append(usages, MountUsage{Mountpoint: entry.Mountpoint, Target: entry.Target, Usage: usage})
	}
	return usages
}

// applyPreMounted trusts a tree the operator assembled by hand: no
// destructive step runs, the plan is read back off the kernel mount
// table.
func (e *executor) applyPreMounted(cfg *layout.DiskLayoutConfiguration) (*Result, error) {
	root := path.Clean(cfg.MountPointPath)
	e.logger.Info(e.logTag, "Using pre-mounted tree at %s", root)

	mounts, err := e.searcher.SearchMounts()
	if err != nil {
		return nil, bosherr.WrapError(err, "Listing kernel mounts")
	}

	plan := NewMountPlan(root)
	var rootSource string
	for _, mount := range mounts {
		var mountpoint string
		switch {
		case mount.MountPoint == root:
			mountpoint = "/"
			rootSource = mount.PartitionPath
		case strings.HasPrefix(mount.MountPoint, root+"/"):
			mountpoint = strings.TrimPrefix(mount.MountPoint, root)
		default:
			continue
		}
		plan.AddFilesystem(mount.PartitionPath, mountpoint, "", nil, "", "")
	}

	if rootSource == "" {
		return nil, bosherr.Errorf("Pre-mounted layout: nothing is mounted at `%s'", root)
	}

	entries, err := plan.Ordered()
	if err != nil {
		return nil, err
	}

	result := &Result{MountPlan: entries, DevicePaths: map[string]string{}}

	snap, err := e.inventoryMgr.ListDevices()
	if err != nil {
		return nil, err
	}
	if info, found := snap.GetPartition(rootSource); found {
		result.RootPartUuid = info.PartUUID
		result.RootUuid = info.Uuid
	}

	result.Usage = e.collectUsage(entries)
	return result, nil
}

// mapperNameFor derives a stable device-mapper name from the device
// being encrypted: /dev/sda2 becomes crypt-sda2, /dev/vg0/home
// becomes crypt-vg0-home.
func mapperNameFor(devPath string) string {
	trimmed := strings.TrimPrefix(devPath, "/dev/")
	return "crypt-" + strings.ReplaceAll(trimmed, "/", "-")
}

func optionStrings(options layout.MountOptions) []string {
	if len(options) == 0 {
		return nil
	}
	out := make([]string, 0, len(options))
	for _, option := range options {
		out = append(out, string(option))
	}
	return out
}
