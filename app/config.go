package app

import (
	"encoding/json"
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/diskmason/diskmason/provision"
)

// Config tunes a run. Zero-valued fields fall back to the provisioning
// defaults, so an absent file is a valid configuration.
type Config struct {
	LogLevel   string `json:"log_level,omitempty"`
	MountRoot  string `json:"mount_root,omitempty"`
	KeyfileDir string `json:"keyfile_dir,omitempty"`

	Provisioning ProvisioningSettings `json:"provisioning,omitempty"`
}

// ProvisioningSettings overrides the executor's polling budgets.
// Delays are milliseconds to keep the file free of duration strings.
type ProvisioningSettings struct {
	PartitionWaitAttempts int `json:"partition_wait_attempts,omitempty"`
	PartitionWaitDelayMs  int `json:"partition_wait_delay_ms,omitempty"`
	MapperWaitAttempts    int `json:"mapper_wait_attempts,omitempty"`
	MapperWaitDelayMs     int `json:"mapper_wait_delay_ms,omitempty"`
	MountVerifyAttempts   int `json:"mount_verify_attempts,omitempty"`
	MountVerifyDelayMs    int `json:"mount_verify_delay_ms,omitempty"`
}

func LoadConfigFromPath(fs boshsys.FileSystem, path string) (Config, error) {
	var config Config

	if path == "" {
		return config, nil
	}

	bytes, err := fs.ReadFile(path)
	if err != nil {
		return config, bosherr.WrapError(err, "Reading file")
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, bosherr.WrapError(err, "Loading file")
	}

	return config, nil
}

// ProvisioningConfig merges the file's settings over the defaults.
func (c Config) ProvisioningConfig() provision.ProvisioningConfig {
	cfg := provision.DefaultProvisioningConfig()

	if c.MountRoot != "" {
		cfg.MountRoot = c.MountRoot
	}
	if c.KeyfileDir != "" {
		cfg.KeyfileDir = c.KeyfileDir
	}

	p := c.Provisioning
	if p.PartitionWaitAttempts > 0 {
		cfg.PartitionWaitAttempts = p.PartitionWaitAttempts
	}
	if p.PartitionWaitDelayMs > 0 {
		cfg.PartitionWaitDelay = time.Duration(p.PartitionWaitDelayMs) * time.Millisecond
	}
	if p.MapperWaitAttempts > 0 {
		cfg.MapperWaitAttempts = p.MapperWaitAttempts
	}
	if p.MapperWaitDelayMs > 0 {
		cfg.MapperWaitDelay = time.Duration(p.MapperWaitDelayMs) * time.Millisecond
	}
	if p.MountVerifyAttempts > 0 {
		cfg.MountVerifyAttempts = p.MountVerifyAttempts
	}
	if p.MountVerifyDelayMs > 0 {
		cfg.MountVerifyDelay = time.Duration(p.MountVerifyDelayMs) * time.Millisecond
	}

	return cfg
}
