package config

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type FSConfig struct {
	// path of the disk image holding the volume
	DiskPath string

	// reformat an existing image without asking
	Force bool

	Log_level logrus.Level

	LogDir          string
	LogMaxAge       time.Duration
	LogRotationTime time.Duration
}

var (
	fsConfig *FSConfig
	cfgLock  sync.RWMutex
)

func GetGConfig() *FSConfig {
	cfgLock.RLock()
	defer cfgLock.RUnlock()

	return fsConfig
}

func SetGConfig(cfg *FSConfig) {
	cfgLock.Lock()
	defer cfgLock.Unlock()

	fsConfig = cfg
}

// VolumeConfig is the optional yaml config file; flags given on the
// command line win over values read from it.
type VolumeConfig struct {
	Disk_path       string `yaml:"disk_path"`
	LogDir          string `yaml:"log_dir"`
	Log_level       string `yaml:"level"`
	LogMaxAge       string `yaml:"log_max_age"`
	LogRotationTime string `yaml:"log_rotation_time"`
}
