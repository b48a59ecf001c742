package config_test

import (
	"testing"

	"github.com/SUSean/2015osteam20MP4/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestVolumeConfigYaml(t *testing.T) {
	data := []byte(`
disk_path: /var/lib/sectorfs/DISK
log_dir: /var/log/sectorfs
level: debug
log_max_age: 48h
`)

	vc := &config.VolumeConfig{}
	require.NoError(t, yaml.Unmarshal(data, vc))
	assert.Equal(t, "/var/lib/sectorfs/DISK", vc.Disk_path)
	assert.Equal(t, "/var/log/sectorfs", vc.LogDir)
	assert.Equal(t, "debug", vc.Log_level)
	assert.Equal(t, "48h", vc.LogMaxAge)
	assert.Empty(t, vc.LogRotationTime)
}

func TestGlobalConfig(t *testing.T) {
	cfg := &config.FSConfig{DiskPath: "DISK"}
	config.SetGConfig(cfg)
	assert.Equal(t, cfg, config.GetGConfig())
}
