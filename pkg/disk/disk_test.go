package disk_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/SUSean/2015osteam20MP4/pkg/disk"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDiskRoundTrip(t *testing.T) {
	dev := disk.NewMemDisk()

	out := bytes.Repeat([]byte{0xab}, types.SectorSize)
	require.NoError(t, dev.WriteSector(42, out))

	in := make([]byte, types.SectorSize)
	require.NoError(t, dev.ReadSector(42, in))
	assert.Equal(t, out, in)

	require.NoError(t, dev.ReadSector(43, in))
	assert.Equal(t, make([]byte, types.SectorSize), in)
}

func TestBadRequests(t *testing.T) {
	dev := disk.NewMemDisk()
	buf := make([]byte, types.SectorSize)

	assert.Error(t, dev.ReadSector(-1, buf))
	assert.Error(t, dev.ReadSector(types.NumSectors, buf))
	assert.Error(t, dev.WriteSector(0, buf[:10]))
}

func TestFileDiskPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DISK")

	dev, err := disk.OpenFileDisk(path, true)
	require.NoError(t, err)

	out := bytes.Repeat([]byte{0x5a}, types.SectorSize)
	require.NoError(t, dev.WriteSector(7, out))
	require.NoError(t, dev.Close())

	dev, err = disk.OpenFileDisk(path, false)
	require.NoError(t, err)
	defer dev.Close()

	in := make([]byte, types.SectorSize)
	require.NoError(t, dev.ReadSector(7, in))
	assert.Equal(t, out, in)
}

func TestFileDiskRejectsWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DISK")

	dev, err := disk.OpenFileDisk(path, true)
	require.NoError(t, err)
	require.NoError(t, dev.Close())

	_, err = disk.OpenFileDisk(path+"-missing", false)
	assert.Error(t, err)
}
