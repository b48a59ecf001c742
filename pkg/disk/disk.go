// Package disk is the raw sector-addressed block device. All IO above
// this layer happens in whole sectors against fixed offsets.
package disk

import (
	"fmt"
	"os"

	"github.com/SUSean/2015osteam20MP4/pkg/types"
)

type Device interface {
	ReadSector(sector int32, buf []byte) error
	WriteSector(sector int32, buf []byte) error
}

func checkRequest(sector int32, buf []byte) error {
	if sector < 0 || sector >= types.NumSectors {
		return fmt.Errorf("sector %d out of range: %w", sector, types.EINVAL)
	}
	if len(buf) != types.SectorSize {
		return fmt.Errorf("buffer size %d != sector size: %w", len(buf), types.EINVAL)
	}
	return nil
}

// FileDisk persists the volume in an ordinary image file of exactly
// NumSectors * SectorSize bytes.
type FileDisk struct {
	f *os.File
}

// OpenFileDisk attaches to an existing disk image. If format is true a
// zero-filled image is (re)created first.
func OpenFileDisk(path string, format bool) (*FileDisk, error) {
	flags := os.O_RDWR
	if format {
		flags |= os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}

	if format {
		if err := f.Truncate(types.NumSectors * types.SectorSize); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		if fi.Size() != types.NumSectors*types.SectorSize {
			f.Close()
			return nil, fmt.Errorf("disk image %s has size %d, want %d: %w",
				path, fi.Size(), types.NumSectors*types.SectorSize, types.EINVAL)
		}
	}

	return &FileDisk{f: f}, nil
}

func (d *FileDisk) ReadSector(sector int32, buf []byte) error {
	if err := checkRequest(sector, buf); err != nil {
		return err
	}
	_, err := d.f.ReadAt(buf, int64(sector)*types.SectorSize)
	return err
}

func (d *FileDisk) WriteSector(sector int32, buf []byte) error {
	if err := checkRequest(sector, buf); err != nil {
		return err
	}
	_, err := d.f.WriteAt(buf, int64(sector)*types.SectorSize)
	return err
}

func (d *FileDisk) Close() error {
	return d.f.Close()
}

// MemDisk keeps the whole volume in memory. Used by tests.
type MemDisk struct {
	data []byte
}

func NewMemDisk() *MemDisk {
	return &MemDisk{data: make([]byte, types.NumSectors*types.SectorSize)}
}

func (d *MemDisk) ReadSector(sector int32, buf []byte) error {
	if err := checkRequest(sector, buf); err != nil {
		return err
	}
	copy(buf, d.data[int(sector)*types.SectorSize:])
	return nil
}

func (d *MemDisk) WriteSector(sector int32, buf []byte) error {
	if err := checkRequest(sector, buf); err != nil {
		return err
	}
	copy(d.data[int(sector)*types.SectorSize:(int(sector)+1)*types.SectorSize], buf)
	return nil
}
