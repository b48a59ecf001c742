package fs

import (
	"github.com/SUSean/2015osteam20MP4/pkg/common"
	"github.com/SUSean/2015osteam20MP4/pkg/disk"
	"github.com/SUSean/2015osteam20MP4/pkg/filehdr"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
)

// OpenFile is a byte-level read/write handle bound to the file header
// stored at a given sector. It implements io.ReaderAt and io.WriterAt
// so the free map and the directory tables can persist through it.
//
// Files never grow: writes past the size fixed at creation are clamped.
type OpenFile struct {
	dev    disk.Device
	hdr    *filehdr.FileHeader
	sector int32

	// for the sequential Read/Write pair
	seekPosition int32
}

func NewOpenFile(dev disk.Device, sector int32) (*OpenFile, error) {
	hdr := filehdr.New()
	if err := hdr.FetchFrom(dev, sector); err != nil {
		return nil, err
	}

	return &OpenFile{
		dev:    dev,
		hdr:    hdr,
		sector: sector,
	}, nil
}

// Sector is the sector holding this file's header.
func (f *OpenFile) Sector() int32 {
	return f.sector
}

func (f *OpenFile) Length() int32 {
	return f.hdr.Length()
}

func (f *OpenFile) Seek(position int32) {
	f.seekPosition = position
}

// ReadAt reads up to len(p) bytes starting at the given file offset.
// Reads past the end of the file are clamped; a short count is not an
// error.
func (f *OpenFile) ReadAt(p []byte, off int64) (int, error) {
	position := int32(off)
	numBytes := int32(len(p))
	fileLength := f.hdr.Length()

	if numBytes <= 0 || position < 0 || position >= fileLength {
		return 0, nil
	}
	if position+numBytes > fileLength {
		numBytes = fileLength - position
	}

	firstSector := position / types.SectorSize
	lastSector := (position + numBytes - 1) / types.SectorSize
	numSectors := lastSector - firstSector + 1

	buf := common.GetData(int(numSectors) * types.SectorSize)
	defer common.PutData(buf)

	for i := int32(0); i < numSectors; i++ {
		sector, err := f.hdr.ByteToSector((firstSector + i) * types.SectorSize)
		if err != nil {
			return 0, err
		}
		if err := f.dev.ReadSector(sector, buf[i*types.SectorSize:(i+1)*types.SectorSize]); err != nil {
			return 0, err
		}
	}

	copy(p, buf[position-firstSector*types.SectorSize:][:numBytes])
	return int(numBytes), nil
}

// WriteAt writes up to len(p) bytes starting at the given file offset,
// reading back any partially covered first and last sectors first.
// Writes past the end of the file are clamped.
func (f *OpenFile) WriteAt(p []byte, off int64) (int, error) {
	position := int32(off)
	numBytes := int32(len(p))
	fileLength := f.hdr.Length()

	if numBytes <= 0 || position < 0 || position >= fileLength {
		return 0, nil
	}
	if position+numBytes > fileLength {
		numBytes = fileLength - position
	}

	firstSector := position / types.SectorSize
	lastSector := (position + numBytes - 1) / types.SectorSize
	numSectors := lastSector - firstSector + 1

	buf := common.GetData(int(numSectors) * types.SectorSize)
	defer common.PutData(buf)

	firstAligned := position == firstSector*types.SectorSize
	lastAligned := position+numBytes == (lastSector+1)*types.SectorSize

	if !firstAligned {
		if err := f.readSectorInto(firstSector, buf[:types.SectorSize]); err != nil {
			return 0, err
		}
	}
	if !lastAligned && (lastSector != firstSector || firstAligned) {
		if err := f.readSectorInto(lastSector, buf[(numSectors-1)*types.SectorSize:]); err != nil {
			return 0, err
		}
	}

	copy(buf[position-firstSector*types.SectorSize:], p[:numBytes])

	for i := int32(0); i < numSectors; i++ {
		sector, err := f.hdr.ByteToSector((firstSector + i) * types.SectorSize)
		if err != nil {
			return 0, err
		}
		if err := f.dev.WriteSector(sector, buf[i*types.SectorSize:(i+1)*types.SectorSize]); err != nil {
			return 0, err
		}
	}

	return int(numBytes), nil
}

func (f *OpenFile) readSectorInto(fileSector int32, buf []byte) error {
	sector, err := f.hdr.ByteToSector(fileSector * types.SectorSize)
	if err != nil {
		return err
	}
	return f.dev.ReadSector(sector, buf)
}

// Read reads from the current seek position and advances it.
func (f *OpenFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, int64(f.seekPosition))
	f.seekPosition += int32(n)
	return n, err
}

// Write writes at the current seek position and advances it.
func (f *OpenFile) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, int64(f.seekPosition))
	f.seekPosition += int32(n)
	return n, err
}
