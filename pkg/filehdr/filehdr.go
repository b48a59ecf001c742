// Package filehdr is the per-file metadata block mapping a file's
// logical bytes to physical sectors. A header occupies exactly one disk
// sector; files spanning more sectors than one header can address chain
// through a successor header sector.
package filehdr

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/SUSean/2015osteam20MP4/pkg/disk"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
)

const (
	// numBytes + numSectors + nextHeader, then the direct table
	NumDirect = (types.SectorSize - 3*4) / 4

	// bytes one header can address on its own
	MaxFileSizePerHeader = NumDirect * types.SectorSize

	NoNextHeader = int32(-1)
)

// Allocator is the slice of the free-sector map a header needs.
type Allocator interface {
	FindAndReserve() (int32, bool)
	Clear(sector int32)
}

type FileHeader struct {
	numBytes    int32
	numSectors  int32
	nextHeader  int32
	dataSectors [NumDirect]int32

	next *FileHeader
}

func New() *FileHeader {
	return &FileHeader{nextHeader: NoNextHeader}
}

// Allocate reserves data sectors for a file of numBytes bytes, chaining
// additional headers (whose own sectors are reserved here too) when one
// direct table is not enough. On failure the header is unusable and the
// caller must discard its copy of the allocator.
func (h *FileHeader) Allocate(alloc Allocator, numBytes int32) error {
	if numBytes < 0 {
		return types.EINVAL
	}

	total := (numBytes + types.SectorSize - 1) / types.SectorSize
	hdr := h
	remaining := numBytes
	for {
		n := total
		if n > NumDirect {
			n = NumDirect
		}
		hdr.numSectors = n
		hdr.numBytes = remaining
		if hdr.numBytes > MaxFileSizePerHeader {
			hdr.numBytes = MaxFileSizePerHeader
		}

		for i := int32(0); i < n; i++ {
			sector, ok := alloc.FindAndReserve()
			if !ok {
				return types.ENOSPC
			}
			hdr.dataSectors[i] = sector
		}

		total -= n
		remaining -= hdr.numBytes
		if total == 0 {
			return nil
		}

		sector, ok := alloc.FindAndReserve()
		if !ok {
			return types.ENOSPC
		}
		hdr.nextHeader = sector
		hdr.next = New()
		hdr = hdr.next
	}
}

// Deallocate returns every data sector of the whole chain to the
// allocator. The header sectors themselves stay reserved; the owner
// clears them while walking the chain.
func (h *FileHeader) Deallocate(alloc Allocator) {
	for hdr := h; hdr != nil; hdr = hdr.next {
		for i := int32(0); i < hdr.numSectors; i++ {
			alloc.Clear(hdr.dataSectors[i])
		}
	}
}

// FetchFrom reads the header stored at the given sector, following the
// successor links until the chain ends.
func (h *FileHeader) FetchFrom(dev disk.Device, sector int32) error {
	buf := make([]byte, types.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return err
	}
	h.unmarshal(buf)

	if h.nextHeader != NoNextHeader {
		h.next = New()
		return h.next.FetchFrom(dev, h.nextHeader)
	}
	h.next = nil
	return nil
}

// WriteBack persists the whole chain, the head at the given sector and
// each successor at its reserved sector.
func (h *FileHeader) WriteBack(dev disk.Device, sector int32) error {
	buf := make([]byte, types.SectorSize)
	h.marshal(buf)
	if err := dev.WriteSector(sector, buf); err != nil {
		return err
	}

	if h.next != nil {
		return h.next.WriteBack(dev, h.nextHeader)
	}
	return nil
}

// ByteToSector maps a logical file offset to the physical sector
// holding it.
func (h *FileHeader) ByteToSector(offset int32) (int32, error) {
	for hdr := h; hdr != nil; hdr = hdr.next {
		if offset < hdr.numBytes {
			return hdr.dataSectors[offset/types.SectorSize], nil
		}
		offset -= MaxFileSizePerHeader
	}
	return -1, types.EINVAL
}

// Length is the file size in bytes, summed over the chain.
func (h *FileHeader) Length() int32 {
	var n int32
	for hdr := h; hdr != nil; hdr = hdr.next {
		n += hdr.numBytes
	}
	return n
}

func (h *FileHeader) NextHeaderSector() (int32, bool) {
	if h.nextHeader == NoNextHeader {
		return -1, false
	}
	return h.nextHeader, true
}

func (h *FileHeader) Next() *FileHeader {
	return h.next
}

func (h *FileHeader) marshal(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(h.numBytes))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h.numSectors))
	binary.LittleEndian.PutUint32(buf[8:], uint32(h.nextHeader))
	for i := 0; i < NumDirect; i++ {
		binary.LittleEndian.PutUint32(buf[12+i*4:], uint32(h.dataSectors[i]))
	}
}

func (h *FileHeader) unmarshal(buf []byte) {
	h.numBytes = int32(binary.LittleEndian.Uint32(buf[0:]))
	h.numSectors = int32(binary.LittleEndian.Uint32(buf[4:]))
	h.nextHeader = int32(binary.LittleEndian.Uint32(buf[8:]))
	for i := 0; i < NumDirect; i++ {
		h.dataSectors[i] = int32(binary.LittleEndian.Uint32(buf[12+i*4:]))
	}
}

// Print dumps the header chain for the diagnostic volume dump.
func (h *FileHeader) Print(w io.Writer) {
	for hdr, i := h, 0; hdr != nil; hdr, i = hdr.next, i+1 {
		fmt.Fprintf(w, "FileHeader contents (segment %d). File size: %d. File blocks:\n", i, hdr.numBytes)
		for j := int32(0); j < hdr.numSectors; j++ {
			fmt.Fprintf(w, "%d ", hdr.dataSectors[j])
		}
		fmt.Fprintln(w)
	}
}
