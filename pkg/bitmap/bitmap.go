// Package bitmap tracks which disk sectors are in use. The map itself
// lives on disk as the content of an ordinary file at a well-known
// sector, so it loads and saves through any io.ReaderAt/io.WriterAt.
package bitmap

import (
	"fmt"
	"io"

	"github.com/SUSean/2015osteam20MP4/pkg/types"
)

const bitsPerByte = 8

type Bitmap struct {
	numBits int32
	bits    []byte
}

func New(numBits int32) *Bitmap {
	return &Bitmap{
		numBits: numBits,
		bits:    make([]byte, (numBits+bitsPerByte-1)/bitsPerByte),
	}
}

func (b *Bitmap) Reserve(bit int32) {
	b.bits[bit/bitsPerByte] |= 1 << (bit % bitsPerByte)
}

func (b *Bitmap) Clear(bit int32) {
	b.bits[bit/bitsPerByte] &^= 1 << (bit % bitsPerByte)
}

func (b *Bitmap) Test(bit int32) bool {
	return b.bits[bit/bitsPerByte]&(1<<(bit%bitsPerByte)) != 0
}

// FindAndReserve finds the first clear bit, marks it, and returns it.
// ok is false when every bit is set.
func (b *Bitmap) FindAndReserve() (int32, bool) {
	for i := int32(0); i < b.numBits; i++ {
		if !b.Test(i) {
			b.Reserve(i)
			return i, true
		}
	}
	return -1, false
}

func (b *Bitmap) FreeCount() int {
	count := 0
	for i := int32(0); i < b.numBits; i++ {
		if !b.Test(i) {
			count++
		}
	}
	return count
}

// SerializedSize is the number of bytes Load and Save exchange with the
// backing file.
func (b *Bitmap) SerializedSize() int {
	return len(b.bits)
}

func (b *Bitmap) Load(r io.ReaderAt) error {
	if _, err := r.ReadAt(b.bits, 0); err != nil {
		return err
	}
	return nil
}

func (b *Bitmap) Save(w io.WriterAt) error {
	if _, err := w.WriteAt(b.bits, 0); err != nil {
		return err
	}
	return nil
}

// Print lists the set bits. For debugging.
func (b *Bitmap) Print(w io.Writer) {
	fmt.Fprintf(w, "Bitmap set:\n")
	for i := int32(0); i < b.numBits; i++ {
		if b.Test(i) {
			fmt.Fprintf(w, "%d, ", i)
		}
	}
	fmt.Fprintln(w)
}

// NewFreeMap builds the free-sector map for a whole volume.
func NewFreeMap() *Bitmap {
	return New(types.NumSectors)
}
