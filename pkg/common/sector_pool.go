package common

import (
	"sync"

	"github.com/SUSean/2015osteam20MP4/pkg/types"
)

// SectorPool recycles the scratch buffers used for sector-granular IO.
// Every file touched by ReadAt/WriteAt needs a staging buffer spanning
// whole sectors, so buffers come in SectorSize multiples.
var SP = NewSectorPool()

type SectorPool struct {
	pool *sync.Pool
}

func NewSectorPool() *SectorPool {
	return &SectorPool{
		pool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, types.SectorSize)
			},
		},
	}
}

// GetData returns a buffer of exactly size bytes, rounded up internally
// to a whole number of sectors.
func (sp *SectorPool) GetData(size int) []byte {
	buf := sp.pool.Get().([]byte)
	if cap(buf) < size {
		sectors := (size + types.SectorSize - 1) / types.SectorSize
		buf = make([]byte, sectors*types.SectorSize)
	}
	return buf[:size]
}

func (sp *SectorPool) PutData(buf []byte) {
	sp.pool.Put(buf[:cap(buf)])
}

func GetData(size int) []byte {
	return SP.GetData(size)
}

func PutData(buf []byte) {
	SP.PutData(buf)
}
