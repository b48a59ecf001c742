package filehdr_test

import (
	"errors"
	"testing"

	"github.com/SUSean/2015osteam20MP4/pkg/bitmap"
	"github.com/SUSean/2015osteam20MP4/pkg/disk"
	"github.com/SUSean/2015osteam20MP4/pkg/filehdr"
	"github.com/SUSean/2015osteam20MP4/pkg/mocks"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSingleHeader(t *testing.T) {
	alloc := bitmap.New(100)
	hdr := filehdr.New()

	require.NoError(t, hdr.Allocate(alloc, 300))
	assert.Equal(t, int32(300), hdr.Length())
	assert.Equal(t, 100-3, alloc.FreeCount())

	_, ok := hdr.NextHeaderSector()
	assert.False(t, ok)
}

func TestAllocateChains(t *testing.T) {
	alloc := bitmap.New(types.NumSectors)
	hdr := filehdr.New()

	size := int32(filehdr.MaxFileSizePerHeader + 1000)
	require.NoError(t, hdr.Allocate(alloc, size))
	assert.Equal(t, size, hdr.Length())

	// 29+8 data sectors plus one extra header sector
	assert.Equal(t, int(types.NumSectors)-(29+8+1), alloc.FreeCount())

	_, ok := hdr.NextHeaderSector()
	assert.True(t, ok)
	require.NotNil(t, hdr.Next())
	_, ok = hdr.Next().NextHeaderSector()
	assert.False(t, ok)
}

func TestAllocateOutOfSpace(t *testing.T) {
	alloc := bitmap.New(2)
	hdr := filehdr.New()

	assert.Equal(t, types.ENOSPC, hdr.Allocate(alloc, 1000))
}

func TestDeallocateReturnsDataSectors(t *testing.T) {
	alloc := bitmap.New(types.NumSectors)
	hdr := filehdr.New()

	size := int32(filehdr.MaxFileSizePerHeader + 1000)
	require.NoError(t, hdr.Allocate(alloc, size))

	hdr.Deallocate(alloc)
	// the chained header's own sector stays reserved; its owner clears
	// it while walking the chain
	assert.Equal(t, int(types.NumSectors)-1, alloc.FreeCount())
}

func TestWriteBackFetchFromRoundTrip(t *testing.T) {
	dev := disk.NewMemDisk()
	alloc := bitmap.New(types.NumSectors)

	hdrSector, ok := alloc.FindAndReserve()
	require.True(t, ok)

	hdr := filehdr.New()
	size := int32(filehdr.MaxFileSizePerHeader + 500)
	require.NoError(t, hdr.Allocate(alloc, size))
	require.NoError(t, hdr.WriteBack(dev, hdrSector))

	loaded := filehdr.New()
	require.NoError(t, loaded.FetchFrom(dev, hdrSector))
	assert.Equal(t, hdr.Length(), loaded.Length())

	for _, offset := range []int32{0, 127, 128, filehdr.MaxFileSizePerHeader - 1, filehdr.MaxFileSizePerHeader, size - 1} {
		want, err := hdr.ByteToSector(offset)
		require.NoError(t, err)
		got, err := loaded.ByteToSector(offset)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := loaded.ByteToSector(size)
	assert.Error(t, err)
}

func TestFetchFromReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dev := mocks.NewMockDevice(ctrl)
	dev.EXPECT().
		ReadSector(int32(3), gomock.Any()).
		Return(errors.New("bad sector"))

	hdr := filehdr.New()
	assert.Error(t, hdr.FetchFrom(dev, 3))
}
