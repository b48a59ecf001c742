package bitmap_test

import (
	"testing"

	"github.com/SUSean/2015osteam20MP4/pkg/bitmap"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile []byte

func (m memFile) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, m[off:]), nil
}

func (m memFile) WriteAt(p []byte, off int64) (int, error) {
	return copy(m[off:], p), nil
}

func TestReserveClearTest(t *testing.T) {
	b := bitmap.New(32)

	assert.False(t, b.Test(7))
	b.Reserve(7)
	assert.True(t, b.Test(7))
	assert.False(t, b.Test(6))
	assert.False(t, b.Test(8))

	b.Clear(7)
	assert.False(t, b.Test(7))
}

func TestFindAndReserve(t *testing.T) {
	b := bitmap.New(4)

	for want := int32(0); want < 4; want++ {
		bit, ok := b.FindAndReserve()
		require.True(t, ok)
		assert.Equal(t, want, bit)
	}

	_, ok := b.FindAndReserve()
	assert.False(t, ok)

	b.Clear(2)
	bit, ok := b.FindAndReserve()
	require.True(t, ok)
	assert.Equal(t, int32(2), bit)
}

func TestFreeCount(t *testing.T) {
	b := bitmap.New(16)
	assert.Equal(t, 16, b.FreeCount())

	b.Reserve(0)
	b.Reserve(15)
	assert.Equal(t, 14, b.FreeCount())
}

func TestLoadSaveRoundTrip(t *testing.T) {
	b := bitmap.NewFreeMap()
	b.Reserve(0)
	b.Reserve(1)
	b.Reserve(517)

	assert.Equal(t, types.FreeMapFileSize, b.SerializedSize())

	file := memFile(make([]byte, b.SerializedSize()))
	require.NoError(t, b.Save(file))

	loaded := bitmap.NewFreeMap()
	require.NoError(t, loaded.Load(file))
	assert.True(t, loaded.Test(0))
	assert.True(t, loaded.Test(1))
	assert.True(t, loaded.Test(517))
	assert.Equal(t, b.FreeCount(), loaded.FreeCount())
}
