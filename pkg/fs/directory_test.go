package fs_test

import (
	"fmt"
	"testing"

	"github.com/SUSean/2015osteam20MP4/pkg/fs"
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

func TestDirectoryAddFind(t *testing.T) {
	d := fs.NewDirectory(types.NumDirEntries)

	require.NoError(t, d.Add("/a", 17, false))
	require.NoError(t, d.Add("/b", 18, true))

	sector, err := d.Find("/a")
	require.NoError(t, err)
	assert.Equal(t, int32(17), sector)

	isDir, err := d.IsDir("/b")
	require.NoError(t, err)
	assert.True(t, isDir)

	isDir, err = d.IsDir("/a")
	require.NoError(t, err)
	assert.False(t, isDir)

	// absence is ENOENT, never a false flag
	_, err = d.IsDir("/c")
	assert.Equal(t, types.ENOENT, err)
	_, err = d.Find("/c")
	assert.Equal(t, types.ENOENT, err)
}

func TestDirectoryAddDuplicate(t *testing.T) {
	d := fs.NewDirectory(types.NumDirEntries)

	require.NoError(t, d.Add("/a", 17, false))
	assert.Equal(t, types.EEXIST, d.Add("/a", 99, true))

	// the original entry is untouched
	sector, err := d.Find("/a")
	require.NoError(t, err)
	assert.Equal(t, int32(17), sector)
}

func TestDirectoryNameRules(t *testing.T) {
	d := fs.NewDirectory(types.NumDirEntries)

	assert.Equal(t, types.ErrNameTooLong, d.Add("/longlongname", 1, false))
	assert.Equal(t, types.EINVAL, d.Add("noslash", 1, false))
	assert.Equal(t, types.EINVAL, d.Add("/", 1, false))
	assert.Equal(t, types.EINVAL, d.Add("/a/b", 1, false))

	// exactly FileNameMaxLen bytes is fine
	assert.NoError(t, d.Add("/12345678", 1, false))
}

func TestDirectoryCapacity(t *testing.T) {
	d := fs.NewDirectory(types.NumDirEntries)

	for i := 0; i < types.NumDirEntries; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("/f%d", i), int32(i+2), false))
	}
	assert.Equal(t, types.ENOSPC, d.Add("/onemore", 99, false))

	// a remove frees exactly one slot
	require.NoError(t, d.Remove("/f10"))
	assert.NoError(t, d.Add("/onemore", 99, false))
	assert.Equal(t, types.ENOSPC, d.Add("/another", 100, false))
}

func TestDirectoryRemove(t *testing.T) {
	d := fs.NewDirectory(types.NumDirEntries)

	require.NoError(t, d.Add("/a", 17, false))
	require.NoError(t, d.Remove("/a"))
	_, err := d.Find("/a")
	assert.Equal(t, types.ENOENT, err)

	assert.Equal(t, types.ENOENT, d.Remove("/a"))
}

func TestDirectoryListOrder(t *testing.T) {
	d := fs.NewDirectory(types.NumDirEntries)

	require.NoError(t, d.Add("/a", 2, false))
	require.NoError(t, d.Add("/b", 3, false))
	require.NoError(t, d.Add("/c", 4, false))
	assert.Equal(t, []string{"/a", "/b", "/c"}, d.List())

	// a freed slot gets reused, so the reused name moves forward
	require.NoError(t, d.Remove("/b"))
	require.NoError(t, d.Add("/z", 5, false))
	assert.Equal(t, []string{"/a", "/z", "/c"}, d.List())
}

func TestDirectorySerializationRoundTrip(t *testing.T) {
	d := fs.NewDirectory(types.NumDirEntries)
	require.NoError(t, d.Add("/a", 17, false))
	require.NoError(t, d.Add("/dir", 31, true))
	require.NoError(t, d.Add("/gone", 40, false))
	require.NoError(t, d.Remove("/gone"))

	file := memFile(make([]byte, fs.DirectoryFileSize()))
	require.NoError(t, d.WriteBack(file))

	loaded := fs.NewDirectory(types.NumDirEntries)
	require.NoError(t, loaded.FetchFrom(file))

	assert.Equal(t, []string{"/a", "/dir"}, loaded.List())
	sector, err := loaded.Find("/dir")
	require.NoError(t, err)
	assert.Equal(t, int32(31), sector)
	isDir, err := loaded.IsDir("/dir")
	require.NoError(t, err)
	assert.True(t, isDir)
}
