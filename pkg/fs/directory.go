package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/SUSean/2015osteam20MP4/pkg/disk"
	"github.com/SUSean/2015osteam20MP4/pkg/filehdr"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
)

// A directory is a fixed-capacity table of named entries persisted as
// the content of an ordinary file, so subdirectories nest for free: the
// entry's sector points at a file whose bytes are another table of the
// same capacity. Name components are stored with their leading '/'.

const (
	// on-disk record: inUse(1) | name(FileNameMaxLen+1) | sector(4) | isDir(1)
	entryNameBytes  = types.FileNameMaxLen + 1
	EntryRecordSize = 1 + entryNameBytes + 4 + 1
)

// DirectoryFileSize is the exact serialized size of one table; every
// directory file's declared size must equal it.
func DirectoryFileSize() int32 {
	return int32(types.NumDirEntries * EntryRecordSize)
}

type DirectoryEntry struct {
	InUse  bool
	Sector int32
	IsDir  bool

	name [entryNameBytes]byte
}

func (e *DirectoryEntry) Name() string {
	n := 0
	for n < len(e.name) && e.name[n] != 0 {
		n++
	}
	return string(e.name[:n])
}

func (e *DirectoryEntry) setName(name string) {
	e.name = [entryNameBytes]byte{}
	copy(e.name[:], name)
}

type Directory struct {
	table []DirectoryEntry
}

// NewDirectory initializes an empty table of the given capacity; the
// capacity never changes afterwards.
func NewDirectory(size int) *Directory {
	return &Directory{table: make([]DirectoryEntry, size)}
}

func checkName(name string) error {
	if len(name) < 2 || name[0] != '/' || strings.ContainsRune(name[1:], '/') {
		return types.EINVAL
	}
	if len(name) > types.FileNameMaxLen {
		return types.ErrNameTooLong
	}
	return nil
}

// FetchFrom bulk-reads the whole table from offset 0 of the backing
// file. The file's size is trusted to match DirectoryFileSize exactly.
func (d *Directory) FetchFrom(r io.ReaderAt) error {
	buf := make([]byte, len(d.table)*EntryRecordSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return err
	}

	for i := range d.table {
		rec := buf[i*EntryRecordSize:]
		e := &d.table[i]
		e.InUse = rec[0] != 0
		copy(e.name[:], rec[1:1+entryNameBytes])
		e.Sector = int32(binary.LittleEndian.Uint32(rec[1+entryNameBytes:]))
		e.IsDir = rec[1+entryNameBytes+4] != 0
	}
	return nil
}

// WriteBack bulk-writes the whole table to offset 0 of the backing file.
func (d *Directory) WriteBack(w io.WriterAt) error {
	buf := make([]byte, len(d.table)*EntryRecordSize)
	for i := range d.table {
		rec := buf[i*EntryRecordSize:]
		e := &d.table[i]
		if e.InUse {
			rec[0] = 1
		}
		copy(rec[1:1+entryNameBytes], e.name[:])
		binary.LittleEndian.PutUint32(rec[1+entryNameBytes:], uint32(e.Sector))
		if e.IsDir {
			rec[1+entryNameBytes+4] = 1
		}
	}

	_, err := w.WriteAt(buf, 0)
	return err
}

// FindIndex returns the slot of the in-use entry with this name, or -1.
// First match in slot order wins.
func (d *Directory) FindIndex(name string) int {
	for i := range d.table {
		if d.table[i].InUse && d.table[i].Name() == name {
			return i
		}
	}
	return -1
}

// Find returns the sector of the file header (or subdirectory table)
// named by one component.
func (d *Directory) Find(name string) (int32, error) {
	i := d.FindIndex(name)
	if i == -1 {
		return -1, types.ENOENT
	}
	return d.table[i].Sector, nil
}

// IsDir reports whether the named entry is a subdirectory. Absence is
// reported as ENOENT, never as a false flag.
func (d *Directory) IsDir(name string) (bool, error) {
	i := d.FindIndex(name)
	if i == -1 {
		return false, types.ENOENT
	}
	return d.table[i].IsDir, nil
}

// FindFromRoot resolves an absolute '/'-separated path against this
// table acting as the root of its own subtree. Every recursion step
// loads the next table fresh from disk and discards it on return.
func (d *Directory) FindFromRoot(dev disk.Device, path string) (int32, error) {
	if path == "/" {
		return types.RootDirSector, nil
	}
	if len(path) < 2 || path[0] != '/' {
		return -1, types.EINVAL
	}

	// split off the first component, leading '/' included
	comp, remaining := path, ""
	if idx := strings.IndexByte(path[1:], '/'); idx >= 0 {
		comp, remaining = path[:idx+1], path[idx+1:]
	}

	i := d.FindIndex(comp)
	if i == -1 {
		return -1, types.ENOENT
	}
	entry := &d.table[i]
	if remaining == "" {
		return entry.Sector, nil
	}
	if !entry.IsDir {
		return -1, types.ENOENT
	}

	f, err := NewOpenFile(dev, entry.Sector)
	if err != nil {
		return -1, err
	}
	sub := NewDirectory(types.NumDirEntries)
	if err := sub.FetchFrom(f); err != nil {
		return -1, err
	}
	return sub.FindFromRoot(dev, remaining)
}

// Add occupies the first free slot with a new entry. It fails with
// EEXIST if the name is present and ENOSPC when the table has no free
// slot left.
func (d *Directory) Add(name string, sector int32, isDir bool) error {
	if err := checkName(name); err != nil {
		return err
	}
	if d.FindIndex(name) != -1 {
		return types.EEXIST
	}

	for i := range d.table {
		if !d.table[i].InUse {
			d.table[i].InUse = true
			d.table[i].setName(name)
			d.table[i].Sector = sector
			d.table[i].IsDir = isDir
			return nil
		}
	}
	return types.ENOSPC
}

// Remove marks the named slot free. The stale name, sector and flag
// bytes stay in place until a later Add reuses the slot.
func (d *Directory) Remove(name string) error {
	i := d.FindIndex(name)
	if i == -1 {
		return types.ENOENT
	}
	d.table[i].InUse = false
	return nil
}

// List returns the in-use entry names in slot order.
func (d *Directory) List() []string {
	names := []string{}
	for i := range d.table {
		if d.table[i].InUse {
			names = append(names, d.table[i].Name())
		}
	}
	return names
}

// ListAll returns the full path of every entry below this table,
// depth-first: each directory's path is emitted before its contents.
func (d *Directory) ListAll(dev disk.Device, prefix string) ([]string, error) {
	paths := []string{}
	for i := range d.table {
		e := &d.table[i]
		if !e.InUse {
			continue
		}
		paths = append(paths, prefix+e.Name())

		if e.IsDir {
			f, err := NewOpenFile(dev, e.Sector)
			if err != nil {
				return paths, err
			}
			sub := NewDirectory(types.NumDirEntries)
			if err := sub.FetchFrom(f); err != nil {
				return paths, err
			}
			subPaths, err := sub.ListAll(dev, prefix+e.Name())
			paths = append(paths, subPaths...)
			if err != nil {
				return paths, err
			}
		}
	}
	return paths, nil
}

// Print dumps every in-use entry and its header contents, recursing
// into subdirectories. For debugging.
func (d *Directory) Print(w io.Writer, dev disk.Device, prefix string) {
	fmt.Fprintln(w, "Directory contents:")
	for i := range d.table {
		e := &d.table[i]
		if !e.InUse {
			continue
		}
		fmt.Fprintf(w, "Name: %s%s, Sector: %d\n", prefix, e.Name(), e.Sector)

		hdr := filehdr.New()
		if err := hdr.FetchFrom(dev, e.Sector); err != nil {
			fmt.Fprintf(w, "cannot fetch header: %v\n", err)
			continue
		}
		hdr.Print(w)

		if e.IsDir {
			f, err := NewOpenFile(dev, e.Sector)
			if err != nil {
				continue
			}
			sub := NewDirectory(types.NumDirEntries)
			if err := sub.FetchFrom(f); err != nil {
				continue
			}
			sub.Print(w, dev, prefix+e.Name())
		}
	}
	fmt.Fprintln(w)
}
