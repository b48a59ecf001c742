// Package fs implements the namespace and space-allocation logic of
// the volume: a tree of fixed-capacity directory tables stored as
// ordinary files over a flat, sector-addressed disk.
//
// The free-sector map and the root directory are themselves ordinary
// files whose headers live at well-known sectors, and both are kept
// open for the life of the file system. Operations that mutate the
// namespace work on in-memory copies and flush only once the whole
// operation has succeeded; a crash between the flush writes can leave
// the disk inconsistent, which is a stated limitation.
//
// There is no internal locking: callers serialize access themselves.
package fs

import (
	"fmt"
	"io"
	"strings"

	"github.com/SUSean/2015osteam20MP4/pkg/bitmap"
	"github.com/SUSean/2015osteam20MP4/pkg/common"
	"github.com/SUSean/2015osteam20MP4/pkg/disk"
	"github.com/SUSean/2015osteam20MP4/pkg/filehdr"
	"github.com/SUSean/2015osteam20MP4/pkg/logg"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

type FileSystem struct {
	dev disk.Device

	// held open for the life of the file system
	freeMapFile *OpenFile
	rootDirFile *OpenFile

	// bounded descriptor table; slot 0 is reserved
	openFiles map[int]*OpenFile

	clock common.Clock

	opsDurationsHistogram *prometheus.HistogramVec
	readSizeHistogram     prometheus.Histogram
	writtenSizeHistogram  prometheus.Histogram
	handlersGauge         prometheus.GaugeFunc
}

// NewFileSystem mounts the volume on dev. With format true the two
// well-known files are built from scratch; otherwise the on-disk state
// is attached to and trusted as-is. registerer may be nil.
func NewFileSystem(dev disk.Device, format bool, registerer prometheus.Registerer) (*FileSystem, error) {
	fs := &FileSystem{
		dev:       dev,
		openFiles: make(map[int]*OpenFile),
		clock:     common.NewDefaultClock(),
	}
	fs.initMetrics(registerer)

	if format {
		if err := fs.format(); err != nil {
			return nil, err
		}
		return fs, nil
	}

	var err error
	fs.freeMapFile, err = NewOpenFile(dev, types.FreeMapSector)
	if err != nil {
		return nil, err
	}
	fs.rootDirFile, err = NewOpenFile(dev, types.RootDirSector)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// format builds an empty volume: the free map and root directory get
// their well-known header sectors, data space for their own contents,
// and an initial flush. Failure here is fatal since nothing can work
// without the two structures.
func (fs *FileSystem) format() error {
	logg.Dlog.Info("formatting the file system")

	freeMap := bitmap.NewFreeMap()
	directory := NewDirectory(types.NumDirEntries)
	mapHdr := filehdr.New()
	dirHdr := filehdr.New()

	freeMap.Reserve(types.FreeMapSector)
	freeMap.Reserve(types.RootDirSector)

	if err := mapHdr.Allocate(freeMap, types.FreeMapFileSize); err != nil {
		return fmt.Errorf("allocate free map file: %w", err)
	}
	if err := dirHdr.Allocate(freeMap, DirectoryFileSize()); err != nil {
		return fmt.Errorf("allocate root directory file: %w", err)
	}

	// headers must reach the disk before the files can be opened
	if err := mapHdr.WriteBack(fs.dev, types.FreeMapSector); err != nil {
		return err
	}
	if err := dirHdr.WriteBack(fs.dev, types.RootDirSector); err != nil {
		return err
	}

	var err error
	fs.freeMapFile, err = NewOpenFile(fs.dev, types.FreeMapSector)
	if err != nil {
		return err
	}
	fs.rootDirFile, err = NewOpenFile(fs.dev, types.RootDirSector)
	if err != nil {
		return err
	}

	if err := freeMap.Save(fs.freeMapFile); err != nil {
		return err
	}
	return directory.WriteBack(fs.rootDirFile)
}

// Destroy releases the two permanently-open files. Descriptors still in
// the open table are the caller's responsibility to close first.
func (fs *FileSystem) Destroy() {
	logg.Dlog.Infof("destroy")
	fs.freeMapFile = nil
	fs.rootDirFile = nil
}

func (fs *FileSystem) loadRoot() (*Directory, error) {
	root := NewDirectory(types.NumDirEntries)
	if err := root.FetchFrom(fs.rootDirFile); err != nil {
		return nil, err
	}
	return root, nil
}

func (fs *FileSystem) loadFreeMap() (*bitmap.Bitmap, error) {
	freeMap := bitmap.NewFreeMap()
	if err := freeMap.Load(fs.freeMapFile); err != nil {
		return nil, err
	}
	return freeMap, nil
}

func (fs *FileSystem) loadDirectoryAt(sector int32) (*Directory, *OpenFile, error) {
	f, err := NewOpenFile(fs.dev, sector)
	if err != nil {
		return nil, nil, err
	}
	dir := NewDirectory(types.NumDirEntries)
	if err := dir.FetchFrom(f); err != nil {
		return nil, nil, err
	}
	return dir, f, nil
}

// splitPath splits an absolute path into the parent directory's path
// and the final component (leading '/' included). Over-long leaf names
// are rejected here rather than truncated.
func splitPath(path string) (dirPath, name string, err error) {
	if len(path) < 2 || path[0] != '/' || strings.HasSuffix(path, "/") {
		return "", "", types.EINVAL
	}

	i := strings.LastIndexByte(path, '/')
	dirPath, name = path[:i], path[i:]
	if dirPath == "" {
		dirPath = "/"
	}
	if err := checkName(name); err != nil {
		return "", "", err
	}
	return dirPath, name, nil
}

// Create makes a new file or subdirectory at path with the given
// initial size (a subdirectory's size is forced to one table). Every
// step mutates in-memory copies only; the header, the parent directory
// and the bitmap are flushed, in that order, once everything has
// succeeded, so any failure leaves the disk untouched.
func (fs *FileSystem) Create(path string, initialSize int32, isDir bool) error {
	begin := fs.clock.Now()
	defer fs.observeOP("create", begin)
	logg.Dlog.Debugf("create %s size:%d dir:%v", path, initialSize, isDir)

	dirPath, name, err := splitPath(path)
	if err != nil {
		return err
	}
	if initialSize < 0 {
		return types.EINVAL
	}

	root, err := fs.loadRoot()
	if err != nil {
		return err
	}
	parentSector, err := root.FindFromRoot(fs.dev, dirPath)
	if err != nil {
		return err
	}

	parent, parentFile, err := fs.loadDirectoryAt(parentSector)
	if err != nil {
		return err
	}
	if parent.FindIndex(name) != -1 {
		return types.EEXIST
	}

	freeMap, err := fs.loadFreeMap()
	if err != nil {
		return err
	}
	sector, ok := freeMap.FindAndReserve() // header sector for the new file
	if !ok {
		return types.ENOSPC
	}

	// a full table abandons the reserved sector in memory only
	if err := parent.Add(name, sector, isDir); err != nil {
		return err
	}

	if isDir {
		initialSize = DirectoryFileSize()
	}
	hdr := filehdr.New()
	if err := hdr.Allocate(freeMap, initialSize); err != nil {
		return err
	}

	// everything worked; flush all changes back to disk
	if err := hdr.WriteBack(fs.dev, sector); err != nil {
		return err
	}
	if err := parent.WriteBack(parentFile); err != nil {
		return err
	}
	if err := freeMap.Save(fs.freeMapFile); err != nil {
		return err
	}

	if isDir {
		f, err := NewOpenFile(fs.dev, sector)
		if err != nil {
			return err
		}
		if err := NewDirectory(types.NumDirEntries).WriteBack(f); err != nil {
			return err
		}
	}
	return nil
}

// Open resolves path and returns a handle bound to its header sector.
func (fs *FileSystem) Open(path string) (*OpenFile, error) {
	begin := fs.clock.Now()
	defer fs.observeOP("open", begin)

	root, err := fs.loadRoot()
	if err != nil {
		return nil, err
	}
	sector, err := root.FindFromRoot(fs.dev, path)
	if err != nil {
		return nil, err
	}
	return NewOpenFile(fs.dev, sector)
}

// OpenDescriptor opens path and binds the handle to the first free slot
// of the bounded descriptor table.
func (fs *FileSystem) OpenDescriptor(path string) (int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return -1, err
	}

	for id := 1; id < types.MaxOpenFiles; id++ {
		if _, ok := fs.openFiles[id]; !ok {
			fs.openFiles[id] = f
			return id, nil
		}
	}
	logg.Dlog.Warnf("open %s: descriptor table full", path)
	return -1, types.ENFILE
}

func (fs *FileSystem) handle(id int) (*OpenFile, error) {
	if id < 1 || id >= types.MaxOpenFiles {
		return nil, types.EBADF
	}
	f, ok := fs.openFiles[id]
	if !ok {
		return nil, types.EBADF
	}
	return f, nil
}

// Read reads from the descriptor's current seek position.
func (fs *FileSystem) Read(id int, p []byte) (int, error) {
	f, err := fs.handle(id)
	if err != nil {
		return -1, err
	}
	n, err := f.Read(p)
	if err == nil {
		fs.readSizeHistogram.Observe(float64(n))
	}
	return n, err
}

// Write writes at the descriptor's current seek position.
func (fs *FileSystem) Write(id int, p []byte) (int, error) {
	f, err := fs.handle(id)
	if err != nil {
		return -1, err
	}
	n, err := f.Write(p)
	if err == nil {
		fs.writtenSizeHistogram.Observe(float64(n))
	}
	return n, err
}

// Close releases the descriptor and frees its slot.
func (fs *FileSystem) Close(id int) error {
	if _, err := fs.handle(id); err != nil {
		return err
	}
	delete(fs.openFiles, id)
	return nil
}

// Remove deletes the file or subdirectory at path. A subdirectory needs
// recursive set; its contents are then removed depth-first before the
// directory itself. The subtree walk is not transactional: an error
// partway leaves already-removed entries removed.
func (fs *FileSystem) Remove(path string, recursive bool) error {
	begin := fs.clock.Now()
	defer fs.observeOP("remove", begin)
	logg.Dlog.Debugf("remove %s recursive:%v", path, recursive)

	dirPath, name, err := splitPath(path)
	if err != nil {
		return err
	}

	root, err := fs.loadRoot()
	if err != nil {
		return err
	}
	parentSector, err := root.FindFromRoot(fs.dev, dirPath)
	if err != nil {
		return err
	}

	parent, parentFile, err := fs.loadDirectoryAt(parentSector)
	if err != nil {
		return err
	}
	i := parent.FindIndex(name)
	if i == -1 {
		return types.ENOENT
	}
	sector, isDir := parent.table[i].Sector, parent.table[i].IsDir

	if isDir && !recursive {
		return types.EISDIR
	}
	if isDir {
		target, _, err := fs.loadDirectoryAt(sector)
		if err != nil {
			return err
		}
		for _, child := range target.List() {
			if err := fs.Remove(path+child, true); err != nil {
				return err
			}
		}
	}

	hdr := filehdr.New()
	if err := hdr.FetchFrom(fs.dev, sector); err != nil {
		return err
	}
	freeMap, err := fs.loadFreeMap()
	if err != nil {
		return err
	}

	hdr.Deallocate(freeMap) // data sectors of the whole chain

	// then the header sectors themselves, link by link
	for cur, curSector := hdr, sector; ; {
		freeMap.Clear(curSector)
		next, ok := cur.NextHeaderSector()
		if !ok {
			break
		}
		curSector = next
		cur = cur.Next()
	}

	if err := parent.Remove(name); err != nil {
		return err
	}

	if err := freeMap.Save(fs.freeMapFile); err != nil {
		return err
	}
	return parent.WriteBack(parentFile)
}

// List resolves path to a directory and returns either its direct entry
// names or, with recursive set, the full paths of the whole subtree.
func (fs *FileSystem) List(path string, recursive bool) ([]string, error) {
	begin := fs.clock.Now()
	defer fs.observeOP("list", begin)

	root, err := fs.loadRoot()
	if err != nil {
		return nil, err
	}
	sector, err := root.FindFromRoot(fs.dev, path)
	if err != nil {
		return nil, err
	}

	dir, _, err := fs.loadDirectoryAt(sector)
	if err != nil {
		return nil, err
	}
	if recursive {
		prefix := path
		if prefix == "/" {
			prefix = ""
		}
		return dir.ListAll(fs.dev, prefix)
	}
	return dir.List(), nil
}

// Print dumps the free map and root directory headers, the free map,
// and every in-use entry of the tree. No mutation.
func (fs *FileSystem) Print(w io.Writer) error {
	bitHdr := filehdr.New()
	if err := bitHdr.FetchFrom(fs.dev, types.FreeMapSector); err != nil {
		return err
	}
	fmt.Fprintln(w, "Bit map file header:")
	bitHdr.Print(w)

	dirHdr := filehdr.New()
	if err := dirHdr.FetchFrom(fs.dev, types.RootDirSector); err != nil {
		return err
	}
	fmt.Fprintln(w, "Directory file header:")
	dirHdr.Print(w)

	freeMap, err := fs.loadFreeMap()
	if err != nil {
		return err
	}
	freeMap.Print(w)

	root, err := fs.loadRoot()
	if err != nil {
		return err
	}
	root.Print(w, fs.dev, "")
	return nil
}

// FreeSectors is the number of unallocated sectors on the volume.
func (fs *FileSystem) FreeSectors() (int, error) {
	freeMap, err := fs.loadFreeMap()
	if err != nil {
		return 0, err
	}
	return freeMap.FreeCount(), nil
}
