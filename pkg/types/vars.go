package types

import "time"

var (
	FS_VERSION string
	GO_VERSION string
	COMMIT_ID  string
	BUILD_TIME string
)

const (
	// disk geometry
	SectorSize = 128
	NumSectors = 1024

	// well-known sectors, locatable without any lookup
	FreeMapSector = 0
	RootDirSector = 1

	// FreeMapFileSize is the serialized size of the free-sector bitmap.
	FreeMapFileSize = NumSectors / 8

	// every directory table, root included, holds exactly this many slots
	NumDirEntries = 64

	// FileNameMaxLen counts the significant bytes of one path component,
	// its leading '/' included. Longer names are rejected, not truncated.
	FileNameMaxLen = 9

	// open file table: slots 0..MaxOpenFiles-1, slot 0 reserved
	MaxOpenFiles = 20

	// default value
	DEFAULT_LOG_MAX_AGE       = 72 * time.Hour
	DEFAULT_LOG_ROTATION_TIME = 1 * time.Hour
	DEFAULT_LEVEL             = "info"
	DEFAULT_DISK_PATH         = "DISK"
)
