package types

import "errors"

var (
	EEXIST    error = errors.New("file exists")
	EINVAL    error = errors.New("invalid argument")
	EIO       error = errors.New("input/output error")
	ENOENT    error = errors.New("no such file or directory")
	ENOSPC    error = errors.New("no space left on device")
	ENOTDIR   error = errors.New("not a directory")
	EISDIR    error = errors.New("is a directory")
	ENOTEMPTY error = errors.New("directory not empty")
	EBADF     error = errors.New("bad file descriptor")
	ENFILE    error = errors.New("open file table full")
)

var (
	ErrNameTooLong = errors.New("file name too long")
)
