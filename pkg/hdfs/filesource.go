package hdfs

import (
	"context"
	"io"

	"github.com/DanielJanik/webhdfs/pkg/webhdfs"
)

// FileSource is the capability set consumed by the host application.
// Every method returns exactly once; failures are *OpError values.
//
// Concurrent calls on one FileSource are allowed; the layer adds no
// locking of its own and relies on the underlying client for safety.
type FileSource interface {
	// Enumerate lists a remote directory, preserving listing order.
	Enumerate(ctx context.Context, path string) ([]File, error)

	// Mkdir creates the directory name under basePath.
	Mkdir(ctx context.Context, name, basePath string) error

	// OpenReadStream opens an unbounded read stream. The caller owns
	// and must close the stream.
	OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadFile reads a remote file into memory. A positive maxBytes
	// caps the read; exceeding it fails with ErrTooLarge. maxBytes <= 0
	// means unbounded.
	ReadFile(ctx context.Context, path string, maxBytes int64) ([]byte, error)

	// ReadFileLines reads up to maxLines lines, joined by "\n".
	// Reaching the cap is success: the reader closes early and the
	// remaining input is never read.
	ReadFileLines(ctx context.Context, path string, maxLines int) ([]byte, error)

	// WriteFile uploads the local file at localPath into the remote
	// directory remoteDirPath, keeping its basename. Returns the
	// location reported by the remote side.
	WriteFile(ctx context.Context, localPath, remoteDirPath string) (string, error)

	// Delete removes a remote file or directory.
	Delete(ctx context.Context, path string, recursive bool) error

	// Exists reports whether a remote path exists. Absence is a
	// boolean, not an error.
	Exists(ctx context.Context, path string) (bool, error)
}

// Client is the minimal streaming capability set the file source
// drives. *webhdfs.Client satisfies it; tests substitute fakes.
type Client interface {
	ListDirectory(ctx context.Context, path string) ([]webhdfs.FileStatus, error)
	OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error)
	OpenWriteStream(ctx context.Context, path string, overwrite bool) (webhdfs.WriteStream, error)
	Mkdir(ctx context.Context, path string) error
	Rmdir(ctx context.Context, path string, recursive bool) error
	Exists(ctx context.Context, path string) (bool, error)
}
