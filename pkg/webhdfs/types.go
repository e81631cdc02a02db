package webhdfs

import (
	"fmt"
	"io"
)

// Entry types reported by LISTSTATUS and GETFILESTATUS.
const (
	TypeDirectory = "DIRECTORY"
	TypeFile      = "FILE"
)

// FileStatus is one entry of a directory listing. PathSuffix is the
// entry name relative to the listed directory.
type FileStatus struct {
	PathSuffix  string `json:"pathSuffix"`
	Type        string `json:"type"`
	Length      int64  `json:"length"`
	Owner       string `json:"owner"`
	Group       string `json:"group"`
	Permission  string `json:"permission"`
	ModTimeMs   int64  `json:"modificationTime"`
	AccessTime  int64  `json:"accessTime"`
	BlockSize   int64  `json:"blockSize"`
	Replication int    `json:"replication"`
}

// WriteStream is a byte sink for a single remote file. Writes block
// while the transport's buffer is full. Finish must be called exactly
// once; it completes the upload and returns the location of the
// written file. Finish reports any transfer error, including errors
// that occurred after writes were accepted.
type WriteStream interface {
	io.Writer
	Finish() (string, error)
}

// Credentials holds basic-auth credentials for the gateway.
type Credentials struct {
	User string
	Pass string
}

// RemoteError is a RemoteException returned by the service.
type RemoteError struct {
	StatusCode int
	Exception  string `json:"exception"`
	JavaClass  string `json:"javaClassName"`
	Message    string `json:"message"`
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Exception != "" {
		return e.Exception
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// IsNotFound reports whether the error is a FileNotFoundException or a
// bare 404.
func IsNotFound(err error) bool {
	re, ok := err.(*RemoteError)
	if !ok {
		return false
	}
	return re.StatusCode == 404 || re.Exception == "FileNotFoundException"
}
