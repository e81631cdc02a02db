package hdfs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/DanielJanik/webhdfs/internal/logging"
	"github.com/DanielJanik/webhdfs/pkg/webhdfs"
)

// fileSource translates FileSource operations into client calls.
type fileSource struct {
	client Client
}

// NewFileSource wraps a streaming client in the FileSource contract.
func NewFileSource(c Client) FileSource {
	return &fileSource{client: c}
}

func (s *fileSource) Enumerate(ctx context.Context, path string) ([]File, error) {
	entries, err := s.client.ListDirectory(ctx, path)
	if err != nil {
		return nil, &OpError{Op: "enumerate", Path: path, Err: err}
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		files = append(files, File{
			Path:        JoinPath(path, entry.PathSuffix),
			IsDirectory: entry.Type == webhdfs.TypeDirectory,
		})
	}
	return files, nil
}

func (s *fileSource) Mkdir(ctx context.Context, name, basePath string) error {
	remotePath := JoinPath(basePath, name)
	if err := s.client.Mkdir(ctx, remotePath); err != nil {
		return &OpError{Op: "mkdir", Path: remotePath, Err: err}
	}
	return nil
}

func (s *fileSource) OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.client.OpenReadStream(ctx, path)
}

func (s *fileSource) ReadFile(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	rc, err := s.client.OpenReadStream(ctx, path)
	if err != nil {
		return nil, &OpError{Op: "read", Path: path, Err: err}
	}
	defer rc.Close()

	var reader io.Reader = rc
	if maxBytes > 0 {
		// One extra byte distinguishes "exactly at the limit" from
		// "over it".
		reader = io.LimitReader(rc, maxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &OpError{Op: "read", Path: path, Err: err}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &OpError{
			Op:   "read",
			Path: path,
			Err:  fmt.Errorf("%w: exceeds maximum size of %d bytes", ErrTooLarge, maxBytes),
		}
	}
	return data, nil
}

func (s *fileSource) ReadFileLines(ctx context.Context, path string, maxLines int) ([]byte, error) {
	rc, err := s.client.OpenReadStream(ctx, path)
	if err != nil {
		return nil, &OpError{Op: "readlines", Path: path, Err: err}
	}
	defer rc.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines = append(lines, line)
		if maxLines > 0 && len(lines) >= maxLines {
			// Cap reached: close early and return what was collected.
			// This is success, not an error; remaining input is never
			// read.
			rc.Close()
			return bytes.Join(lines, []byte("\n")), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &OpError{Op: "readlines", Path: path, Err: err}
	}
	return bytes.Join(lines, []byte("\n")), nil
}

func (s *fileSource) WriteFile(ctx context.Context, localPath, remoteDirPath string) (string, error) {
	remotePath := JoinPath(remoteDirPath, Basename(localPath))

	local, err := os.Open(localPath)
	if err != nil {
		return "", &OpError{Op: "write", Path: remotePath, Err: err}
	}
	defer local.Close()

	sink, err := s.client.OpenWriteStream(ctx, remotePath, true)
	if err != nil {
		return "", &OpError{Op: "write", Path: remotePath, Err: err}
	}

	digest := xxhash.New()
	written, copyErr := io.Copy(io.MultiWriter(sink, digest), local)

	// The transport always settles Finish, even after a transfer
	// error. A captured copy error takes precedence over whatever
	// Finish reports.
	location, finishErr := sink.Finish()
	if copyErr != nil {
		return "", &OpError{Op: "write", Path: remotePath, Err: copyErr}
	}
	if finishErr != nil {
		return "", &OpError{Op: "write", Path: remotePath, Err: finishErr}
	}

	logging.Debug("uploaded file",
		zap.String("local", localPath),
		zap.String("remote", remotePath),
		zap.Int64("bytes", written),
		zap.String("xxh64", fmt.Sprintf("%016x", digest.Sum64())))
	return location, nil
}

func (s *fileSource) Delete(ctx context.Context, path string, recursive bool) error {
	if err := s.client.Rmdir(ctx, path, recursive); err != nil {
		return &OpError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

func (s *fileSource) Exists(ctx context.Context, path string) (bool, error) {
	exists, err := s.client.Exists(ctx, path)
	if err != nil {
		return false, &OpError{Op: "exists", Path: path, Err: err}
	}
	return exists, nil
}
