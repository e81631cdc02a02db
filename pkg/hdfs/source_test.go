package hdfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DanielJanik/webhdfs/pkg/webhdfs"
)

// fakeClient is a scripted Client for exercising the file source.
type fakeClient struct {
	entries []webhdfs.FileStatus
	listErr error

	readStream io.ReadCloser
	readErr    error

	writeStream *fakeWriteStream
	writeErr    error
	writePath   string

	mkdirPath string
	mkdirErr  error

	rmPath      string
	rmRecursive bool
	rmErr       error

	exists    bool
	existsErr error
}

func (f *fakeClient) ListDirectory(ctx context.Context, path string) ([]webhdfs.FileStatus, error) {
	return f.entries, f.listErr
}

func (f *fakeClient) OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return f.readStream, f.readErr
}

func (f *fakeClient) OpenWriteStream(ctx context.Context, path string, overwrite bool) (webhdfs.WriteStream, error) {
	f.writePath = path
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return f.writeStream, nil
}

func (f *fakeClient) Mkdir(ctx context.Context, path string) error {
	f.mkdirPath = path
	return f.mkdirErr
}

func (f *fakeClient) Rmdir(ctx context.Context, path string, recursive bool) error {
	f.rmPath = path
	f.rmRecursive = recursive
	return f.rmErr
}

func (f *fakeClient) Exists(ctx context.Context, path string) (bool, error) {
	return f.exists, f.existsErr
}

// chunkStream hands out one chunk per Read and tracks Close.
type chunkStream struct {
	chunks []string
	err    error // returned after the chunks are exhausted
	closed bool
}

func (c *chunkStream) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}

func (c *chunkStream) Close() error {
	c.closed = true
	return nil
}

func TestEnumerate_MapsEntriesInOrder(t *testing.T) {
	client := &fakeClient{entries: []webhdfs.FileStatus{
		{PathSuffix: "d", Type: webhdfs.TypeDirectory},
		{PathSuffix: "f", Type: webhdfs.TypeFile},
	}}
	source := NewFileSource(client)

	files, err := source.Enumerate(context.Background(), "/p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path != "/p/d" || !files[0].IsDirectory {
		t.Errorf("expected directory /p/d, got %+v", files[0])
	}
	if files[1].Path != "/p/f" || files[1].IsDirectory {
		t.Errorf("expected file /p/f, got %+v", files[1])
	}
}

func TestEnumerate_WrapsError(t *testing.T) {
	client := &fakeClient{listErr: errors.New("boom")}
	source := NewFileSource(client)

	_, err := source.Enumerate(context.Background(), "/p")
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %T: %v", err, err)
	}
	if opErr.Op != "enumerate" || opErr.Path != "/p" {
		t.Errorf("unexpected OpError fields: %+v", opErr)
	}
}

func TestMkdir_JoinsPath(t *testing.T) {
	client := &fakeClient{}
	source := NewFileSource(client)

	if err := source.Mkdir(context.Background(), "sub", "/base"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.mkdirPath != "/base/sub" {
		t.Errorf("expected /base/sub, got %s", client.mkdirPath)
	}
}

func TestMkdir_UnderRoot(t *testing.T) {
	client := &fakeClient{}
	source := NewFileSource(client)

	if err := source.Mkdir(context.Background(), "sub", RootPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.mkdirPath != "/sub" {
		t.Errorf("expected /sub, got %s", client.mkdirPath)
	}
}

func TestReadFile_Unbounded(t *testing.T) {
	client := &fakeClient{readStream: &chunkStream{chunks: []string{"ab", "cd"}}}
	source := NewFileSource(client)

	data, err := source.ReadFile(context.Background(), "/f", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "abcd" {
		t.Errorf("expected abcd, got %q", data)
	}
}

func TestReadFile_ExceedsLimit(t *testing.T) {
	client := &fakeClient{readStream: &chunkStream{chunks: []string{strings.Repeat("x", 20)}}}
	source := NewFileSource(client)

	_, err := source.ReadFile(context.Background(), "/f", 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsTooLarge(err) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "10") {
		t.Errorf("error should name the limit, got %q", err.Error())
	}
}

func TestReadFile_ExactlyAtLimit(t *testing.T) {
	client := &fakeClient{readStream: &chunkStream{chunks: []string{"0123456789"}}}
	source := NewFileSource(client)

	data, err := source.ReadFile(context.Background(), "/f", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "0123456789" {
		t.Errorf("got %q", data)
	}
}

func TestReadFile_StreamError(t *testing.T) {
	client := &fakeClient{readStream: &chunkStream{chunks: []string{"ab"}, err: errors.New("reset")}}
	source := NewFileSource(client)

	_, err := source.ReadFile(context.Background(), "/f", 0)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if IsTooLarge(err) {
		t.Error("stream error should not be reported as a size violation")
	}
}

func TestReadFileLines_CapReached(t *testing.T) {
	stream := &chunkStream{chunks: []string{"l1\nl2\nl3\nl4\nl5\n"}}
	client := &fakeClient{readStream: stream}
	source := NewFileSource(client)

	data, err := source.ReadFileLines(context.Background(), "/f", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "l1\nl2" {
		t.Errorf("expected first 2 lines, got %q", data)
	}
	if !stream.closed {
		t.Error("reader should be closed after the cap is reached")
	}
}

func TestReadFileLines_NaturalClose(t *testing.T) {
	client := &fakeClient{readStream: &chunkStream{chunks: []string{"only\n"}}}
	source := NewFileSource(client)

	data, err := source.ReadFileLines(context.Background(), "/f", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "only" {
		t.Errorf("expected the single line, got %q", data)
	}
}

func TestReadFileLines_ErrorDiscardsLines(t *testing.T) {
	client := &fakeClient{readStream: &chunkStream{chunks: []string{"l1\n"}, err: errors.New("reset")}}
	source := NewFileSource(client)

	data, err := source.ReadFileLines(context.Background(), "/f", 5)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if data != nil {
		t.Errorf("expected no data with the error, got %q", data)
	}
}

// fakeWriteStream captures writes and can fail mid-transfer. Finish
// always settles, mirroring the transport.
type fakeWriteStream struct {
	data      []byte
	failAfter int // bytes accepted before Write fails; 0 = never
	location  string
	finishErr error
	finished  bool
}

func (w *fakeWriteStream) Write(p []byte) (int, error) {
	if w.failAfter > 0 && len(w.data)+len(p) > w.failAfter {
		return 0, errors.New("sink error")
	}
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *fakeWriteStream) Finish() (string, error) {
	w.finished = true
	return w.location, w.finishErr
}

func writeLocalFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWriteFile_Success(t *testing.T) {
	ws := &fakeWriteStream{location: "http://dn1/f.txt"}
	client := &fakeClient{writeStream: ws}
	source := NewFileSource(client)

	local := writeLocalFile(t, "f.txt", "hello")
	location, err := source.WriteFile(context.Background(), local, "/dest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if location != "http://dn1/f.txt" {
		t.Errorf("expected finish location, got %s", location)
	}
	if client.writePath != "/dest/f.txt" {
		t.Errorf("expected /dest/f.txt, got %s", client.writePath)
	}
	if string(ws.data) != "hello" {
		t.Errorf("sink received %q", ws.data)
	}
	if !ws.finished {
		t.Error("Finish was not called")
	}
}

func TestWriteFile_ErrorBeforeFinish(t *testing.T) {
	ws := &fakeWriteStream{failAfter: 1, location: "http://dn1/f.txt"}
	client := &fakeClient{writeStream: ws}
	source := NewFileSource(client)

	local := writeLocalFile(t, "f.txt", "hello world")
	_, err := source.WriteFile(context.Background(), local, "/dest")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %T", err)
	}
	// The transport still settles finish after the error; the captured
	// error wins.
	if !ws.finished {
		t.Error("Finish must still be called after a write error")
	}
}

func TestWriteFile_FinishError(t *testing.T) {
	ws := &fakeWriteStream{finishErr: errors.New("upload rejected")}
	client := &fakeClient{writeStream: ws}
	source := NewFileSource(client)

	local := writeLocalFile(t, "f.txt", "hello")
	_, err := source.WriteFile(context.Background(), local, "/dest")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "upload rejected") {
		t.Errorf("expected finish error, got %v", err)
	}
}

func TestWriteFile_MissingLocalFile(t *testing.T) {
	source := NewFileSource(&fakeClient{})

	_, err := source.WriteFile(context.Background(), "/no/such/file", "/dest")
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %T: %v", err, err)
	}
}

func TestDelete_PassesRecursiveFlag(t *testing.T) {
	client := &fakeClient{}
	source := NewFileSource(client)

	if err := source.Delete(context.Background(), "/p", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.rmRecursive {
		t.Error("recursive should default to false")
	}

	if err := source.Delete(context.Background(), "/p", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.rmRecursive {
		t.Error("recursive flag was not passed through")
	}
}

func TestExists_PassesBooleanThrough(t *testing.T) {
	client := &fakeClient{exists: true}
	source := NewFileSource(client)

	exists, err := source.Exists(context.Background(), "/p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}

	client.exists = false
	exists, err = source.Exists(context.Background(), "/p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}
