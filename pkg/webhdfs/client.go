// Package webhdfs implements a streaming client for the WebHDFS REST
// protocol, optionally via a Knox-style gateway.
package webhdfs

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DanielJanik/webhdfs/internal/logging"
	"github.com/DanielJanik/webhdfs/internal/metrics"
)

// Config holds client configuration.
type Config struct {
	Host     string
	Port     int
	Protocol string // "http" or "https", default "http"
	User     string // value of the user.name query parameter
	BasePath string // REST prefix, default "/webhdfs/v1"
	Auth     *Credentials
	Timeout  time.Duration

	// Transport overrides the HTTP transport. Authenticated gateway
	// sessions pass one with certificate validation disabled.
	Transport http.RoundTripper
}

// Client issues WebHDFS operations over HTTP. It is safe for
// concurrent use; requests on one Client share a connection pool.
type Client struct {
	baseURL    string
	user       string
	auth       *Credentials
	httpClient *http.Client

	mu      sync.RWMutex
	session *Session
}

// New creates a client bound to the given configuration.
func New(cfg Config) *Client {
	if cfg.Protocol == "" {
		cfg.Protocol = "http"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/webhdfs/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	return &Client{
		baseURL: fmt.Sprintf("%s://%s:%d%s", cfg.Protocol, cfg.Host, cfg.Port,
			strings.TrimSuffix(cfg.BasePath, "/")),
		user: cfg.User,
		auth: cfg.Auth,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// InsecureTransport returns an HTTP transport with TLS certificate
// validation disabled. The gateway serves a self-signed certificate,
// so authenticated sessions trust it without verification.
func InsecureTransport() http.RoundTripper {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
	}
}

// opURL builds the request URL for an operation on path.
func (c *Client) opURL(path, op string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("op", op)
	if c.user != "" {
		params.Set("user.name", c.user)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + (&url.URL{Path: path}).EscapedPath() + "?" + params.Encode()
}

// applyAuth attaches basic-auth or session-token credentials.
func (c *Client) applyAuth(req *http.Request) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
		return
	}
	if c.auth != nil {
		req.SetBasicAuth(c.auth.User, c.auth.Pass)
	}
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	c.applyAuth(req)
	return c.httpClient.Do(req)
}

// decodeError reads a RemoteException body off resp and returns it as
// a *RemoteError. The response body is consumed.
func decodeError(resp *http.Response) error {
	re := &RemoteError{StatusCode: resp.StatusCode}
	var wrapper struct {
		RemoteException *RemoteError `json:"RemoteException"`
	}
	if json.NewDecoder(resp.Body).Decode(&wrapper) == nil && wrapper.RemoteException != nil {
		wrapper.RemoteException.StatusCode = resp.StatusCode
		return wrapper.RemoteException
	}
	return re
}

// ListDirectory lists the entries of a remote directory in the order
// the service reports them.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]FileStatus, error) {
	start := time.Now()
	resp, err := c.do(ctx, "GET", c.opURL(path, "LISTSTATUS", nil), nil)
	if err != nil {
		metrics.RecordOperation("list", "error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordOperation("list", "error")
		return nil, decodeError(resp)
	}

	var result struct {
		FileStatuses struct {
			FileStatus []FileStatus `json:"FileStatus"`
		} `json:"FileStatuses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.RecordOperation("list", "error")
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	metrics.RecordOperation("list", "ok")
	metrics.ObserveDuration("list", time.Since(start))
	logging.Debug("listed directory",
		zap.String("path", path),
		zap.Int("entries", len(result.FileStatuses.FileStatus)))
	return result.FileStatuses.FileStatus, nil
}

// Mkdir creates a remote directory, including missing parents.
func (c *Client) Mkdir(ctx context.Context, path string) error {
	start := time.Now()
	resp, err := c.do(ctx, "PUT", c.opURL(path, "MKDIRS", nil), nil)
	if err != nil {
		metrics.RecordOperation("mkdir", "error")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordOperation("mkdir", "error")
		return decodeError(resp)
	}

	var result struct {
		Boolean bool `json:"boolean"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.RecordOperation("mkdir", "error")
		return fmt.Errorf("parse mkdir response: %w", err)
	}
	if !result.Boolean {
		metrics.RecordOperation("mkdir", "error")
		return fmt.Errorf("mkdir %s: not created", path)
	}

	metrics.RecordOperation("mkdir", "ok")
	metrics.ObserveDuration("mkdir", time.Since(start))
	return nil
}

// Rmdir removes a remote file or directory.
func (c *Client) Rmdir(ctx context.Context, path string, recursive bool) error {
	start := time.Now()
	params := url.Values{"recursive": {strconv.FormatBool(recursive)}}
	resp, err := c.do(ctx, "DELETE", c.opURL(path, "DELETE", params), nil)
	if err != nil {
		metrics.RecordOperation("delete", "error")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordOperation("delete", "error")
		return decodeError(resp)
	}

	var result struct {
		Boolean bool `json:"boolean"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.RecordOperation("delete", "error")
		return fmt.Errorf("parse delete response: %w", err)
	}
	if !result.Boolean {
		metrics.RecordOperation("delete", "error")
		return fmt.Errorf("delete %s: not deleted", path)
	}

	metrics.RecordOperation("delete", "ok")
	metrics.ObserveDuration("delete", time.Since(start))
	return nil
}

// Exists reports whether a remote path exists. Absence is reported via
// the boolean, not as an error.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	start := time.Now()
	resp, err := c.do(ctx, "GET", c.opURL(path, "GETFILESTATUS", nil), nil)
	if err != nil {
		metrics.RecordOperation("exists", "error")
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		metrics.RecordOperation("exists", "ok")
		metrics.ObserveDuration("exists", time.Since(start))
		return true, nil
	case http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		metrics.RecordOperation("exists", "ok")
		metrics.ObserveDuration("exists", time.Since(start))
		return false, nil
	default:
		metrics.RecordOperation("exists", "error")
		return false, decodeError(resp)
	}
}

// OpenReadStream opens a remote file for reading. The caller owns the
// returned stream and must close it. Redirects to the datanode are
// followed transparently.
func (c *Client) OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, "GET", c.opURL(path, "OPEN", nil), nil)
	if err != nil {
		metrics.RecordOperation("read", "error")
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		defer resp.Body.Close()
		metrics.RecordOperation("read", "error")
		return nil, decodeError(resp)
	}

	metrics.RecordOperation("read", "ok")
	logging.Debug("opened read stream", zap.String("path", path))
	return &countingReadCloser{rc: resp.Body}, nil
}

// countingReadCloser feeds the download byte counter as data arrives.
type countingReadCloser struct {
	rc io.ReadCloser
}

func (r *countingReadCloser) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if n > 0 {
		metrics.AddBytesDownloaded(int64(n))
	}
	return n, err
}

func (r *countingReadCloser) Close() error {
	return r.rc.Close()
}

// OpenWriteStream creates a remote file and returns a sink for its
// content. The CREATE handshake is two-step: the name node answers
// with a redirect and the body streams to the returned location.
// Writes block while the transport consumes earlier data. The stream's
// Finish always completes, even after a transfer error; the error is
// reported by Finish.
func (c *Client) OpenWriteStream(ctx context.Context, path string, overwrite bool) (WriteStream, error) {
	params := url.Values{"overwrite": {strconv.FormatBool(overwrite)}}

	// Step 1: handshake with the name node, no body. Redirects must
	// not be followed here or the client would upload an empty file.
	handshake := *c.httpClient
	handshake.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	req, err := http.NewRequestWithContext(ctx, "PUT", c.opURL(path, "CREATE", params), nil)
	if err != nil {
		return nil, err
	}
	c.applyAuth(req)

	resp, err := handshake.Do(req)
	if err != nil {
		metrics.RecordOperation("write", "error")
		return nil, err
	}
	defer resp.Body.Close()

	location := resp.Header.Get("Location")
	switch {
	case resp.StatusCode == http.StatusTemporaryRedirect && location != "":
	case resp.StatusCode == http.StatusCreated:
		// Gateway deployments answer in one step.
		location = req.URL.String()
	default:
		metrics.RecordOperation("write", "error")
		return nil, decodeError(resp)
	}

	// Step 2: stream the body to the data node.
	pr, pw := io.Pipe()
	ws := &writeStream{pw: pw, done: make(chan struct{})}

	upload, err := http.NewRequestWithContext(ctx, "PUT", location, pr)
	if err != nil {
		pw.Close()
		return nil, err
	}
	upload.Header.Set("Content-Type", "application/octet-stream")
	c.applyAuth(upload)

	go func() {
		defer close(ws.done)
		resp, err := c.httpClient.Do(upload)
		if err != nil {
			ws.err = err
			pr.CloseWithError(err)
			metrics.RecordOperation("write", "error")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			ws.err = decodeError(resp)
			pr.CloseWithError(ws.err)
			metrics.RecordOperation("write", "error")
			return
		}

		ws.location = resp.Header.Get("Location")
		if ws.location == "" {
			ws.location = location
		}
		metrics.RecordOperation("write", "ok")
	}()

	logging.Debug("opened write stream",
		zap.String("path", path),
		zap.String("location", location))
	return ws, nil
}

type writeStream struct {
	pw       *io.PipeWriter
	done     chan struct{}
	location string
	err      error
}

func (w *writeStream) Write(p []byte) (int, error) {
	n, err := w.pw.Write(p)
	if n > 0 {
		metrics.AddBytesUploaded(int64(n))
	}
	return n, err
}

// Finish closes the sink and waits for the transport to settle. It
// returns the location of the written file, or the first error seen
// during the transfer.
func (w *writeStream) Finish() (string, error) {
	w.pw.Close()
	<-w.done
	return w.location, w.err
}
