package hdfs

import (
	"net/http"
	"strings"
	"time"

	"github.com/DanielJanik/webhdfs/pkg/webhdfs"
)

// Credentials holds basic-auth credentials for the remote gateway.
type Credentials struct {
	User string
	Pass string
}

// Options are the connection parameters for Build. Host may carry an
// embedded port ("namenode:50070" or "namenode,50070"); normalization
// splits it out and overwrites Port.
type Options struct {
	Host     string
	Port     int
	Protocol string // "http" or "https"
	User     string
	Path     string // REST prefix, e.g. "/gateway/default/webhdfs/v1"
	Auth     *Credentials
	Timeout  time.Duration

	// Transport overrides the HTTP transport. When Auth is set and no
	// override is given, a gateway transport with certificate
	// validation disabled is used.
	Transport http.RoundTripper
}

// Build constructs a configured client from options and wraps it in a
// FileSource. No validation happens here; malformed host or port
// values surface on first use.
func Build(opts Options) FileSource {
	return NewFileSource(NewClient(opts))
}

// NewClient constructs the streaming client Build wraps.
func NewClient(opts Options) *webhdfs.Client {
	opts.Host, opts.Port = normalizeHost(opts.Host, opts.Port)

	transport := opts.Transport
	if transport == nil && opts.Auth != nil {
		transport = webhdfs.InsecureTransport()
	}

	var auth *webhdfs.Credentials
	if opts.Auth != nil {
		auth = &webhdfs.Credentials{User: opts.Auth.User, Pass: opts.Auth.Pass}
	}

	return webhdfs.New(webhdfs.Config{
		Host:      opts.Host,
		Port:      opts.Port,
		Protocol:  opts.Protocol,
		User:      opts.User,
		BasePath:  opts.Path,
		Auth:      auth,
		Timeout:   opts.Timeout,
		Transport: transport,
	})
}

// normalizeHost splits an embedded port out of host. The comma
// delimiter is checked before the colon; each hit overwrites port.
// The precedence is fixed: a host carrying both delimiters resolves
// comma-first.
func normalizeHost(host string, port int) (string, int) {
	if host == "" {
		return host, port
	}
	if h, rest, ok := strings.Cut(host, ","); ok {
		host = h
		port = leadingInt(rest, port)
	}
	if h, rest, ok := strings.Cut(host, ":"); ok {
		host = h
		port = leadingInt(rest, port)
	}
	return host, port
}

// leadingInt parses the leading digits of s, ignoring trailing junk.
// Malformed values keep the previous port and surface on first use.
func leadingInt(s string, fallback int) int {
	n := 0
	i := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if i == 0 {
		return fallback
	}
	return n
}
