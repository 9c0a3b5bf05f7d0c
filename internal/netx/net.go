// Package netx holds the connectivity checks that gate remote backup and
// restore.
package netx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultProbeAddr and DefaultProbeTimeout describe the reachability check
// used when none is configured: a TCP dial to a public DNS resolver.
const (
	DefaultProbeAddr    = "8.8.8.8:53"
	DefaultProbeTimeout = 3 * time.Second
)

// Prober reports whether the network is usable. A non-nil error means
// offline.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

// TCPProbe dials addr and closes the connection straight away.
type TCPProbe struct {
	Addr    string
	Timeout time.Duration
}

// NewTCPProbe returns a TCPProbe, falling back to the defaults for empty
// values.
func NewTCPProbe(addr string, timeout time.Duration) *TCPProbe {
	if addr == "" {
		addr = DefaultProbeAddr
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &TCPProbe{Addr: addr, Timeout: timeout}
}

func (p *TCPProbe) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// HTTPProbe issues a HEAD request to URL. Any response, whatever its status,
// proves the endpoint is reachable. Useful when the remote store sits behind
// a private endpoint such as a local MinIO.
type HTTPProbe struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func (p *HTTPProbe) Probe(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return err
	}

	client := p.Client
	if client == nil {
		client = &http.Client{}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", p.URL, err)
	}
	return resp.Body.Close()
}
