package tor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout is the timeout for checking if the Tor proxy is available.
// We use a short timeout here because this is just a connectivity check,
// not an actual request through Tor.
const checkProxyTimeout = 2 * time.Second

// isolationPassword is the fixed SOCKS5 password paired with the per-stream
// username. Tor only cares that the credential pair differs between streams;
// the values themselves carry no secret.
const isolationPassword = "x"

// Client provides Tor network connectivity with circuit isolation.
//
// HTTP clients are created per stream identifier: Tor's IsolateSOCKSAuth
// behavior (enabled by default on the SOCKS port) routes streams carrying
// different SOCKS5 credentials over different circuits, so two tasks with
// distinct stream IDs never share an anonymization path.
//
// Design decision: We derive isolation from SOCKS5 username/password rather
// than the control port's NEWNYM signal because NEWNYM rotates circuits
// globally, while credential isolation gives each concurrent task its own
// circuit without affecting the others.
type Client struct {
	// proxyAddress is the Tor SOCKS5 proxy address in "host:port" format.
	proxyAddress string

	// fetchTimeout bounds full page downloads through Tor.
	fetchTimeout time.Duration

	// probeTimeout bounds lightweight liveness probes. It is deliberately
	// shorter than fetchTimeout so dead hosts are skipped quickly.
	probeTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithFetchTimeout sets the timeout for full page downloads.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.fetchTimeout = timeout
	}
}

// WithProbeTimeout sets the timeout for liveness probes.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.probeTimeout = timeout
	}
}

// NewClient creates a new Tor client for the given SOCKS5 proxy address.
//
// The proxyAddress must be in "host:port" format (e.g., "127.0.0.1:9050").
// This function validates the address format but does not verify that the
// proxy is actually running. Call CheckConnection() to verify.
//
// Design decision: We don't connect to the proxy in the constructor because:
// 1. It allows creating the client even when Tor isn't running yet
// 2. It separates object creation from network operations
// 3. It allows for better testing with mock proxies
func NewClient(proxyAddress string, opts ...Option) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	c := &Client{
		proxyAddress: proxyAddress,
		fetchTimeout: 45 * time.Second,
		probeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	// Port must be a number between 1 and 65535.
	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}
	return portNum >= 1
}

// StreamCredentials returns the SOCKS5 authentication pair for a stream ID.
// Distinct stream IDs yield distinct usernames, which is what drives Tor's
// credential-based circuit isolation.
func StreamCredentials(streamID int) *proxy.Auth {
	return &proxy.Auth{
		User:     fmt.Sprintf("stream%d", streamID),
		Password: isolationPassword,
	}
}

// isolatedDialer creates a SOCKS5 dialer authenticated with the per-stream
// credentials for the given stream ID.
func (c *Client) isolatedDialer(streamID int) (proxy.Dialer, error) {
	dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, StreamCredentials(streamID), proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	return dialer, nil
}

// IsolatedHTTPClient creates an HTTP client bound to the circuit of the given
// stream ID with the full fetch timeout. All requests made through the
// returned client traverse the same isolated circuit.
//
// Design decisions:
//   - TLS verification is disabled because hidden services use self-signed
//     certs; the .onion address itself authenticates the service
//   - Compression is disabled to avoid compression side channels on Tor
//   - Redirect limit is 10 to prevent redirect loops
//   - The idle pool is small because each connection holds a Tor circuit,
//     which is a limited resource
func (c *Client) IsolatedHTTPClient(streamID int) (*http.Client, error) {
	return c.httpClient(streamID, c.fetchTimeout)
}

// ProbeHTTPClient creates an HTTP client bound to the circuit of the given
// stream ID with the short probe timeout. It is intended for HEAD liveness
// probes that should fail fast on dead hosts.
func (c *Client) ProbeHTTPClient(streamID int) (*http.Client, error) {
	return c.httpClient(streamID, c.probeTimeout)
}

func (c *Client) httpClient(streamID int, timeout time.Duration) (*http.Client, error) {
	dialer, err := c.isolatedDialer(streamID)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialContext(ctx, dialer, network, addr)
		},
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Required for .onion services
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// DialContext establishes a TCP connection through the circuit of the given
// stream ID with context support.
func (c *Client) DialContext(ctx context.Context, streamID int, network, address string) (net.Conn, error) {
	dialer, err := c.isolatedDialer(streamID)
	if err != nil {
		return nil, err
	}
	return dialContext(ctx, dialer, network, address)
}

// dialContext wraps a proxy.Dialer with context support.
//
// Design decision: The proxy.Dialer interface doesn't support context
// directly, so we dial in a goroutine. If the context is cancelled, the
// goroutine returns the error but the underlying connection attempt may
// continue briefly. This is a known limitation of the approach.
func dialContext(ctx context.Context, dialer proxy.Dialer, network, address string) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := dialer.Dial(network, address)
		if err == nil && ctx.Err() != nil {
			_ = conn.Close() //nolint:errcheck // Best effort cleanup after cancellation
			return
		}
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
	socks5CmdConnect   = 0x01
	socks5AddrTypeDom  = 0x03

	// socks5TestOnion is a synthetic .onion address used for SOCKS5
	// verification. This is intentionally a non-existent address - we only
	// need to verify the proxy responds to SOCKS5 CONNECT requests, not
	// that the connection succeeds.
	socks5TestOnion = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
)

// CheckConnection verifies that the Tor proxy is running and accessible.
// It returns a ProxyStatus indicating the result of the check.
//
// The check works by performing a SOCKS5 protocol handshake to verify:
// 1. The proxy speaks SOCKS5 protocol
// 2. The proxy accepts connections without authentication
// 3. The proxy can handle .onion domain connections
//
// Security note: This is more robust than just checking HTTP response
// strings, as a fake proxy cannot easily mimic proper SOCKS5 protocol
// behavior.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Step 1: SOCKS5 version negotiation.
	// We offer no authentication (0x00) only; Tor accepts this even when
	// IsolateSOCKSAuth is enabled.
	_, err = conn.Write([]byte{socks5Version, 0x01, socks5AuthNone})
	if err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		// Anything else means it didn't speak SOCKS5 properly.
		return ProxyStatusWrongType
	}

	if authResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	if authResp[1] == socks5AuthNoAccept || authResp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	// Step 2: Verify the proxy can handle connection requests.
	// We send a CONNECT to a test .onion address. The proxy should respond
	// (even with failure for a non-existent address) - this verifies it's
	// actually proxying, not just accepting SOCKS5 handshakes.
	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDom,
		byte(len(socks5TestOnion)),
	}
	connectReq = append(connectReq, []byte(socks5TestOnion)...)
	connectReq = append(connectReq, 0x00, 0x50) // port 80

	if _, err = conn.Write(connectReq); err != nil {
		return ProxyStatusCannotConnect
	}

	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	// Any reply code (success or failure) indicates the proxy processed
	// the SOCKS5 request. Tor returns host-unreachable for the synthetic
	// address, which is fine.
	return ProxyStatusOK
}
