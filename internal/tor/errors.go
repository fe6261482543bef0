package tor

import "errors"

// Tor connectivity errors.
//
// Design decision: We define specific error types rather than wrapping all
// errors generically. This allows callers to handle different failure modes
// appropriately (e.g., retry on timeout, but fail fast on wrong proxy type).
var (
	// ErrProxyNotTor is returned when the configured proxy address responds
	// but is not a Tor SOCKS5 proxy.
	ErrProxyNotTor = errors.New("proxy is not a Tor SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when we cannot establish a TCP
	// connection to the proxy address. This usually means Tor is not running
	// or the address is incorrect.
	ErrProxyCannotConnect = errors.New("cannot connect to Tor proxy")

	// ErrProxyTimeout is returned when the connection to the proxy times out.
	ErrProxyTimeout = errors.New("timeout connecting to Tor proxy")

	// ErrInvalidProxyAddress is returned when the proxy address format is
	// invalid. Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// ProxyStatus represents the result of checking the Tor proxy connection.
type ProxyStatus int

const (
	// ProxyStatusOK indicates the proxy is a working Tor SOCKS5 proxy.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates the proxy responded but is not a Tor
	// SOCKS5 proxy.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates we could not establish a connection.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout indicates the connection attempt timed out.
	ProxyStatusTimeout
)

// String returns a human-readable description of the proxy status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not Tor)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the appropriate error for this status, or nil if OK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotTor
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
