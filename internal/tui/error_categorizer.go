package tui

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/studiowebux/insightcli/internal/client"
)

const (
	hintTimeout = "Request timeout - the service took too long, raise --timeout or check the service"
	hintRefused = "Connection refused - check that the insight service is running and the base URL port is correct"
)

// categorizeError turns a failed extraction into an actionable status line.
// The banner shows the error text itself; this adds the likely cause.
func categorizeError(err error) string {
	if err == nil {
		return ""
	}

	var clientErr *client.Error
	if errors.As(err, &clientErr) {
		switch clientErr.Kind {
		case client.KindHTTP:
			return categorizeStatus(clientErr)
		case client.KindDecode:
			return "Response was not valid JSON - check that the base URL points at the insight service"
		}
		if clientErr.Err != nil {
			err = clientErr.Err
		}
	}

	return categorizeTransportError(err)
}

// categorizeStatus explains a non-2xx response
func categorizeStatus(e *client.Error) string {
	status := e.StatusText()
	switch {
	case e.Status == 404:
		return "Service returned " + status + " - the base URL may be missing a path prefix"
	case e.Status == 413:
		return "Service returned " + status + " - the text is too large for the service"
	case client.IsClientErrorStatus(e.Status):
		return "Service returned " + status + " - the request was rejected"
	case client.IsServerErrorStatus(e.Status):
		return "Service returned " + status + " - the service failed while processing the text"
	}
	return "Service returned " + status
}

// categorizeTransportError unwraps to the root cause and checks known types
func categorizeTransportError(err error) string {
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	switch e := rootErr.(type) {
	case *url.Error:
		if e.Timeout() {
			return hintTimeout
		}
	case *net.OpError:
		return categorizeNetError(e)
	case *net.DNSError:
		return "DNS resolution failed - verify the base URL hostname and network"
	case x509.UnknownAuthorityError:
		return "TLS certificate signed by unknown authority - the service certificate is not trusted"
	case x509.CertificateInvalidError:
		return "TLS certificate is invalid: " + e.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return hintTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return hintRefused
	}

	return categorizeErrorText(err.Error())
}

// categorizeNetError provides specific handling for net.OpError types
func categorizeNetError(e *net.OpError) string {
	if e.Timeout() {
		return hintTimeout
	}

	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return hintRefused
		case syscall.ECONNRESET:
			return "Connection reset by the service - it may have crashed mid-request"
		case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return "Network unreachable - check network connection and firewall settings"
		}
	}

	return categorizeErrorText(e.Error())
}

// categorizeErrorText is the fallback for errors without a useful type
func categorizeErrorText(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "deadline exceeded"),
		strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "timed out"):
		return hintTimeout
	case strings.Contains(errLower, "connection refused"):
		return hintRefused
	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the base URL hostname and network"
	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by the service - it may have crashed mid-request"
	case strings.Contains(errLower, "x509"),
		strings.Contains(errLower, "certificate"),
		strings.Contains(errLower, "tls"):
		return "TLS error - check the service certificate: " + errStr
	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly - the service terminated the connection"
	case strings.Contains(errLower, "unsupported protocol"):
		return "Invalid URL - the base URL must start with http:// or https://"
	}

	return "Request failed: " + errStr
}
