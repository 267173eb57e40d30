// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error handling for HTTP requests.
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Reasons returned by Describe.
const (
	ReasonTimeout = "connection timed out"
	ReasonDNS     = "cannot resolve server address"
	ReasonRefused = "connection refused"
	ReasonTLS     = "secure connection failed"
	ReasonGeneric = "cannot reach the service"
)

// Describe converts a transport error into a short human-readable reason.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case isTimeoutError(err):
		return ReasonTimeout
	case isDNSError(err):
		return ReasonDNS
	case isConnectionRefusedError(err):
		return ReasonRefused
	case isSSLError(err):
		return ReasonTLS
	}
	return ReasonGeneric
}

// ShowNetworkError displays troubleshooting hints for a transport failure.
// host is the API host the request was sent to.
func ShowNetworkError(err error, host string) {
	switch Describe(err) {
	case ReasonTimeout:
		pterm.Warning.Printfln("Connection to %s timed out", host)
		pterm.Println("The server took too long to respond. This could mean:")
		pterm.Println("  • Slow internet connection")
		pterm.Println("  • Server is under heavy load")
	case ReasonDNS:
		pterm.Warning.Printfln("Cannot resolve %s", host)
		pterm.Println("Please check your internet connection and DNS settings.")
	case ReasonRefused:
		pterm.Warning.Printfln("Connection to %s refused", host)
		pterm.Println("The service is not accepting connections. It may be down,")
		pterm.Println("or the configured api_url may point to the wrong port.")
	case ReasonTLS:
		pterm.Warning.Printfln("Secure connection to %s failed", host)
		pterm.Println("Check your system clock and any proxy intercepting HTTPS.")
	default:
		pterm.Warning.Printfln("Cannot connect to %s", host)
		pterm.Println("Please check your internet connection and the api_url setting.")
	}
	pterm.Println()
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
