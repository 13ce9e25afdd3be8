// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

var (
	// ErrNoConnectivity reports that no network path to a server exists.
	// Callers treat it as fatal for the whole run.
	ErrNoConnectivity = errors.New("could not connect to the internet")

	// ErrInterrupted reports that the user interrupted the run.
	ErrInterrupted = errors.New("interrupted")
)

// ErrorKind groups transport errors by how callers must react to them.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInterrupted
	KindTimeout
	KindNoConnectivity
	KindReset
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInterrupted:
		return "interrupted"
	case KindTimeout:
		return "timeout"
	case KindNoConnectivity:
		return "no-connectivity"
	case KindReset:
		return "reset"
	default:
		return "other"
	}
}

// Classify inspects an error returned by an HTTP round trip or a body read.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrInterrupted) {
		return KindInterrupted
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return KindReset
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNoConnectivity
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return KindNoConnectivity
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindNoConnectivity
	}
	return KindOther
}
