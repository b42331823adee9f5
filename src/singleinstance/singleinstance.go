// Package singleinstance keeps one resident process per user session and lets
// later invocations hand their capture request to it over loopback TCP.
package singleinstance

import (
	"context"
	"time"
)

// Commands a client can send after connecting.
const (
	CommandCapture = "CAPTURE"
)

// CaptureTimeout is how long a client without its own deadline waits for the
// resident to answer CAPTURE. It must outlast the resident's start timeout.
const CaptureTimeout = 20 * time.Second

// Server owns the TCP endpoint and answers delegated requests.
type Server interface {
	// Start binds the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted request, or ctx error.
	Next(ctx context.Context) (Conn, error)
	Close() error
}

// Conn is one delegated request awaiting its answer.
type Conn interface {
	Request() Request
	RespondSuccess() error
	RespondError(msg string) error
	Close() error
}

// Request is a single delegated command.
type Request struct {
	Command string
}

// Client hands a capture request to a running resident.
type Client interface {
	// TryCapture asks the resident to start a capture. If no resident is
	// found it returns delegated=false, err=nil.
	TryCapture(ctx context.Context) (delegated bool, err error)
}

func NewServer() Server { return newTcpServer() }

func NewClient() Client { return newTcpClient() }
