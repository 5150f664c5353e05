package connection

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/skobkin/vlcrc/internal/connectors"
)

// Classify maps a socket error to a connection detail.
func Classify(err error) connectors.ConnectionDetail {
	if err == nil {
		return connectors.ConnectionDetailNone
	}

	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, syscall.ECONNABORTED):
		return connectors.ConnectionDetailNone
	case errors.Is(err, syscall.ECONNREFUSED):
		return connectors.ConnectionDetailConnRefused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return connectors.ConnectionDetailConnReset
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, syscall.ETIMEDOUT):
		return connectors.ConnectionDetailTimedOut
	case errors.As(err, &netErr) && netErr.Timeout():
		return connectors.ConnectionDetailTimedOut
	case errors.Is(err, net.ErrClosed), errors.Is(err, context.Canceled), errors.Is(err, syscall.EINTR):
		return connectors.ConnectionDetailInterrupted
	default:
		return connectors.ConnectionDetailUnknown
	}
}
