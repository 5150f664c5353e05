package transport

import "context"

// Transport carries raw RC traffic. One ReadChunk result is one protocol response.
type Transport interface {
	Name() string
	StatusTarget() string
	Connect(ctx context.Context) error
	Close() error
	ReadChunk(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
}

var _ Transport = (*TCPTransport)(nil)
