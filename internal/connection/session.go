// Package connection keeps a self-healing TCP connection to an RC endpoint and
// hands each live socket to a fresh protocol session.
package connection

//go:generate mockgen -destination=../mocks/session.go -package=mocks github.com/skobkin/vlcrc/internal/connection Session

// Session consumes inbound data for one connection. It is created after the
// socket opens and destroyed exactly once after it closes.
type Session interface {
	Recv(data []byte)
	Destroy()
}

// SendFunc writes to the connection the session was created for.
type SendFunc func(data []byte)

type SessionFactory func(send SendFunc) Session

type nopSession struct{}

func (nopSession) Recv([]byte) {}
func (nopSession) Destroy()    {}
