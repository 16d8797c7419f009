// Package authclient abstracts the remote Telegram authentication backends
// behind a single capability interface. The orchestrator only ever talks to
// Client and Conn; everything backend-specific (correlation token shape,
// session string dialect, error classification) lives in the adapters.
package authclient

import "context"

// Backend identifies which session-string dialect a client produces.
type Backend string

const (
	BackendPyrogram Backend = "pyrogram"
	BackendTelethon Backend = "telethon"
)

// Valid reports whether b is one of the supported backends.
func (b Backend) Valid() bool {
	return b == BackendPyrogram || b == BackendTelethon
}

func (b Backend) String() string { return string(b) }

// Credentials are the per-flow, user-supplied application credentials.
// These are not the bot's own credentials.
type Credentials struct {
	APIID   int
	APIHash string // sensitive, never log
}

// CodeToken is the opaque backend-issued correlation token returned by
// RequestLoginCode and required when the code is submitted.
type CodeToken string

// SessionString is the exported reusable credential. Treat as a secret.
type SessionString string

// Client creates live connections to one authentication backend.
type Client interface {
	Backend() Backend
	Connect(ctx context.Context, creds Credentials) (Conn, error)
}

// Conn is a live, exclusively owned connection to the backend. A Conn is
// bound to the credentials it was opened with and must be closed on every
// exit path. Close is idempotent and best-effort.
type Conn interface {
	RequestLoginCode(ctx context.Context, phoneNumber string) (CodeToken, error)
	SubmitCode(ctx context.Context, phoneNumber string, token CodeToken, code string) (SessionString, error)
	SubmitSecondFactorPassword(ctx context.Context, password string) (SessionString, error)
	Close()
}
