package clientfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/tg-session-bot/authclient"
)

var _ authclient.Client = (*FakeClient)(nil)

// FakeClient is an in-memory authclient.Client for tests. Every Connect
// yields a new FakeConn, recorded so tests can assert on close counts.
type FakeClient struct {
	BackendValue authclient.Backend
	ConnectErr   error

	// ConnSetup, when set, configures each new connection before it is
	// handed to the caller.
	ConnSetup func(*FakeConn)

	lock  sync.Mutex
	conns []*FakeConn
}

func NewFakeClient(backend authclient.Backend) *FakeClient {
	return &FakeClient{BackendValue: backend}
}

func (c *FakeClient) Backend() authclient.Backend { return c.BackendValue }

func (c *FakeClient) Connect(_ context.Context, _ authclient.Credentials) (authclient.Conn, error) {
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	conn := &FakeConn{
		TokenValue:    "fake-code-hash",
		SessionString: "FAKESESSIONSTRING",
	}
	if c.ConnSetup != nil {
		c.ConnSetup(conn)
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.conns = append(c.conns, conn)
	return conn, nil
}

// Conns returns every connection handed out so far.
func (c *FakeClient) Conns() []*FakeConn {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]*FakeConn(nil), c.conns...)
}

// LastConn returns the most recent connection, or nil.
func (c *FakeClient) LastConn() *FakeConn {
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.conns) == 0 {
		return nil
	}
	return c.conns[len(c.conns)-1]
}

var _ authclient.Conn = (*FakeConn)(nil)

// FakeConn scripts the per-connection operations. Zero value succeeds on
// every step; set the *Err fields or stubs to force failures.
type FakeConn struct {
	TokenValue    authclient.CodeToken
	SessionString authclient.SessionString
	RequestErr    error

	// SubmitCodeStub and SubmitPasswordStub override the default
	// behaviour; they receive the submitted value.
	SubmitCodeStub     func(code string) (authclient.SessionString, error)
	SubmitPasswordStub func(password string) (authclient.SessionString, error)

	lock          sync.Mutex
	closeCalls    int
	codeCalls     int
	passwordCalls int
}

func (c *FakeConn) RequestLoginCode(_ context.Context, _ string) (authclient.CodeToken, error) {
	if c.RequestErr != nil {
		return "", c.RequestErr
	}
	return c.TokenValue, nil
}

func (c *FakeConn) SubmitCode(_ context.Context, _ string, _ authclient.CodeToken, code string) (authclient.SessionString, error) {
	c.lock.Lock()
	c.codeCalls++
	c.lock.Unlock()
	if c.SubmitCodeStub != nil {
		return c.SubmitCodeStub(code)
	}
	return c.SessionString, nil
}

func (c *FakeConn) SubmitSecondFactorPassword(_ context.Context, password string) (authclient.SessionString, error) {
	c.lock.Lock()
	c.passwordCalls++
	c.lock.Unlock()
	if c.SubmitPasswordStub != nil {
		return c.SubmitPasswordStub(password)
	}
	return c.SessionString, nil
}

func (c *FakeConn) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closeCalls++
}

// CloseCalls reports how many times Close was invoked.
func (c *FakeConn) CloseCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closeCalls
}

// CodeCalls reports how many codes were submitted.
func (c *FakeConn) CodeCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.codeCalls
}

// PasswordCalls reports how many passwords were submitted.
func (c *FakeConn) PasswordCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.passwordCalls
}
