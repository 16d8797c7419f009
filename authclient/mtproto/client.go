// Package mtproto implements the authclient interfaces on top of gotd/td.
// The Pyrogram and Telethon variants share the MTProto login handshake and
// differ only in the session string dialect they export.
package mtproto

import (
	"context"
	"sync"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/pkg/errors"

	"github.com/jrsteele09/tg-session-bot/authclient"
)

// Client dials Telegram with per-flow credentials and yields connections
// that export the configured session string dialect.
type Client struct {
	backend authclient.Backend
	device  telegram.DeviceConfig
}

var _ authclient.Client = (*Client)(nil)

// Option modifies a Client instance.
type Option func(*Client)

// WithDevice overrides the device identity reported during the handshake.
func WithDevice(device telegram.DeviceConfig) Option {
	return func(c *Client) {
		c.device = device
	}
}

// NewPyrogramClient creates a client exporting Pyrogram-dialect session strings.
func NewPyrogramClient(options ...Option) *Client {
	return newClient(authclient.BackendPyrogram, options...)
}

// NewTelethonClient creates a client exporting Telethon-dialect session strings.
func NewTelethonClient(options ...Option) *Client {
	return newClient(authclient.BackendTelethon, options...)
}

func newClient(backend authclient.Backend, options ...Option) *Client {
	c := &Client{
		backend: backend,
		device:  DefaultDevice(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) Backend() authclient.Backend { return c.backend }

// Connect dials Telegram in the background and returns a live connection.
// The connection owns an in-memory session that is exported once the login
// handshake completes.
func (c *Client) Connect(ctx context.Context, creds authclient.Credentials) (authclient.Conn, error) {
	storage := new(session.StorageMemory)
	tgClient := telegram.NewClient(creds.APIID, creds.APIHash, telegram.Options{
		SessionStorage: storage,
		Device:         c.device,
	})

	stop, err := bg.Connect(tgClient, bg.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(authclient.ErrConnection, err.Error())
	}

	return &conn{
		backend: c.backend,
		client:  tgClient,
		storage: storage,
		stop:    stop,
		apiID:   creds.APIID,
	}, nil
}

// conn is a single live MTProto connection. It is exclusively owned by one
// login flow and must be closed on every exit path.
type conn struct {
	backend authclient.Backend
	client  *telegram.Client
	storage *session.StorageMemory
	stop    bg.StopFunc
	apiID   int
	userID  int64

	closeOnce sync.Once
}

var _ authclient.Conn = (*conn)(nil)

func (c *conn) RequestLoginCode(ctx context.Context, phoneNumber string) (authclient.CodeToken, error) {
	sent, err := c.client.Auth().SendCode(ctx, phoneNumber, auth.SendCodeOptions{})
	if err != nil {
		return "", errors.Wrap(authclient.ErrConnection, err.Error())
	}
	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return "", errors.Wrap(authclient.ErrConnection, "unexpected sent code class")
	}
	return authclient.CodeToken(code.PhoneCodeHash), nil
}

func (c *conn) SubmitCode(ctx context.Context, phoneNumber string, token authclient.CodeToken, code string) (authclient.SessionString, error) {
	authorization, err := c.client.Auth().SignIn(ctx, phoneNumber, code, string(token))
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrPasswordAuthNeeded):
		return "", authclient.ErrSecondFactorRequired
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EXPIRED", "PHONE_CODE_EMPTY"):
		return "", authclient.ErrInvalidCode
	default:
		return "", errors.Wrap(authclient.ErrConnection, err.Error())
	}
	c.rememberUser(authorization)
	return c.exportSessionString(ctx)
}

func (c *conn) SubmitSecondFactorPassword(ctx context.Context, password string) (authclient.SessionString, error) {
	authorization, err := c.client.Auth().Password(ctx, password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrPasswordInvalid), tgerr.Is(err, "PASSWORD_HASH_INVALID"):
		return "", authclient.ErrInvalidPassword
	default:
		return "", errors.Wrap(authclient.ErrConnection, err.Error())
	}
	c.rememberUser(authorization)
	return c.exportSessionString(ctx)
}

// Close releases the background connection. Safe to call more than once.
func (c *conn) Close() {
	c.closeOnce.Do(func() {
		if c.stop != nil {
			_ = c.stop()
		}
	})
}

func (c *conn) rememberUser(authorization *tg.AuthAuthorization) {
	if authorization == nil || authorization.User == nil {
		return
	}
	c.userID = authorization.User.GetID()
}

func (c *conn) exportSessionString(ctx context.Context) (authclient.SessionString, error) {
	loader := session.Loader{Storage: c.storage}
	data, err := loader.Load(ctx)
	if err != nil {
		return "", errors.Wrap(authclient.ErrConnection, err.Error())
	}
	switch c.backend {
	case authclient.BackendTelethon:
		return encodeTelethonString(data)
	default:
		return encodePyrogramString(data, c.apiID, c.userID)
	}
}
