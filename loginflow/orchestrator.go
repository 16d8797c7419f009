// Package loginflow drives the interactive session-string login as a
// per-conversation state machine: collect API credentials, request a login
// code, verify it, optionally verify a second factor password, export the
// session string. Every exit path releases the remote connection.
package loginflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/tg-session-bot/authclient"
	"github.com/jrsteele09/tg-session-bot/loginflow/sessionstore"
)

const defaultMaxAttempts = 3

// Control payloads understood by Handle for command/button events, besides
// the backend names themselves.
const (
	PayloadStart  = "start"
	PayloadCancel = "cancel"
)

// Human-readable failure reasons. Backend detail never leaks past these.
const (
	reasonConnectionFailed = "Could not reach Telegram. The login was aborted, please start over."
	reasonInvalidCode      = "The login code was rejected too many times. Please start over."
	reasonInvalidPassword  = "The 2FA password was rejected too many times. Please start over."
	reasonUnexpected       = "An unexpected error occurred. Please start over."
)

// Clients maps each supported backend to its client.
type Clients map[authclient.Backend]authclient.Client

// Orchestrator owns the conversation state machine. All state lives in the
// session store; the orchestrator itself is stateless across events.
type Orchestrator struct {
	store       *sessionstore.Store
	clients     Clients
	log         zerolog.Logger
	nowTime     func() time.Time // injectable for testing
	maxAttempts int
}

// Option modifies the Orchestrator instance.
type Option func(*Orchestrator)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(o *Orchestrator) {
		o.nowTime = nowFunc
	}
}

// WithMaxAttempts bounds how often a rejected code or password may be
// retried before the flow aborts.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithLogger sets the logger. Secrets are never logged regardless.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// New initializes an Orchestrator with required dependencies.
func New(store *sessionstore.Store, clients Clients, options ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("[loginflow.New] store is required")
	}
	if len(clients) == 0 {
		return nil, errors.New("[loginflow.New] at least one backend client is required")
	}
	for backend, client := range clients {
		if !backend.Valid() {
			return nil, errors.Errorf("[loginflow.New] unknown backend %q", backend)
		}
		if client == nil {
			return nil, errors.Errorf("[loginflow.New] client for backend %q is nil", backend)
		}
	}

	o := &Orchestrator{
		store:       store,
		clients:     clients,
		log:         zerolog.Nop(),
		nowTime:     time.Now,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range options {
		opt(o)
	}
	return o, nil
}

// Handle processes one inbound event for a conversation and returns the
// response the adapter should render. Events for the same conversation are
// serialized through the store's per-identity lock.
func (o *Orchestrator) Handle(ctx context.Context, event Event) (Response, error) {
	if event.ConversationID == "" {
		return Response{}, errors.New("[Orchestrator.Handle] conversationID is required")
	}

	release := o.store.Acquire(event.ConversationID)
	defer release()

	switch event.Kind {
	case EventCommand, EventButtonPress:
		return o.handleControl(event)
	case EventText:
		return o.handleText(ctx, event)
	default:
		return Response{}, errors.Errorf("[Orchestrator.Handle] unknown event kind %d", event.Kind)
	}
}

// ReleaseSession closes the remote connection of an evicted session. It is
// used as the sweeper's eviction callback; the store already holds the
// conversation lock when it runs.
func (o *Orchestrator) ReleaseSession(session *sessionstore.Session) {
	if session.Conn != nil {
		session.Conn.Close()
	}
	o.log.Info().
		Str("flow_id", session.FlowID).
		Str("backend", session.Backend.String()).
		Str("state", session.State.String()).
		Msg("idle login flow evicted")
}

func (o *Orchestrator) handleControl(event Event) (Response, error) {
	backend := authclient.Backend(event.Payload)
	if backend.Valid() {
		return o.startFlow(event.ConversationID, backend)
	}

	switch event.Payload {
	case PayloadStart, PayloadCancel:
		o.abandon(event.ConversationID)
		return nothing(), nil
	default:
		return nothing(), nil
	}
}

// startFlow creates a fresh session, first disconnecting and discarding any
// stale in-flight flow for the same identity.
func (o *Orchestrator) startFlow(conversationID string, backend authclient.Backend) (Response, error) {
	if _, ok := o.clients[backend]; !ok {
		return Response{}, errors.Errorf("[Orchestrator.startFlow] backend %q not configured", backend)
	}

	o.abandon(conversationID)

	now := o.nowTime()
	session := &sessionstore.Session{
		ConversationID: conversationID,
		FlowID:         uuid.New().String(),
		Backend:        backend,
		State:          sessionstore.StateAwaitingAPIID,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	o.store.Put(session)

	o.log.Info().
		Str("flow_id", session.FlowID).
		Str("backend", backend.String()).
		Msg("login flow started")

	return promptFor(PromptAPIID), nil
}

func (o *Orchestrator) handleText(ctx context.Context, event Event) (response Response, err error) {
	session, ok := o.store.Get(event.ConversationID)
	if !ok {
		return nothing(), nil
	}
	session.LastActivityAt = o.nowTime()

	// A single user's flow must never take the process down. On panic the
	// connection is released, the session dropped and a generic failure
	// surfaced.
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().
				Str("flow_id", session.FlowID).
				Str("state", session.State.String()).
				Interface("panic", r).
				Msg("login step panicked")
			o.dropSession(session)
			response = failureResponse(reasonUnexpected)
			err = nil
		}
	}()

	return o.step(ctx, session, event.Payload)
}

func (o *Orchestrator) step(ctx context.Context, session *sessionstore.Session, input string) (Response, error) {
	switch session.State {
	case sessionstore.StateAwaitingAPIID:
		return o.stepAPIID(session, input)
	case sessionstore.StateAwaitingAPIHash:
		return o.stepAPIHash(session, input)
	case sessionstore.StateAwaitingPhoneNumber:
		return o.stepPhoneNumber(ctx, session, input)
	case sessionstore.StateAwaitingCode:
		return o.stepCode(ctx, session, input)
	case sessionstore.StateAwaitingSecondFactor:
		return o.stepSecondFactor(ctx, session, input)
	default:
		o.dropSession(session)
		return Response{}, errors.Errorf("[Orchestrator.step] unknown state %d", session.State)
	}
}

func (o *Orchestrator) stepAPIID(session *sessionstore.Session, input string) (Response, error) {
	apiID, err := parseAPIID(input)
	if err != nil {
		return retryPrompt(PromptAPIID), nil
	}
	session.APIID = apiID
	session.State = sessionstore.StateAwaitingAPIHash
	o.store.Put(session)
	return promptFor(PromptAPIHash), nil
}

func (o *Orchestrator) stepAPIHash(session *sessionstore.Session, input string) (Response, error) {
	apiHash, err := validateAPIHash(input)
	if err != nil {
		return retryPrompt(PromptAPIHash), nil
	}
	session.APIHash = apiHash
	session.State = sessionstore.StateAwaitingPhoneNumber
	o.store.Put(session)
	return promptFor(PromptPhoneNumber), nil
}

func (o *Orchestrator) stepPhoneNumber(ctx context.Context, session *sessionstore.Session, input string) (Response, error) {
	phone, err := validatePhoneNumber(input)
	if err != nil {
		return retryPrompt(PromptPhoneNumber), nil
	}

	client := o.clients[session.Backend]
	conn, err := client.Connect(ctx, authclient.Credentials{
		APIID:   session.APIID,
		APIHash: session.APIHash,
	})
	if err != nil {
		o.logStepError(session, "connect", err)
		o.dropSession(session)
		return failureResponse(reasonConnectionFailed), nil
	}

	token, err := conn.RequestLoginCode(ctx, phone)
	if err != nil {
		o.logStepError(session, "request login code", err)
		conn.Close()
		o.store.Remove(session.ConversationID)
		return failureResponse(reasonConnectionFailed), nil
	}

	session.PhoneNumber = phone
	session.CodeToken = token
	session.Conn = conn
	session.APIHash = "" // no longer needed once connected
	session.State = sessionstore.StateAwaitingCode
	session.Attempts = 0
	o.store.Put(session)
	return promptFor(PromptCode), nil
}

func (o *Orchestrator) stepCode(ctx context.Context, session *sessionstore.Session, input string) (Response, error) {
	sessionString, err := session.Conn.SubmitCode(ctx, session.PhoneNumber, session.CodeToken, input)
	switch {
	case err == nil:
		return o.finish(session, sessionString), nil

	case errors.Is(err, authclient.ErrSecondFactorRequired):
		session.State = sessionstore.StateAwaitingSecondFactor
		session.Attempts = 0
		o.store.Put(session)
		return promptFor(PromptSecondFactorPassword), nil

	case errors.Is(err, authclient.ErrInvalidCode):
		session.Attempts++
		if session.Attempts < o.maxAttempts {
			o.store.Put(session)
			return retryPrompt(PromptCode), nil
		}
		o.dropSession(session)
		return failureResponse(reasonInvalidCode), nil

	default:
		o.logStepError(session, "submit code", err)
		o.dropSession(session)
		return failureResponse(reasonConnectionFailed), nil
	}
}

func (o *Orchestrator) stepSecondFactor(ctx context.Context, session *sessionstore.Session, input string) (Response, error) {
	sessionString, err := session.Conn.SubmitSecondFactorPassword(ctx, input)
	switch {
	case err == nil:
		return o.finish(session, sessionString), nil

	case errors.Is(err, authclient.ErrInvalidPassword):
		session.Attempts++
		if session.Attempts < o.maxAttempts {
			o.store.Put(session)
			return retryPrompt(PromptSecondFactorPassword), nil
		}
		o.dropSession(session)
		return failureResponse(reasonInvalidPassword), nil

	default:
		o.logStepError(session, "submit password", err)
		o.dropSession(session)
		return failureResponse(reasonConnectionFailed), nil
	}
}

// finish completes a successful flow: release the connection, drop the
// session and hand the exported session string to the adapter.
func (o *Orchestrator) finish(session *sessionstore.Session, sessionString authclient.SessionString) Response {
	o.dropSession(session)
	o.log.Info().
		Str("flow_id", session.FlowID).
		Str("backend", session.Backend.String()).
		Msg("login flow completed")
	return successResponse(session.Backend, sessionString)
}

// abandon discards any in-flight flow for the identity, releasing its
// connection first.
func (o *Orchestrator) abandon(conversationID string) {
	session, ok := o.store.Remove(conversationID)
	if !ok {
		return
	}
	if session.Conn != nil {
		session.Conn.Close()
	}
	o.log.Info().
		Str("flow_id", session.FlowID).
		Str("state", session.State.String()).
		Msg("login flow abandoned")
}

func (o *Orchestrator) dropSession(session *sessionstore.Session) {
	if session.Conn != nil {
		session.Conn.Close()
	}
	o.store.Remove(session.ConversationID)
}

func (o *Orchestrator) logStepError(session *sessionstore.Session, action string, err error) {
	o.log.Warn().
		Str("flow_id", session.FlowID).
		Str("backend", session.Backend.String()).
		Str("state", session.State.String()).
		Err(err).
		Msgf("login flow %s failed", action)
}
