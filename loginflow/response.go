package loginflow

import "github.com/jrsteele09/tg-session-bot/authclient"

// EventKind classifies inbound chat events.
type EventKind int

const (
	EventCommand EventKind = iota + 1
	EventButtonPress
	EventText
)

// Event is one inbound chat event, as extracted by the presentation adapter.
// Payload carries the command/button name or the message text.
type Event struct {
	ConversationID string
	Kind           EventKind
	Payload        string
}

// PromptKind names the field the user is being asked for. The adapter owns
// the concrete wording.
type PromptKind int

const (
	PromptAPIID PromptKind = iota + 1
	PromptAPIHash
	PromptPhoneNumber
	PromptCode
	PromptSecondFactorPassword
)

// ResponseKind classifies orchestrator outcomes.
type ResponseKind int

const (
	// ResponseNone means the event matched no active flow and should be
	// silently ignored.
	ResponseNone ResponseKind = iota
	ResponsePrompt
	ResponseSuccess
	ResponseFailure
)

// Response describes what the adapter should render. Exactly one of the
// Prompt/SessionString/FailureReason groups is meaningful, selected by Kind.
type Response struct {
	Kind   ResponseKind
	Prompt PromptKind
	// Retry marks a re-prompt after rejected input for the same field.
	Retry bool

	Backend       authclient.Backend
	SessionString authclient.SessionString

	FailureReason string
}

func nothing() Response {
	return Response{Kind: ResponseNone}
}

func promptFor(kind PromptKind) Response {
	return Response{Kind: ResponsePrompt, Prompt: kind}
}

func retryPrompt(kind PromptKind) Response {
	return Response{Kind: ResponsePrompt, Prompt: kind, Retry: true}
}

func successResponse(backend authclient.Backend, sessionString authclient.SessionString) Response {
	return Response{Kind: ResponseSuccess, Backend: backend, SessionString: sessionString}
}

func failureResponse(reason string) Response {
	return Response{Kind: ResponseFailure, FailureReason: reason}
}
