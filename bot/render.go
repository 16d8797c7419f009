package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jrsteele09/tg-session-bot/authclient"
	"github.com/jrsteele09/tg-session-bot/loginflow"
)

// Callback data carried by the inline keyboard buttons.
const (
	callbackPyrogram      = "pyrogram_session"
	callbackTelethon      = "telethon_session"
	callbackGenerateAgain = "generate_again"
)

const (
	welcomeText   = "Hello! Choose an option below to start generating a session string."
	cancelledText = "Login cancelled. Send /start to begin again."
)

func mainMenuKeyboard(miniAppURL string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if miniAppURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonWebApp("✨ Open Mini App", tgbotapi.WebAppInfo{URL: miniAppURL}),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔑 Pyrogram Session", callbackPyrogram),
		tgbotapi.NewInlineKeyboardButtonData("🔑 Telethon Session", callbackTelethon),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func generateAgainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Generate Another Session", callbackGenerateAgain),
		),
	)
}

func promptText(kind loginflow.PromptKind, retry bool) string {
	var text string
	switch kind {
	case loginflow.PromptAPIID:
		text = "Please enter your **API ID**:"
	case loginflow.PromptAPIHash:
		text = "Please enter your **API Hash**:"
	case loginflow.PromptPhoneNumber:
		text = "Please enter your **phone number** (e.g. `+15551234567`):"
	case loginflow.PromptCode:
		text = "Please enter the **login code** you received:"
	case loginflow.PromptSecondFactorPassword:
		text = "Please enter your **2FA password**:"
	default:
		return ""
	}
	if retry {
		return retryPrefix(kind) + text
	}
	return text
}

func retryPrefix(kind loginflow.PromptKind) string {
	switch kind {
	case loginflow.PromptAPIID:
		return "That doesn't look like a valid API ID. "
	case loginflow.PromptAPIHash:
		return "The API Hash cannot be empty. "
	case loginflow.PromptPhoneNumber:
		return "That doesn't look like a valid phone number. "
	case loginflow.PromptCode:
		return "That code was rejected. "
	case loginflow.PromptSecondFactorPassword:
		return "That password was rejected. "
	default:
		return ""
	}
}

func backendTitle(backend authclient.Backend) string {
	switch backend {
	case authclient.BackendPyrogram:
		return "Pyrogram"
	case authclient.BackendTelethon:
		return "Telethon"
	default:
		return string(backend)
	}
}

// reply is a rendered orchestrator response, ready to send.
type reply struct {
	text string

	hasDocument bool
	document    tgbotapi.FileBytes
	caption     string

	keyboard *tgbotapi.InlineKeyboardMarkup
}

// renderResponse maps an orchestrator response to an outbound message.
// The second return is false when nothing should be sent. The session
// string travels as a document attachment, never as loggable text.
func renderResponse(resp loginflow.Response) (reply, bool) {
	switch resp.Kind {
	case loginflow.ResponsePrompt:
		return reply{text: promptText(resp.Prompt, resp.Retry)}, true

	case loginflow.ResponseSuccess:
		keyboard := generateAgainKeyboard()
		return reply{
			hasDocument: true,
			document: tgbotapi.FileBytes{
				Name:  fmt.Sprintf("%s_session.txt", resp.Backend),
				Bytes: []byte(resp.SessionString),
			},
			caption: fmt.Sprintf(
				"✅ Your %s session string has been generated and saved to the file below. **Keep this secure!**",
				backendTitle(resp.Backend),
			),
			keyboard: &keyboard,
		}, true

	case loginflow.ResponseFailure:
		keyboard := generateAgainKeyboard()
		return reply{
			text:     "❌ " + resp.FailureReason,
			keyboard: &keyboard,
		}, true

	default:
		return reply{}, false
	}
}
