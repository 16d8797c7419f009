package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/tg-session-bot/authclient"
	"github.com/jrsteele09/tg-session-bot/loginflow"
)

func TestRenderResponse_Prompt(t *testing.T) {
	rendered, ok := renderResponse(loginflow.Response{
		Kind:   loginflow.ResponsePrompt,
		Prompt: loginflow.PromptAPIID,
	})
	require.True(t, ok)
	require.Equal(t, "Please enter your **API ID**:", rendered.text)
	require.False(t, rendered.hasDocument)
	require.Nil(t, rendered.keyboard)
}

func TestRenderResponse_RetryPromptPrefixes(t *testing.T) {
	rendered, ok := renderResponse(loginflow.Response{
		Kind:   loginflow.ResponsePrompt,
		Prompt: loginflow.PromptCode,
		Retry:  true,
	})
	require.True(t, ok)
	require.Equal(t, "That code was rejected. Please enter the **login code** you received:", rendered.text)
}

func TestRenderResponse_SuccessIsDocument(t *testing.T) {
	rendered, ok := renderResponse(loginflow.Response{
		Kind:          loginflow.ResponseSuccess,
		Backend:       authclient.BackendTelethon,
		SessionString: "SESSIONSTRING123",
	})
	require.True(t, ok)
	require.True(t, rendered.hasDocument)
	require.Equal(t, "telethon_session.txt", rendered.document.Name)
	require.Equal(t, []byte("SESSIONSTRING123"), rendered.document.Bytes)
	require.Contains(t, rendered.caption, "Telethon")
	require.Contains(t, rendered.caption, "Keep this secure")
	require.NotNil(t, rendered.keyboard)
	require.Empty(t, rendered.text, "session string must not travel as message text")
}

func TestRenderResponse_Failure(t *testing.T) {
	rendered, ok := renderResponse(loginflow.Response{
		Kind:          loginflow.ResponseFailure,
		FailureReason: "Could not reach Telegram.",
	})
	require.True(t, ok)
	require.Equal(t, "❌ Could not reach Telegram.", rendered.text)
	require.NotNil(t, rendered.keyboard)
}

func TestRenderResponse_NoneRendersNothing(t *testing.T) {
	_, ok := renderResponse(loginflow.Response{Kind: loginflow.ResponseNone})
	require.False(t, ok)
}

func TestMainMenuKeyboard(t *testing.T) {
	t.Run("with mini app", func(t *testing.T) {
		keyboard := mainMenuKeyboard("https://example.com/mini_app.html")
		require.Len(t, keyboard.InlineKeyboard, 2)
		require.NotNil(t, keyboard.InlineKeyboard[0][0].WebApp)
		require.Equal(t, callbackPyrogram, *keyboard.InlineKeyboard[1][0].CallbackData)
		require.Equal(t, callbackTelethon, *keyboard.InlineKeyboard[1][1].CallbackData)
	})

	t.Run("without mini app", func(t *testing.T) {
		keyboard := mainMenuKeyboard("")
		require.Len(t, keyboard.InlineKeyboard, 1)
	})
}

func TestParseWebAppSelection(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		selection, err := parseWebAppSelection(`{"device":"Pixel 8","library":"pyrogram"}`)
		require.NoError(t, err)
		require.Equal(t, "Pixel 8", selection.Device)
		require.Equal(t, "pyrogram", selection.Library)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := parseWebAppSelection(`{"device":"Pixel 8"}`)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseWebAppSelection(`not json`)
		require.Error(t, err)
	})
}
