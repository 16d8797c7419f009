package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// webAppSelection is the payload the mini app sends back when the user picks
// a device and library combination.
type webAppSelection struct {
	Device  string `json:"device"`
	Library string `json:"library"`
}

func parseWebAppSelection(data string) (webAppSelection, error) {
	var selection webAppSelection
	if err := json.Unmarshal([]byte(data), &selection); err != nil {
		return webAppSelection{}, errors.Wrap(err, "[parseWebAppSelection] unmarshal")
	}
	if selection.Device == "" || selection.Library == "" {
		return webAppSelection{}, errors.New("[parseWebAppSelection] device and library are required")
	}
	return selection, nil
}

func (b *Bot) handleWebAppData(message *tgbotapi.Message) {
	selection, err := parseWebAppSelection(message.WebAppData.Data)
	if err != nil {
		b.log.Warn().Err(err).Msg("bad web app data")
		return
	}

	library := capitalize(selection.Library)
	b.sendText(message.Chat.ID, fmt.Sprintf(
		"✅ You have selected the device **%s** and the library **%s**.\n"+
			"To generate the session string, tap on the `🔑 %s Session` button.",
		selection.Device, library, library,
	))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
