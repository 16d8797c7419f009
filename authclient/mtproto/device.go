package mtproto

import "github.com/gotd/td/telegram"

// Device presets reported to Telegram during the handshake. Matching a real
// client fingerprint lowers the chance of the generated session being flagged.
var devicePresets = map[string]telegram.DeviceConfig{
	"android": {
		DeviceModel:    "Samsung Galaxy S23",
		SystemVersion:  "SDK 33",
		AppVersion:     "10.2.0",
		SystemLangCode: "en-US",
		LangCode:       "en",
	},
	"iphone": {
		DeviceModel:    "iPhone 15 Pro",
		SystemVersion:  "17.2",
		AppVersion:     "10.4",
		SystemLangCode: "en-US",
		LangCode:       "en",
	},
	"desktop": {
		DeviceModel:    "Desktop",
		SystemVersion:  "Windows 11",
		AppVersion:     "4.14.9 x64",
		SystemLangCode: "en-US",
		LangCode:       "en",
	},
}

// DevicePreset looks up a named device preset.
func DevicePreset(name string) (telegram.DeviceConfig, bool) {
	device, ok := devicePresets[name]
	return device, ok
}

// DefaultDevice is the preset used when none is configured.
func DefaultDevice() telegram.DeviceConfig {
	return devicePresets["desktop"]
}
