package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"store": map[string]interface{}{
			"backend": "json",
			"path":    "~/.remind/reminders.json",
		},
		"notify": map[string]interface{}{
			"command":  "notify-send",
			"app_name": "Reminder",
			"title":    "Reminder",
		},
		"sound": map[string]interface{}{
			"player": "paplay",
			"file":   "/usr/share/sounds/freedesktop/stereo/complete.oga",
		},
		"log": map[string]interface{}{
			"file": "~/.remind/worker.log",
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.remind/config.yaml"
}
