package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"timezone": "Local",
		"backend": map[string]interface{}{
			"base_url": "http://localhost:8000/api",
			"timeout":  10,
			"token":    "",
			"retry": map[string]interface{}{
				"max_attempts":        1, // No retries: failures degrade to stale local state
				"initial_interval_ms": 500,
				"max_interval_ms":     5000,
			},
		},
		"scheduler": map[string]interface{}{
			"tick_interval":    60,
			"refresh_interval": 0,
		},
		"notify": map[string]interface{}{
			"duration": 6,
			"telegram": map[string]interface{}{
				"enabled":   false,
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"cache": map[string]interface{}{
			"driver": "sqlite",
			"path":   "~/.ledger-reminders/cache.db",
			"redis": map[string]interface{}{
				"addr":     "",
				"password": "",
				"db":       0,
				"key":      "ledger-reminders:list",
			},
		},
		"log": map[string]interface{}{
			"level": "info",
			"json":  false,
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
	return "~/.ledger-reminders/config.yaml"
}
