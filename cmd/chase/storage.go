package main

import (
	"strings"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/storage"
	"github.com/OCAP2/chase/internal/storage/factory"
	"github.com/spf13/viper"
)

func newStorageBackend() (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()
	if storageCfg.WebSocket.URL == "" && strings.Contains(storageCfg.Type, "websocket") {
		storageCfg.WebSocket.URL = httpToWS(viper.GetString("api.serverUrl")) + "/api"
		if storageCfg.WebSocket.Secret == "" {
			storageCfg.WebSocket.Secret = viper.GetString("api.apiKey")
		}
	}

	backend, err := factory.NewBackend(storageCfg, config.GetInfluxConfig(), factory.Dependencies{
		Logger:        Logger,
		MetricsLogger: ZLogger.With().Str("component", "influx").Logger(),
		LogsDir:       viper.GetString("logsDir"),
	})
	if err != nil {
		return nil, err
	}
	Logger.Info("Storage backend created", "type", storageCfg.Type)
	return backend, nil
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
