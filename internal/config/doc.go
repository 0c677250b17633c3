// Package config loads registry configuration.
//
// Configuration is resolved in layers, each overriding the one below:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← RELAY_LOG_*
//	├─────────────────────────────┤
//	│  2. Configuration File      │  ← relay.yaml / relay.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The file format is chosen by extension: ".yaml" and ".yml" are decoded
// with gopkg.in/yaml.v3, ".toml" with github.com/pelletier/go-toml/v2. Both
// decoders reject unknown fields.
//
// # Basic Usage
//
//	cfg, err := config.Load("relay.yaml")
//	if err != nil {
//	    return err
//	}
//	sink, err := logger.New(cfg.Logging)
//
// # Live Reload
//
// Watcher reloads the file when it changes on disk:
//
//	w, err := config.NewWatcher("relay.yaml", func(cfg *config.Config, err error) {
//	    if err == nil && cfg.Logging.Enabled {
//	        sink.Start()
//	    }
//	})
//	defer w.Close()
package config
