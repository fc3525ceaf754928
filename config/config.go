// Package config loads the router configuration from YAML or JSON files with
// optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/pvrouter/core/acquisition"
	"github.com/kilianp07/pvrouter/core/dispatch"
	"github.com/kilianp07/pvrouter/core/metrics"
	"github.com/kilianp07/pvrouter/core/receiver"
	"github.com/kilianp07/pvrouter/infra/mqtt"
	"github.com/kilianp07/pvrouter/simulator"
)

// Config is the root configuration of the router and receiver commands.
type Config struct {
	Sampling  acquisition.Config `json:"sampling"`
	Dispatch  dispatch.Config    `json:"dispatch"`
	MQTT      mqtt.Config        `json:"mqtt"`
	Receiver  receiver.Config    `json:"receiver"`
	Metrics   metrics.Config     `json:"metrics"`
	Simulator simulator.Config   `json:"simulator"`
}

// Load reads the configuration file at path. Environment variables prefixed
// with PVR_ override file values, double underscores separating levels
// (PVR_MQTT__BROKER overrides mqtt.broker).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("PVR_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pvr_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Sampling.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Receiver.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Simulator.SetDefaults()
	if err := cfg.Sampling.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Receiver.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulator.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
