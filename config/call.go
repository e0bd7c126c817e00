package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// Local development node
	DefaultURL = "ws://localhost:9944/"
	// Offered when asking which chain to interact with
	SuggestedURL = "wss://rpc1.paseo.popnetwork.xyz"
	// Development account present on every development chain
	DefaultSuri     = "//Alice"
	DefaultToolName = "xc"
	// Generic substrate address format
	DefaultSS58Prefix uint16 = 42
	DefaultTimeout           = 30 * time.Second
)

// CallConfig holds the defaults of a call session, read from the "call" section of xcall.yaml
type CallConfig struct {
	URL        string        `yaml:"url,omitempty"`
	Suri       Secret        `yaml:"suri,omitempty"`
	SS58Prefix uint16        `yaml:"ss58_prefix,omitempty"`
	Tip        uint64        `yaml:"tip,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
}

// NewCallConfig returns the built-in defaults. The signer is left unset so that it is asked for.
func NewCallConfig() *CallConfig {
	return &CallConfig{
		URL:        DefaultURL,
		SS58Prefix: DefaultSS58Prefix,
		Timeout:    DefaultTimeout,
	}
}

// LoadCallConfig reads xcall.yaml, when present, over the built-in defaults
func LoadCallConfig() (*CallConfig, error) {
	cfg := &CallConfig{}
	if err := RequireConfig("call", cfg, NewCallConfig()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file of the working directory into the environment, when present
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logrus.WithError(err).Trace("no .env loaded")
	}
}
