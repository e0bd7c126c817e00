package setup

import (
	"github.com/cordialsys/xcall/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CallOverride holds settings given on the command line, which take precedence over xcall.yaml
type CallOverride struct {
	// The node to connect to
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Secret reference or literal secret uri of the signer
	Suri string `json:"suri,omitempty" yaml:"suri,omitempty"`
	Tip  uint64 `json:"tip,omitempty" yaml:"tip,omitempty"`
	// 0 keeps the configured prefix
	SS58Prefix uint16 `json:"ss58_prefix,omitempty" yaml:"ss58_prefix,omitempty"`
}

func AddCallOverrideArgs(cmd *cobra.Command) {
	cmd.Flags().String("url", config.DefaultURL, "Websocket or http endpoint of the node.")
	cmd.Flags().String("suri", "", "Secret uri of the signer (e.g. //Alice), or a reference such as env:SURI.")
	cmd.Flags().Uint64("tip", 0, "Tip to include with the extrinsic.")
	cmd.Flags().Uint16("ss58-prefix", 0, "Address format of the chain.")
}

func CallOverrideFromCmd(cmd *cobra.Command) (*CallOverride, error) {
	override := &CallOverride{}
	var err error
	if cmd.Flags().Changed("url") {
		if override.URL, err = cmd.Flags().GetString("url"); err != nil {
			return nil, err
		}
	}
	if override.Suri, err = cmd.Flags().GetString("suri"); err != nil {
		return nil, err
	}
	if override.Tip, err = cmd.Flags().GetUint64("tip"); err != nil {
		return nil, err
	}
	if override.SS58Prefix, err = cmd.Flags().GetUint16("ss58-prefix"); err != nil {
		return nil, err
	}
	return override, nil
}

// OverrideCallSettings applies the command line over the loaded configuration
func OverrideCallSettings(cfg *config.CallConfig, override *CallOverride) {
	if override == nil {
		return
	}
	if override.URL != "" {
		logrus.WithField("url", override.URL).Debug("overriding url")
		cfg.URL = override.URL
	}
	if override.Suri != "" {
		logrus.Debug("overriding signer")
		cfg.Suri = config.Secret(override.Suri)
	}
	if override.Tip != 0 {
		cfg.Tip = override.Tip
	}
	if override.SS58Prefix != 0 {
		cfg.SS58Prefix = override.SS58Prefix
	}
}
