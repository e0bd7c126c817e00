package setup_test

import (
	"testing"

	"github.com/cordialsys/xcall/cmd/xc/setup"
	"github.com/cordialsys/xcall/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestOverrideCallSettings(t *testing.T) {
	require := require.New(t)
	cfg := config.NewCallConfig()
	cfg.Suri = "env:XCALL_SURI"

	setup.OverrideCallSettings(cfg, &setup.CallOverride{})
	require.Equal(config.DefaultURL, cfg.URL)
	require.Equal(config.Secret("env:XCALL_SURI"), cfg.Suri)

	setup.OverrideCallSettings(cfg, &setup.CallOverride{URL: "wss://rpc.example.org", Suri: "//Bob", Tip: 5, SS58Prefix: 0})
	require.Equal("wss://rpc.example.org", cfg.URL)
	require.Equal(config.Secret("//Bob"), cfg.Suri)
	require.EqualValues(5, cfg.Tip)
	require.Equal(config.DefaultSS58Prefix, cfg.SS58Prefix)
}

func TestCallOverrideFromCmd(t *testing.T) {
	require := require.New(t)
	cmd := &cobra.Command{Use: "test"}
	setup.AddCallOverrideArgs(cmd)

	require.NoError(cmd.ParseFlags([]string{"--suri", "//Alice"}))
	override, err := setup.CallOverrideFromCmd(cmd)
	require.NoError(err)
	// the default url does not override a configured one
	require.Equal("", override.URL)
	require.Equal("//Alice", override.Suri)

	require.NoError(cmd.ParseFlags([]string{"--url", "ws://127.0.0.1:9944", "--tip", "10", "--ss58-prefix", "0"}))
	override, err = setup.CallOverrideFromCmd(cmd)
	require.NoError(err)
	require.Equal("ws://127.0.0.1:9944", override.URL)
	require.EqualValues(10, override.Tip)
}
