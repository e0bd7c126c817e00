package commands

import (
	"fmt"
	"os"

	"github.com/cordialsys/xcall/call"
	"github.com/cordialsys/xcall/chain/substrate/resolver"
	"github.com/cordialsys/xcall/cmd/xc/prompt"
	"github.com/cordialsys/xcall/cmd/xc/setup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdCall() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "call",
		Short:        "Call extrinsics and read storage of a chain, as described by its metadata",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
	}
	cmd.AddCommand(CmdCallParachain())
	cmd.AddCommand(CmdPallets())
	return cmd
}

func CmdCallParachain() *cobra.Command {
	var pallet, extrinsic, storage, format string
	var fragments []string
	var skipConfirm bool
	cmd := &cobra.Command{
		Use:   "parachain [args...]",
		Short: "Compose, sign and submit an extrinsic. Anything not given is asked for.",
		Long: `Compose, sign and submit an extrinsic. Anything not given is asked for.

Arguments are given in declared order, one per top-level argument of the extrinsic, either
with --args or after the flags. Composite values are written as e.g. Id(5Grw...) or Some(7, 1).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapCallConfig(cmd.Context())
			override, err := setup.CallOverrideFromCmd(cmd)
			if err != nil {
				return err
			}
			setup.OverrideCallSettings(cfg, override)
			suri, err := cfg.Suri.LoadOrVerbatim()
			if err != nil {
				return fmt.Errorf("could not load signer: %v", err)
			}

			var source resolver.Source = prompt.NewTerminal()
			if !prompt.Interactive() {
				logrus.Debug("stdin is not a terminal, nothing will be asked for")
				source = resolver.NewFragments()
			}
			controller := call.NewController(source, prompt.NewOutput(os.Stderr), call.Connect, call.NewKeyring(cfg.SS58Prefix))
			controller.ToolName = cmd.Root().Name()
			controller.Timeout = cfg.Timeout

			result := controller.RunCallSession(cmd.Context(), call.Request{
				Pallet:      pallet,
				Extrinsic:   extrinsic,
				Storage:     storage,
				Args:        append(fragments, args...),
				URL:         cfg.URL,
				Suri:        suri,
				Tip:         cfg.Tip,
				SkipConfirm: skipConfirm,
			})
			if format != "" {
				out, err := printer(format, result)
				if err != nil {
					return err
				}
				fmt.Println(out)
			}
			// failures were already reported to the operator
			if err := result.Err(); err != nil {
				logrus.WithError(err).Debug("call session ended")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pallet, "pallet", "", "Name of the pallet, e.g. Balances.")
	cmd.Flags().StringVar(&extrinsic, "extrinsic", "", "Name of the extrinsic, e.g. transfer_keep_alive.")
	cmd.Flags().StringVar(&storage, "storage", "", "Name of a storage entry to read instead of calling an extrinsic.")
	cmd.Flags().StringArrayVar(&fragments, "args", nil, "Argument of the extrinsic, repeated in declared order.")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Submit without asking for confirmation.")
	cmd.Flags().StringVar(&format, "format", "", "Also print the result as json or yaml.")
	cmd.MarkFlagsMutuallyExclusive("extrinsic", "storage")
	setup.AddCallOverrideArgs(cmd)
	return cmd
}
