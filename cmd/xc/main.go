package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cordialsys/xcall/cmd/xc/commands"
	"github.com/cordialsys/xcall/cmd/xc/setup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdXc() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "xc",
		Short:        "Manually interact with substrate chains",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setup.ArgsFromCmd(cmd)
			if err != nil {
				return err
			}
			setup.ConfigureLogger(args)

			cfg, err := setup.LoadCallConfig(args)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"url":     cfg.URL,
				"timeout": cfg.Timeout,
			}).Debug("config")

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			cmd.SetContext(setup.WrapCallConfig(parent, cfg))
			return nil
		},
	}
	setup.AddArgs(cmd)

	cmd.AddCommand(commands.CmdCall())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := CmdXc()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
