package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/cordialsys/xcall/config"
	"github.com/cordialsys/xcall/config/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type ContextKey string

const ContextCallConfig ContextKey = "call-config"

func WrapCallConfig(ctx context.Context, cfg *config.CallConfig) context.Context {
	return context.WithValue(ctx, ContextCallConfig, cfg)
}

func UnwrapCallConfig(ctx context.Context) *config.CallConfig {
	return ctx.Value(ContextCallConfig).(*config.CallConfig)
}

func ConfigureLogger(args *Args) {
	config.ConfigureLogger()
	if args.VerbosityCount == 0 && os.Getenv(config.LogLevelEnv) == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	if args.VerbosityCount == 1 {
		logrus.SetLevel(logrus.InfoLevel)
	}
	if args.VerbosityCount == 2 {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if args.VerbosityCount >= 3 {
		logrus.SetLevel(logrus.TraceLevel)
	}
}

type Args struct {
	VerbosityCount int
	// Path to an xcall.yaml, otherwise it is searched for
	ConfigPath string
	// .env files to load
	EnvFiles []string
}

func AddArgs(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", fmt.Sprintf("Path to xcall.yaml configuration (may set %s).", constants.ConfigEnv))
	cmd.PersistentFlags().StringSlice("env-file", nil, "Load environment from these files. Default is .env if present.")
	cmd.PersistentFlags().CountP("verbose", "v", "Set verbosity.")
}

func ArgsFromCmd(cmd *cobra.Command) (*Args, error) {
	count, _ := cmd.Flags().GetCount("verbose")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	envFiles, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, err
	}
	return &Args{
		VerbosityCount: count,
		ConfigPath:     configPath,
		EnvFiles:       envFiles,
	}, nil
}

// LoadCallConfig loads the environment and then the configuration it may point to
func LoadCallConfig(args *Args) (*config.CallConfig, error) {
	config.LoadDotEnv(args.EnvFiles...)
	if args.ConfigPath != "" {
		// the config loader is located by env
		_ = os.Setenv(constants.ConfigEnv, args.ConfigPath)
	}
	return config.LoadCallConfig()
}
