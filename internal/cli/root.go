package cli

import (
	"github.com/soyeahso/botline/internal/config"
	"github.com/soyeahso/botline/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "botline",
		Short: "botline — streaming Direct Line conversation client",
		Long:  "botline maintains one live bot conversation: it starts or resumes the session, keeps the push channel open, and merges everything into a single ordered timeline.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.botline/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newTokenCmd())

	return cmd
}

// resolveLogLevel picks the effective level: the --log-level flag wins,
// then the configured level, then info.
func resolveLogLevel(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Logging.Level != "" {
		return cfg.Logging.Level
	}
	return "info"
}

// loadConfig reads the config file and finishes logger setup with the
// configured level, which the pre-run hook could not see yet.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	log = logging.New(nil, resolveLogLevel(logLevel, cfg))
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
