package main

import (
	"fmt"
	"strings"

	"apexarena/internal/config"
	"apexarena/internal/logger"
	"apexarena/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("APEX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "apexarena",
		Short:         "Multiplayer trading-decision game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logger.Init(cfg.LogLevel); err != nil {
				return err
			}
			return server.Run(*cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := config.Default()
	fs.StringVarP(&cfg.Bind, "bind", "b", defaults.Bind, "address to bind to (env: APEX_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", defaults.Port, "port to listen on (env: APEX_PORT)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection string, empty disables persistence (env: APEX_DATABASE_URL)")
	fs.DurationVar(&cfg.RevealDelay, "reveal-delay", defaults.RevealDelay, "pause between reveal and the next scenario (env: APEX_REVEAL_DELAY)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", defaults.MaxPlayers, "maximum players per room (env: APEX_MAX_PLAYERS)")
	fs.DurationVar(&cfg.StaleAfter, "stale-after", defaults.StaleAfter, "age at which idle rooms are swept (env: APEX_STALE_AFTER)")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn or error (env: APEX_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("apexarena v{{.Version}}\n")

	return cmd
}

func main() {
	cfg := config.Default()
	cobra.CheckErr(newCmd(&cfg).Execute())
}
