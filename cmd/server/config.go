package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yahyatoraman/pictionary/internal/game"
)

type Config struct {
	bind           string
	port           int
	allowedOrigins []string
	publicURL      string
	wordsFile      string
	maxPlayers     int
	turnTick       time.Duration
	settleDelay    time.Duration
	verbose        bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxPlayers < 2 {
		return fmt.Errorf("max-players must be at least 2: %d", c.maxPlayers)
	}
	if c.turnTick <= 0 {
		return fmt.Errorf("turn-tick must be positive: %s", c.turnTick)
	}
	if c.settleDelay < 0 {
		return fmt.Errorf("settle-delay must not be negative: %s", c.settleDelay)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PICTIONARY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "pictionary",
		Short:         "A server-authoritative real-time drawing and guessing game.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PICTIONARY_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 3000, "port to listen on (env: PICTIONARY_PORT)")
	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed to connect; empty allows all (env: PICTIONARY_ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "public join URL, served as a QR code at /qr (env: PICTIONARY_PUBLIC_URL)")
	fs.StringVar(&cfg.wordsFile, "words", "", "newline-delimited word pool file; empty uses the built-in pool (env: PICTIONARY_WORDS)")
	fs.IntVar(&cfg.maxPlayers, "max-players", game.DefaultMaxPlayers, "session capacity (env: PICTIONARY_MAX_PLAYERS)")
	fs.DurationVar(&cfg.turnTick, "turn-tick", game.DefaultTickEvery, "turn clock tick interval (env: PICTIONARY_TURN_TICK)")
	fs.DurationVar(&cfg.settleDelay, "settle-delay", game.DefaultSettleDelay, "pause between a turn ending and the next starting (env: PICTIONARY_SETTLE_DELAY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display debug output (env: PICTIONARY_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pictionary v{{.Version}}\n")

	return cmd
}
