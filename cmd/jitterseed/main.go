package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/croftsec/jitterseed/internal/daemon"
	"github.com/croftsec/jitterseed/internal/procrand"
	"github.com/croftsec/jitterseed/internal/randdev"
)

const helpDescription = `
Feed the kernel CRNG with CPU timing jitter entropy.

jitterseed draws bytes from one or more jitterentropy collectors, mixes them
with a carried hidden state through two domain-separated SHA3-512
computations, and injects the result into the kernel entropy pool via
/dev/random. Injection requires superuser privilege.

Settings come from flags, JITTERSEED_* environment variables, or a TOML
config file (default ~/.jitterseed/config.toml); flags win over environment,
environment wins over file. The seed interval and force-reseed setting are
reloaded when the config file changes.
`

var exampleUsage = strings.TrimSpace(`
  jitterseed --interval 10s
  jitterseed --oneshot --force-reseed
  jitterseed status
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCmd() *cobra.Command {
	cfg := daemon.DefaultConfig()
	var cfgPath string
	var debugLog bool

	root := &cobra.Command{
		Use:     "jitterseed",
		Short:   "Feed the kernel CRNG with CPU timing jitter entropy",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debugLog {
				daemon.SetDebugLogging()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default ~/.jitterseed/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = daemon.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && daemon.FileExists(cfgFile) {
				fc, err := daemon.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := daemon.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				cfg.ConfigFile = cfgFile
			}

			if err := daemon.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			daemon.Logger().Info().
				Bool("oneshot", cfg.Oneshot).
				Dur("seed_interval", cfg.SeedInterval).
				Bool("force_reseed", cfg.ForceReseed).
				Int("sources", cfg.Sources).
				Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := daemon.Run(ctx, cfg); err != nil {
				if errors.Is(err, context.Canceled) {
					daemon.Logger().Info().Msg("received signal, stopping")
					return nil
				}
				return err
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: ~/.jitterseed/config.toml)")
	root.Flags().BoolVar(&cfg.Oneshot, "oneshot", cfg.Oneshot, "run a single mixing iteration and exit")
	root.Flags().DurationVar(&cfg.SeedInterval, "interval", cfg.SeedInterval, "sleep between mixing iterations")
	root.Flags().BoolVar(&cfg.ForceReseed, "force-reseed", cfg.ForceReseed, "force a kernel CRNG reseed after every injection")
	root.Flags().IntVar(&cfg.Sources, "sources", cfg.Sources, "number of independent jitter collectors to mix")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging")

	root.AddCommand(newStatusCmd(), newEntCntCmd(), newClearPoolCmd(), newReseedCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		daemon.Logger().Error().Err(err).Msg("jitterseed")
		os.Exit(1)
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print kernel CRNG statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proc := procrand.New()

			bootID, err := proc.BootID()
			if err != nil {
				return err
			}
			avail, err := proc.EntropyAvail()
			if err != nil {
				return err
			}
			poolSize, err := proc.PoolSize()
			if err != nil {
				return err
			}
			minReseed, err := proc.URandomMinReseedSecs()
			if err != nil {
				return err
			}
			wakeup, err := proc.WriteWakeupThreshold()
			if err != nil {
				return err
			}
			count, err := randdev.New().EntropyCount()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "boot_id:                 %s\n", bootID)
			fmt.Fprintf(out, "entropy_avail:           %d bits\n", avail)
			fmt.Fprintf(out, "poolsize:                %d bits\n", poolSize)
			fmt.Fprintf(out, "entropy_count:           %d bits\n", count)
			fmt.Fprintf(out, "urandom_min_reseed_secs: %d s\n", minReseed)
			fmt.Fprintf(out, "write_wakeup_threshold:  %d bits\n", wakeup)
			return nil
		},
	}
}

func newEntCntCmd() *cobra.Command {
	entcnt := &cobra.Command{
		Use:   "entcnt",
		Short: "Manage the kernel's entropy count",
	}

	entcnt.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current entropy count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := randdev.New().EntropyCount()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	})

	entcnt.AddCommand(&cobra.Command{
		Use:   "add <delta>",
		Short: "Add to (or subtract from) the entropy count (superuser only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("parse delta: %w", err)
			}
			return randdev.New().AddToEntropyCount(int32(delta))
		},
	})

	entcnt.AddCommand(&cobra.Command{
		Use:   "zap",
		Short: "Clear the entropy count to zero (superuser only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return randdev.New().ZapEntropyCount()
		},
	})

	return entcnt
}

func newClearPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clearpool",
		Short: "Clear the entropy pool and its counters (superuser only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return randdev.New().ClearPool()
		},
	}
}

func newReseedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reseed",
		Short: "Force the kernel CRNG to reseed from the pool (superuser only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return randdev.New().ForceReseed()
		},
	}
}
