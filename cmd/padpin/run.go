// Package main runs the padpin controller-to-cursor tool.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frudas24/padpin/internal/app"
	"github.com/frudas24/padpin/internal/config"
)

type rootOptions struct {
	configPath string
	debug      bool
}

// newRootCmd builds the command tree. Running without a subcommand runs the loop.
func newRootCmd(platform app.Platform) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "padpin",
		Short:         "Park the mouse cursor with a game controller button",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoop(cmd, opts, platform)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "settings file (default $PADPIN_CONFIG or "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the control loop (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoop(cmd, opts, platform)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List connected controllers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listDevices(cmd.OutOrStdout(), platform)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "monitors",
		Short: "List monitors and their bounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listMonitors(cmd.OutOrStdout(), platform)
		},
	})
	return root
}

// runLoop loads settings and blocks until interrupted or the primary device is removed.
func runLoop(cmd *cobra.Command, opts *rootOptions, platform app.Platform) error {
	log := newLogger(cmd.ErrOrStderr(), opts.debug)
	slog.SetDefault(log)

	path := config.ResolvePath(opts.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log.Debug("settings loaded", "path", path)

	a, err := app.New(cfg, platform, log)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close devices", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("running, press Ctrl+C to exit")
	if err := a.Run(ctx); err != nil {
		return err
	}
	log.Info("bye")
	return nil
}

// listDevices prints one line per detected controller.
func listDevices(w io.Writer, platform app.Platform) error {
	devices, err := platform.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(w, "no controllers found")
		return nil
	}
	for _, d := range devices {
		fmt.Fprintln(w, d.String())
	}
	return nil
}

// listMonitors prints one line per monitor.
func listMonitors(w io.Writer, platform app.Platform) error {
	monitors, err := platform.ListMonitors()
	if err != nil {
		return err
	}
	for _, m := range monitors {
		primary := ""
		if m.Primary {
			primary = " primary"
		}
		fmt.Fprintf(w, "[%d] x=%d y=%d w=%d h=%d%s\n", m.Index, m.X, m.Y, m.W, m.H, primary)
	}
	return nil
}

// newLogger returns a text logger; DEBUG=1 also enables debug output.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") == "1" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
