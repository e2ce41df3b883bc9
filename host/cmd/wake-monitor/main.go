// Command wake-monitor reads trace frames from a board over serial and
// logs every alarm and GPIO wake event.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wakebridge/host/config"
	"wakebridge/host/logger"
	"wakebridge/host/monitor"
	"wakebridge/host/serial"
	"wakebridge/protocol"
)

var (
	configPath  string
	device      string
	baud        int
	readTimeout time.Duration
	logLevel    string

	rootCmd = &cobra.Command{
		Use:   "wake-monitor",
		Short: "Decode and log trace frames streamed by a wakebridge board.",
		Long: `Opens the board's trace UART and logs each alarm allocation, arm,
fire and GPIO wait as it arrives.

Settings come from a YAML file. Flags given on the command line override it.
A missing settings file is not an error when --device is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			return run(ctx, cfg)
		},
	}

	initCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write a settings file with default values.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			cfg := config.Default()
			applyFlags(cmd, cfg)

			if err := config.Save(path, cfg); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the trace wire format version.",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "wire format:", protocol.Version)
		},
	}
)

func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && cmd.Flags().Changed("device"):
		cfg = config.Default()
	default:
		return nil, err
	}

	applyFlags(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Device = device
	}
	if flags.Changed("baud") {
		cfg.Baud = baud
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout = readTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	ctx = logger.WithKV(ctx, "device", cfg.Device)

	port, err := serial.Open(serial.FromConfig(cfg))
	if err != nil {
		return err
	}
	defer port.Close()

	if err := port.Flush(); err != nil {
		logger.WarnKV(ctx, "flush serial input", "error", err)
	}

	logger.InfoKV(ctx, "monitoring trace stream", "baud", cfg.Baud, "wire_format", protocol.Version)

	m := monitor.New(port, monitor.WithFollow())
	if err := m.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "trace stream failed", "error", err, "frames", m.Stats().Frames)
		return err
	}

	s := m.Stats()
	logger.InfoKV(ctx, "monitor stopped",
		"frames", s.Frames, "events", s.Events, "dropped", s.Dropped, "lost", s.Lost)

	return nil
}

//nolint:gochecknoinits // cobra wiring
func init() {
	for _, c := range []*cobra.Command{rootCmd, initCmd} {
		c.Flags().StringVarP(&device, "device", "d", config.DefaultDevice, "serial device the board is attached to")
		c.Flags().IntVarP(&baud, "baud", "b", config.DefaultBaud, "UART baud rate")
		c.Flags().DurationVar(&readTimeout, "read-timeout", config.DefaultReadTimeout, "timeout for a single serial read")
		c.Flags().StringVarP(&logLevel, "log-level", "l", config.DefaultLogLevel, "debug, info, warn or error")
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to settings file")

	rootCmd.AddCommand(initCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
