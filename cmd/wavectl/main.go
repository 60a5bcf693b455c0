// Command wavectl is a diagnostic CLI for a running mesh: it pings or
// ripples a point and prints whatever reflects back. It is not the
// rich interactive shell Starlane ships — wavectl is a thin,
// flag-driven client over pkg/client, the way cmd/warren's own CLI
// subcommands are thin wrappers over pkg/client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/pkg/client"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

var (
	Version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "wavectl",
	Short:   "wavectl sends diagnostic waves against a running Starlane mesh",
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().String("addr", "127.0.0.1:7950", "Fabric address of any star to connect through")
	rootCmd.PersistentFlags().String("ca-dir", "", "Directory holding the mesh CA certificate (ca.crt) to trust (required)")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Exchange timeout")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(rippleCmd)
	rootCmd.AddCommand(signalCmd)
	rootCmd.AddCommand(watchCmd)
}

// connect dials addr using the persistent flags every subcommand
// shares.
func connect(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc, error) {
	addr, _ := cmd.Flags().GetString("addr")
	caDir, _ := cmd.Flags().GetString("ca-dir")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if caDir == "" {
		return nil, nil, nil, fmt.Errorf("--ca-dir is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	c, err := client.Connect(ctx, addr, caDir)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return c, ctx, cancel, nil
}

// connectPersistent dials the same way connect does but scopes the
// context to process lifetime (cancelled on SIGINT/SIGTERM) rather than
// --timeout, for subcommands like watch that run indefinitely.
func connectPersistent(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc, error) {
	addr, _ := cmd.Flags().GetString("addr")
	caDir, _ := cmd.Flags().GetString("ca-dir")

	if caDir == "" {
		return nil, nil, nil, fmt.Errorf("--ca-dir is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	c, err := client.Connect(ctx, addr, caDir)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return c, ctx, cancel, nil
}

// parseMethod parses "class:op" (e.g. "Http:GET", "Ext:discover") into
// a wave.Method, defaulting to the Ext namespace when no class prefix
// is given or the prefix is not one of hyp, cmd or http.
func parseMethod(s string) wave.Method {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) == 1 {
		return wave.Method{Class: wave.MethodExt, Op: parts[0]}
	}
	class := wave.MethodExt
	switch strings.ToLower(parts[0]) {
	case "hyp":
		class = wave.MethodHyp
	case "cmd":
		class = wave.MethodCmd
	case "http":
		class = wave.MethodHttp
	case "ext":
		class = wave.MethodExt
	}
	return wave.Method{Class: class, Op: parts[1]}
}

func parseSurface(s string) (starid.Surface, error) {
	point, err := starid.ParsePoint(s)
	if err != nil {
		return starid.Surface{}, fmt.Errorf("parse point %q: %w", s, err)
	}
	return starid.NewSurface(point, starid.LayerCore, starid.NoTopic), nil
}
