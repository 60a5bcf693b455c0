package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/pkg/wave"
)

// watchCmd approximates tailing search hits against a running mesh.
// pkg/client.Client has no streaming surface — Discover is a Star-local
// method, not a wire operation, and no server-push protocol exists on
// the fabric wire format — so watch re-ripples the same Ext:discover
// wave on an interval and prints a point's reply only when its text
// differs from the last one printed for that point (errors are printed
// every round). It is not a live tail, but it gives an operator the
// same information a tail would, polled rather than pushed.
var watchCmd = &cobra.Command{
	Use:   "watch POINT [POINT...]",
	Short: "Repeatedly ripple a discover wave and print hits as they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		surfaces := make([]wave.Recipients, 0, len(args))
		for _, a := range args {
			s, err := parseSurface(a)
			if err != nil {
				return err
			}
			surfaces = append(surfaces, wave.Single(s))
		}

		methodStr, _ := cmd.Flags().GetString("method")
		interval, _ := cmd.Flags().GetDuration("interval")

		c, ctx, cancel, err := connectPersistent(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer c.Close()

		method := parseMethod(methodStr)
		last := map[string]string{}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fmt.Printf("watching %d point(s) every %s, method %s — Ctrl+C to stop\n", len(args), interval, methodStr)
		for {
			for i, r := range surfaces {
				agg, err := c.Ripple(ctx, r, method, wave.Empty(), wave.CountBounce(1))
				if err != nil {
					fmt.Printf("%s  %-20s error: %v\n", time.Now().Format(time.TimeOnly), args[i], err)
					continue
				}
				w, ok := agg.First()
				if !ok {
					continue
				}
				text, _ := w.Body.ToText()
				if last[args[i]] == text {
					continue
				}
				last[args[i]] = text
				fmt.Printf("%s  %-20s %s\n", time.Now().Format(time.TimeOnly), args[i], text)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("method", "Ext:discover", "Method as class:op")
	watchCmd.Flags().Duration("interval", 2*time.Second, "Polling interval")
}
