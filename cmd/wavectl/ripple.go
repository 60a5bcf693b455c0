package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

var rippleCmd = &cobra.Command{
	Use:   "ripple POINT [POINT...]",
	Short: "Ripple a wave to one or more points and print every reflection collected",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		surfaces := make([]starid.Surface, 0, len(args))
		for _, a := range args {
			s, err := parseSurface(a)
			if err != nil {
				return err
			}
			surfaces = append(surfaces, s)
		}

		methodStr, _ := cmd.Flags().GetString("method")
		body, _ := cmd.Flags().GetString("body")
		bounceStr, _ := cmd.Flags().GetString("bounce")

		c, ctx, cancel, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer c.Close()

		agg, err := c.Ripple(ctx, wave.Multi(surfaces...), parseMethod(methodStr), substanceOf(body), parseBounce(bounceStr, len(surfaces)))
		if err != nil {
			return fmt.Errorf("ripple: %w", err)
		}

		if len(agg.Waves) == 0 {
			fmt.Println("no reflections collected")
			return nil
		}
		for i, w := range agg.Waves {
			fmt.Printf("[%d] from=%s body=%s\n", i+1, w.From, bodyText(w.Body))
		}
		return nil
	},
}

func init() {
	rippleCmd.Flags().String("method", "Ext:ping", "Method as class:op")
	rippleCmd.Flags().String("body", "", "Body text to send")
	rippleCmd.Flags().String("bounce", "count", "Bounce-backs policy: none, single, count, or a wait class (fast, med, slow)")
}

func bodyText(s wave.Substance) string {
	if text, ok := s.ToText(); ok {
		return text
	}
	return "<" + s.Kind.String() + ">"
}

func parseBounce(policy string, count int) wave.BounceBacks {
	switch strings.ToLower(policy) {
	case "none":
		return wave.NoBounce
	case "single":
		return wave.SingleBounce
	case "fast":
		return wave.TimerBounce(wave.WaitFast)
	case "med":
		return wave.TimerBounce(wave.WaitMed)
	case "slow":
		return wave.TimerBounce(wave.WaitSlow)
	default:
		return wave.CountBounce(count)
	}
}
