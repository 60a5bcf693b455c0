package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var signalCmd = &cobra.Command{
	Use:   "signal POINT",
	Short: "Send a fire-and-forget signal to a point, expecting no reflection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseSurface(args[0])
		if err != nil {
			return err
		}
		methodStr, _ := cmd.Flags().GetString("method")
		body, _ := cmd.Flags().GetString("body")

		c, ctx, cancel, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer c.Close()

		if err := c.Signal(ctx, to, parseMethod(methodStr), substanceOf(body)); err != nil {
			return fmt.Errorf("signal %s: %w", args[0], err)
		}
		fmt.Println("✓ signal sent")
		return nil
	},
}

func init() {
	signalCmd.Flags().String("method", "Ext:notify", "Method as class:op")
	signalCmd.Flags().String("body", "", "Body text to send")
}
