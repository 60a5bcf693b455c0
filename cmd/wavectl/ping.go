package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/pkg/wave"
)

var pingCmd = &cobra.Command{
	Use:   "ping POINT",
	Short: "Ping a point and print its Pong reflection",
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

		reply, err := c.Ping(ctx, to, parseMethod(methodStr), substanceOf(body))
		if err != nil {
			return fmt.Errorf("ping %s: %w", args[0], err)
		}

		fmt.Printf("id:      %s\n", reply.Id)
		fmt.Printf("from:    %s\n", reply.From)
		if text, ok := reply.Body.ToText(); ok {
			fmt.Printf("body:    %s\n", text)
		} else {
			fmt.Printf("body:    <%s>\n", reply.Body.Kind)
		}
		return nil
	},
}

func init() {
	pingCmd.Flags().String("method", "Ext:ping", "Method as class:op, e.g. Http:GET")
	pingCmd.Flags().String("body", "", "Body text to send")
}

func substanceOf(body string) wave.Substance {
	if body == "" {
		return wave.Empty()
	}
	return wave.TextSubstance(body)
}
