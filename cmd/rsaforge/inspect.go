package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var inspectSrc keySource

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a key and check its invariants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := inspectSrc.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printPayload(out, p)
		if !p.HasPrivate() {
			fmt.Fprintf(out, "check:    %s\n", color.YellowString("public key only, nothing to verify"))
			return nil
		}
		if _, err := p.KeyPair(); err != nil {
			fmt.Fprintf(out, "check:    %s\n", color.RedString("FAILED"))
			return err
		}
		fmt.Fprintf(out, "check:    %s\n", color.GreenString("ok"))
		return nil
	},
}

func init() {
	inspectSrc.register(inspectCmd)
}
