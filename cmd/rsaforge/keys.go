package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rsaforge/internal/bignum"
	"rsaforge/internal/keyfile"
	"rsaforge/internal/keyring"
)

var keysShowDump bool

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the key ring",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRing(cmd, func(r *keyring.Ring) error {
			entries, err := r.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				if !quiet(cmd) {
					fmt.Fprintln(out, "no keys stored")
				}
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBITS\tCREATED\tKIND\tLABEL")
			for _, e := range entries {
				kind := "private"
				if !e.Private {
					kind = "public"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", e.ID, e.Bits, e.Created.Local().Format(time.DateTime), kind, e.Label)
			}
			return tw.Flush()
		})
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRing(cmd, func(r *keyring.Ring) error {
			p, err := r.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if keysShowDump {
				spew.Fdump(cmd.OutOrStdout(), p)
				return nil
			}
			printPayload(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete stored keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRing(cmd, func(r *keyring.Ring) error {
			for _, id := range args {
				if err := r.Delete(cmd.Context(), id); err != nil {
					return err
				}
				if !quiet(cmd) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.RedString("deleted"), id)
				}
			}
			return nil
		})
	},
}

func init() {
	keysShowCmd.Flags().BoolVar(&keysShowDump, "dump", false, "dump the raw stored payload")
	keysCmd.AddCommand(keysListCmd, keysShowCmd, keysDeleteCmd)
}

func printPayload(out io.Writer, p *keyfile.Payload) {
	n := bignum.FromBytes(p.N)
	e := bignum.FromBytes(p.E)
	fmt.Fprintf(out, "id:       %s\n", p.ID)
	if p.Label != "" {
		fmt.Fprintf(out, "label:    %s\n", p.Label)
	}
	fmt.Fprintf(out, "created:  %s\n", p.Created.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "bits:     %d (n has %d)\n", p.Bits, n.BitLen())
	fmt.Fprintf(out, "private:  %v\n", p.HasPrivate())
	fmt.Fprintf(out, "n:        %s\n", n.Text(16))
	fmt.Fprintf(out, "e:        %s\n", e.Text(16))
}
