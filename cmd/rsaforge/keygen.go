package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rsaforge/internal/keyfile"
	"rsaforge/internal/keyring"
	"rsaforge/internal/observ"
	"rsaforge/internal/rsa"
)

var keygenOpts struct {
	bits     int
	rounds   int
	parallel bool
	out      string
	pubOut   string
	store    bool
	label    string
	ui       string
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new RSA key pair",
	Long: `Generate a new RSA key pair. The key is written to --out when given and
added to the key ring when --store is set or no --out is given.`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

func init() {
	f := keygenCmd.Flags()
	f.IntVar(&keygenOpts.bits, "bits", 0, "key size in bits (default from config, 2048)")
	f.IntVar(&keygenOpts.rounds, "rounds", 0, "Miller-Rabin rounds per prime (default from config, 20)")
	f.BoolVar(&keygenOpts.parallel, "parallel", true, "search both primes concurrently")
	f.StringVarP(&keygenOpts.out, "out", "o", "", "write the key pair to this file")
	f.StringVar(&keygenOpts.pubOut, "pub", "", "also write the public key to this file")
	f.BoolVar(&keygenOpts.store, "store", false, "add the key to the key ring")
	f.StringVar(&keygenOpts.label, "label", "", "label stored with the key")
	f.StringVar(&keygenOpts.ui, "ui", "auto", "progress display (auto|on|off)")
}

func runKeygen(cmd *cobra.Command, _ []string) error {
	timer := observ.NewTimer()
	ctx := cmd.Context()

	phase := timer.Begin("config")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := rsa.Options{
		Bits:     cfg.Keygen.Bits,
		Rounds:   cfg.Keygen.Rounds,
		Parallel: cfg.Keygen.Parallel,
		Timings:  &rsa.Timings{},
	}
	if cmd.Flags().Changed("bits") {
		opts.Bits = keygenOpts.bits
	}
	if cmd.Flags().Changed("rounds") {
		opts.Rounds = keygenOpts.rounds
	}
	if cmd.Flags().Changed("parallel") {
		opts.Parallel = keygenOpts.parallel
	}
	showLive, err := liveView(keygenOpts.ui, opts.Bits, quiet(cmd), isTerminal(os.Stdout))
	if err != nil {
		return err
	}
	timer.End(phase, cfg.Path)

	phase = timer.Begin("keygen")
	var key *rsa.KeyPair
	if showLive {
		key, err = runKeygenWithUI(ctx, fmt.Sprintf("generating %d-bit key", opts.Bits), opts)
	} else {
		key, err = rsa.Generate(ctx, opts)
	}
	if err != nil {
		return fmt.Errorf("keygen: %w", err)
	}
	// With --parallel the stage sum exceeds the wall time of the phase.
	timer.End(phase, fmt.Sprintf("%d bits, stages %s", opts.Bits, opts.Timings.Sum(rsa.Stages...).Round(time.Microsecond)))
	for _, s := range rsa.Stages {
		if opts.Timings.Has(s) {
			timer.Add("keygen/"+string(s), opts.Timings.Duration(s), "")
		}
	}

	phase = timer.Begin("save")
	payload := keyfile.New(key, keygenOpts.label)
	if err := saveKey(ctx, cmd, payload); err != nil {
		return err
	}
	timer.End(phase, "")

	out := cmd.OutOrStdout()
	if !quiet(cmd) {
		printKeySummary(out, payload)
	}
	if showTimings(cmd) {
		fmt.Fprint(out, timer.Summary())
	}
	return nil
}

func saveKey(ctx context.Context, cmd *cobra.Command, p *keyfile.Payload) error {
	if keygenOpts.out != "" {
		if err := keyfile.Save(keygenOpts.out, p); err != nil {
			return fmt.Errorf("save key: %w", err)
		}
	}
	if keygenOpts.pubOut != "" {
		if err := keyfile.SavePublic(keygenOpts.pubOut, p); err != nil {
			return fmt.Errorf("save public key: %w", err)
		}
	}
	if keygenOpts.store || keygenOpts.out == "" {
		return withRing(cmd, func(r *keyring.Ring) error {
			return r.Put(ctx, p)
		})
	}
	return nil
}

func printKeySummary(out io.Writer, p *keyfile.Payload) {
	bold := color.New(color.Bold)
	fmt.Fprintf(out, "%s %s\n", color.GreenString("generated"), bold.Sprint(p.ID))
	fmt.Fprintf(out, "  bits:    %d\n", p.Bits)
	if p.Label != "" {
		fmt.Fprintf(out, "  label:   %s\n", p.Label)
	}
	if keygenOpts.out != "" {
		fmt.Fprintf(out, "  file:    %s\n", keygenOpts.out)
	}
	if keygenOpts.pubOut != "" {
		fmt.Fprintf(out, "  public:  %s\n", keygenOpts.pubOut)
	}
}
