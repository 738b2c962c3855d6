package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"rsaforge/internal/rsa"
	"rsaforge/internal/ui"
)

// liveViewMinBits is the smallest key size auto mode shows the live view
// for; smaller keys are found before the first frame is drawn.
const liveViewMinBits = 512

var errNoTerminal = errors.New("--ui=on needs a terminal on stdout")

// liveView decides whether keygen renders the Bubble Tea progress view.
// mode is the --ui value: "off" and --quiet never show it, "on" insists on
// a terminal, and "auto" shows it on a terminal for keys of at least
// liveViewMinBits bits.
func liveView(mode string, bits int, quiet, tty bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "off":
		return false, nil
	case "on":
		if quiet {
			return false, nil
		}
		if !tty {
			return false, errNoTerminal
		}
		return true, nil
	case "", "auto":
		return !quiet && tty && bits >= liveViewMinBits, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", mode)
	}
}

type keygenOutcome struct {
	key *rsa.KeyPair
	err error
}

// runKeygenWithUI runs rsa.Generate in the background while a Bubble Tea
// program renders its progress events. Quitting the UI cancels generation.
func runKeygenWithUI(ctx context.Context, title string, opts rsa.Options) (*rsa.KeyPair, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan rsa.Event, 256)
	outcomeCh := make(chan keygenOutcome, 1)

	go func() {
		opts.Progress = rsa.ChannelSink{Ch: events}
		key, err := rsa.Generate(ctx, opts)
		outcomeCh <- keygenOutcome{key: key, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// The UI only quits early on ctrl+c; stop the search in that case.
	cancel()
	// Drain so the generator never blocks on a full channel after the UI quit.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if outcome.err != nil {
		return nil, outcome.err
	}
	return outcome.key, uiErr
}
