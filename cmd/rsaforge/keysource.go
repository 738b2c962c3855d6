package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rsaforge/internal/config"
	"rsaforge/internal/keyfile"
	"rsaforge/internal/keyring"
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	return config.Resolve(path, ".")
}

// withRing opens the configured key ring for the duration of fn.
func withRing(cmd *cobra.Command, fn func(*keyring.Ring) error) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ring, err := keyring.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open key ring: %w", err)
	}
	defer func() {
		if closeErr := ring.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(ring)
}

// keySource is the --key / --id pair shared by commands that need a key.
type keySource struct {
	path string
	id   string
}

func (s *keySource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.path, "key", "", "key file")
	cmd.Flags().StringVar(&s.id, "id", "", "key ring id")
	cmd.MarkFlagsMutuallyExclusive("key", "id")
}

func (s *keySource) load(ctx context.Context, cmd *cobra.Command) (*keyfile.Payload, error) {
	switch {
	case s.path != "":
		return keyfile.Load(s.path)
	case s.id != "":
		var p *keyfile.Payload
		err := withRing(cmd, func(r *keyring.Ring) error {
			var err error
			p, err = r.Get(ctx, s.id)
			return err
		})
		return p, err
	default:
		return nil, errors.New("one of --key or --id is required")
	}
}
