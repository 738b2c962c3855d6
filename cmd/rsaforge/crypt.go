package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rsaforge/internal/codec"
	"rsaforge/internal/trace"
)

var encryptOpts struct {
	src  keySource
	text string
	in   string
	out  string
}

var decryptOpts struct {
	src keySource
	in  string
	out string
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt text or a file with a public key",
	Long: `Encrypt text or a file. The payload is split into blocks smaller than the
modulus; each output line holds the plaintext length and the ciphertext in hex.
Without --text or --in the payload is read from stdin.`,
	Args: cobra.NoArgs,
	RunE: runEncrypt,
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt the output of encrypt with a private key",
	Args:  cobra.NoArgs,
	RunE:  runDecrypt,
}

func init() {
	encryptOpts.src.register(encryptCmd)
	encryptCmd.Flags().StringVarP(&encryptOpts.text, "text", "t", "", "text to encrypt (NFC-normalised)")
	encryptCmd.Flags().StringVarP(&encryptOpts.in, "in", "i", "", "file to encrypt")
	encryptCmd.Flags().StringVarP(&encryptOpts.out, "out", "o", "", "output file (default stdout)")
	encryptCmd.MarkFlagsMutuallyExclusive("text", "in")

	decryptOpts.src.register(decryptCmd)
	decryptCmd.Flags().StringVarP(&decryptOpts.in, "in", "i", "", "ciphertext file (default stdin)")
	decryptCmd.Flags().StringVarP(&decryptOpts.out, "out", "o", "", "output file (default stdout)")
}

func runEncrypt(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	p, err := encryptOpts.src.load(ctx, cmd)
	if err != nil {
		return err
	}
	pub := p.PublicKey()

	var data []byte
	switch {
	case cmd.Flags().Changed("text"):
		data = codec.TextToBytes(encryptOpts.text)
	default:
		if data, err = readInput(cmd, encryptOpts.in); err != nil {
			return err
		}
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeKeygen, "encrypt", trace.CurrentSpan(ctx))
	blocks, err := codec.Split(data, pub.N)
	if err != nil {
		span.End(err.Error())
		return err
	}
	enc, err := codec.Map(blocks, pub.Encrypt)
	span.WithExtra("blocks", fmt.Sprint(len(blocks))).End("")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := codec.WriteBlocks(&buf, enc); err != nil {
		return err
	}
	return writeOutput(cmd, encryptOpts.out, buf.Bytes())
}

func runDecrypt(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	p, err := decryptOpts.src.load(ctx, cmd)
	if err != nil {
		return err
	}
	key, err := p.KeyPair()
	if err != nil {
		return err
	}

	raw, err := readInput(cmd, decryptOpts.in)
	if err != nil {
		return err
	}
	blocks, err := codec.ReadBlocks(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeKeygen, "decrypt", trace.CurrentSpan(ctx))
	dec, err := codec.Map(blocks, key.Decrypt)
	span.WithExtra("blocks", fmt.Sprint(len(blocks))).End("")
	if err != nil {
		return err
	}
	plain, err := codec.Join(dec, key.N)
	if err != nil {
		return fmt.Errorf("wrong key or corrupted ciphertext: %w", err)
	}
	return writeOutput(cmd, decryptOpts.out, plain)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input file %s does not exist", path)
	}
	return data, err
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
