package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rsaforge/internal/codec"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	runCleanups()
	return out.String(), err
}

func TestKeygenEncryptDecrypt(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rsaforge.toml")
	cfgBody := "[keygen]\nbits = 256\nrounds = 8\n\n[store]\npath = \"ring/keys.db\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o600); err != nil {
		t.Fatal(err)
	}
	keyPath := filepath.Join(dir, "id.rsak")
	pubPath := filepath.Join(dir, "id.pub")
	cipherPath := filepath.Join(dir, "msg.enc")
	plainPath := filepath.Join(dir, "msg.txt")

	out, err := execute(t, "--config", cfgPath, "--timings", "keygen", "--out", keyPath, "--pub", pubPath, "--store", "--label", "test", "--ui", "off")
	if err != nil {
		t.Fatalf("keygen: %v\n%s", err, out)
	}
	if !strings.Contains(out, "bits:    256") || !strings.Contains(out, "256 bits, stages") {
		t.Fatalf("keygen output:\n%s", out)
	}

	msg := "attack at dawn, or maybe after breakfast"
	if out, err := execute(t, "--config", cfgPath, "encrypt", "--key", pubPath, "--text", msg, "--out", cipherPath); err != nil {
		t.Fatalf("encrypt: %v\n%s", err, out)
	}
	if out, err := execute(t, "--config", cfgPath, "decrypt", "--key", keyPath, "--in", cipherPath, "--out", plainPath); err != nil {
		t.Fatalf("decrypt: %v\n%s", err, out)
	}
	got, err := os.ReadFile(plainPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != msg {
		t.Fatalf("decrypted %q, want %q", got, msg)
	}

	tampered := filepath.Join(dir, "tampered.enc")
	if err := os.WriteFile(tampered, []byte("9223372036854775807 0a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfgPath, "decrypt", "--key", keyPath, "--in", tampered, "--out", plainPath); !errors.Is(err, codec.ErrMalformed) {
		t.Fatalf("decrypt of tampered file err = %v, want ErrMalformed", err)
	}

	out, err = execute(t, "--config", cfgPath, "keys", "list")
	if err != nil {
		t.Fatalf("keys list: %v", err)
	}
	if !strings.Contains(out, "test") || !strings.Contains(out, "private") {
		t.Fatalf("keys list output:\n%s", out)
	}

	out, err = execute(t, "--config", cfgPath, "inspect", "--key", keyPath)
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	if !strings.Contains(out, "check:    ok") {
		t.Fatalf("inspect output:\n%s", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if payload.Tool != "rsaforge" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestLiveView(t *testing.T) {
	cases := []struct {
		mode  string
		bits  int
		quiet bool
		tty   bool
		want  bool
		err   bool
	}{
		{mode: "auto", bits: 2048, tty: true, want: true},
		{mode: "", bits: 2048, tty: true, want: true},
		{mode: "AUTO", bits: 256, tty: true, want: false},
		{mode: "auto", bits: 2048, tty: false, want: false},
		{mode: "auto", bits: 2048, quiet: true, tty: true, want: false},
		{mode: " on ", bits: 64, tty: true, want: true},
		{mode: "on", bits: 2048, tty: false, err: true},
		{mode: "on", bits: 2048, quiet: true, want: false},
		{mode: "off", bits: 4096, tty: true, want: false},
		{mode: "sometimes", bits: 2048, tty: true, err: true},
	}
	for _, tc := range cases {
		got, err := liveView(tc.mode, tc.bits, tc.quiet, tc.tty)
		if tc.err {
			if err == nil {
				t.Fatalf("liveView(%q, %d) succeeded", tc.mode, tc.bits)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("liveView(%q, %d, quiet=%v, tty=%v) = %v, %v; want %v", tc.mode, tc.bits, tc.quiet, tc.tty, got, err, tc.want)
		}
	}
}

func TestTraceKeyBits(t *testing.T) {
	if got := traceKeyBits(versionCmd); got != 0 {
		t.Fatalf("traceKeyBits(version) = %d, want 0", got)
	}
}
