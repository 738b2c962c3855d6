// Package keyfile stores RSA keys as msgpack documents on disk.
package keyfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"rsaforge/internal/bignum"
	"rsaforge/internal/rsa"
)

// Current schema version - increment when Payload format changes.
const schemaVersion uint16 = 1

var (
	// ErrSchema indicates a payload written by an incompatible version.
	ErrSchema = errors.New("unsupported key file schema")
	// ErrNoPrivateKey indicates a public-only payload where a private key is needed.
	ErrNoPrivateKey = errors.New("key file holds no private exponent")
)

// Payload is the on-disk form of a key. Integers are big-endian magnitudes.
type Payload struct {
	Schema  uint16
	ID      string
	Label   string
	Bits    int
	N       []byte
	E       []byte
	D       []byte // empty for public-only files
	Created time.Time
}

// New wraps k in a payload with a fresh random ID.
func New(k *rsa.KeyPair, label string) *Payload {
	return &Payload{
		Schema:  schemaVersion,
		ID:      uuid.NewString(),
		Label:   label,
		Bits:    k.Bits,
		N:       k.N.Bytes(),
		E:       k.E.Bytes(),
		D:       k.D.Bytes(),
		Created: time.Now().UTC(),
	}
}

// HasPrivate reports whether the payload carries d.
func (p *Payload) HasPrivate() bool { return len(p.D) > 0 }

// PublicOnly returns a copy of p without the private exponent.
func (p *Payload) PublicOnly() *Payload {
	cp := *p
	cp.D = nil
	return &cp
}

// KeyPair rebuilds and validates the full key.
func (p *Payload) KeyPair() (*rsa.KeyPair, error) {
	if !p.HasPrivate() {
		return nil, ErrNoPrivateKey
	}
	k := &rsa.KeyPair{
		N:    bignum.FromBytes(p.N),
		E:    bignum.FromBytes(p.E),
		D:    bignum.FromBytes(p.D),
		Bits: p.Bits,
	}
	if err := k.Validate(); err != nil {
		return nil, fmt.Errorf("key %s: %w", p.ID, err)
	}
	return k, nil
}

// PublicKey returns the public half.
func (p *Payload) PublicKey() rsa.PublicKey {
	return rsa.PublicKey{N: bignum.FromBytes(p.N), E: bignum.FromBytes(p.E), Bits: p.Bits}
}

// Marshal encodes p with msgpack.
func Marshal(p *Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data and checks the schema version.
func Unmarshal(data []byte) (*Payload, error) {
	var p Payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, p.Schema, schemaVersion)
	}
	if len(p.N) == 0 || len(p.E) == 0 {
		return nil, fmt.Errorf("key %s: missing modulus or exponent", p.ID)
	}
	return &p, nil
}

// Save writes p to path atomically with owner-only permissions.
func Save(path string, p *Payload) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".rsaforge-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmp) //nolint:errcheck
		}
	}()

	if err := f.Chmod(0o600); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	ok = true
	return nil
}

// SavePublic writes the public half of p to path.
func SavePublic(path string, p *Payload) error {
	return Save(path, p.PublicOnly())
}

// Load reads a payload from path.
func Load(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadKeyPair reads path and returns the validated private key.
func LoadKeyPair(path string) (*rsa.KeyPair, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	k, err := p.KeyPair()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return k, nil
}

// LoadPublic reads path and returns its public key. Private files work too.
func LoadPublic(path string) (rsa.PublicKey, error) {
	p, err := Load(path)
	if err != nil {
		return rsa.PublicKey{}, err
	}
	return p.PublicKey(), nil
}
