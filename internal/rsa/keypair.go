// Package rsa implements textbook RSA key generation, encryption and
// decryption over bignum.Int. No padding scheme is applied.
package rsa

import (
	"errors"
	"fmt"

	"rsaforge/internal/bignum"
	"rsaforge/internal/modarith"
)

// MinBits is the smallest accepted modulus size.
const MinBits = 16

var (
	// ErrMessageTooLarge indicates a message or ciphertext outside [0, n).
	ErrMessageTooLarge = errors.New("message out of range [0, n)")
	// ErrNotGenerated indicates use of a key pair that holds no key.
	ErrNotGenerated = errors.New("key pair not generated")
	// ErrKeySizeTooSmall indicates a requested size below MinBits.
	ErrKeySizeTooSmall = fmt.Errorf("key size must be at least %d bits", MinBits)
	// ErrInvalidKey indicates a key that fails structural validation.
	ErrInvalidKey = errors.New("invalid key")
)

// KeyPair holds the modulus and both exponents. The zero value holds no key;
// Encrypt and Decrypt on it return ErrNotGenerated.
type KeyPair struct {
	N    bignum.Int // modulus p*q
	E    bignum.Int // public exponent
	D    bignum.Int // private exponent, e^-1 mod phi
	Bits int        // requested size
}

// PublicKey is the shareable half of a KeyPair.
type PublicKey struct {
	N    bignum.Int
	E    bignum.Int
	Bits int
}

// Generated reports whether k holds a key.
func (k *KeyPair) Generated() bool {
	return k != nil && k.N.Sign() > 0
}

// Public returns the public half of k.
func (k *KeyPair) Public() PublicKey {
	return PublicKey{N: k.N, E: k.E, Bits: k.Bits}
}

// Encrypt returns m^e mod n.
func (k *KeyPair) Encrypt(m bignum.Int) (bignum.Int, error) {
	if !k.Generated() {
		return bignum.Int{}, ErrNotGenerated
	}
	return apply(m, k.E, k.N)
}

// Decrypt returns c^d mod n.
func (k *KeyPair) Decrypt(c bignum.Int) (bignum.Int, error) {
	if !k.Generated() {
		return bignum.Int{}, ErrNotGenerated
	}
	return apply(c, k.D, k.N)
}

// Encrypt returns m^e mod n.
func (p PublicKey) Encrypt(m bignum.Int) (bignum.Int, error) {
	if p.N.Sign() <= 0 {
		return bignum.Int{}, ErrNotGenerated
	}
	return apply(m, p.E, p.N)
}

// Validate checks the structure of a key restored from storage: 1 < e < n,
// 0 < d < n, and a probe message survives both round trips.
func (k *KeyPair) Validate() error {
	if !k.Generated() {
		return ErrNotGenerated
	}
	one := bignum.One()
	switch {
	case k.E.Cmp(one) <= 0 || k.E.Cmp(k.N) >= 0:
		return fmt.Errorf("%w: public exponent out of range", ErrInvalidKey)
	case k.D.Sign() <= 0 || k.D.Cmp(k.N) >= 0:
		return fmt.Errorf("%w: private exponent out of range", ErrInvalidKey)
	case k.N.BitLen() < MinBits-1:
		return fmt.Errorf("%w: modulus has %d bits", ErrInvalidKey, k.N.BitLen())
	}

	probe, err := bignum.FromInt64(0x5eed).Mod(k.N)
	if err != nil {
		return err
	}
	c, err := k.Encrypt(probe)
	if err != nil {
		return err
	}
	back, err := k.Decrypt(c)
	if err != nil {
		return err
	}
	if !back.Equal(probe) {
		return fmt.Errorf("%w: decrypt(encrypt(m)) != m", ErrInvalidKey)
	}
	s, err := k.Decrypt(probe)
	if err != nil {
		return err
	}
	if back, err = k.Encrypt(s); err != nil {
		return err
	}
	if !back.Equal(probe) {
		return fmt.Errorf("%w: encrypt(decrypt(m)) != m", ErrInvalidKey)
	}
	return nil
}

func apply(x, exp, n bignum.Int) (bignum.Int, error) {
	if x.Sign() < 0 || x.Cmp(n) >= 0 {
		return bignum.Int{}, ErrMessageTooLarge
	}
	return modarith.ModPow(x, exp, n)
}
