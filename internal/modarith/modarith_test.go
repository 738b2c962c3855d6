package modarith

import (
	"errors"
	"math/big"
	"math/rand/v2"
	"testing"

	"rsaforge/internal/bignum"
)

func n(v int64) bignum.Int { return bignum.FromInt64(v) }

func toBig(x bignum.Int) *big.Int {
	b := new(big.Int).SetBytes(x.Bytes())
	if x.Sign() < 0 {
		b.Neg(b)
	}
	return b
}

func randomInt(r *rand.Rand, maxBytes int) bignum.Int {
	buf := make([]byte, 1+r.IntN(maxBytes))
	for i := range buf {
		buf[i] = byte(r.Uint32())
	}
	return bignum.FromBytes(buf)
}

func TestModPowSmall(t *testing.T) {
	cases := []struct {
		base, exp, mod, want int64
	}{
		{2, 10, 1000, 24},
		{3, 0, 7, 1},
		{10, 1, 7, 3},
		{2, 5, 1, 0},
		{0, 0, 5, 1},
		{0, 3, 5, 0},
		{-2, 3, 5, 2}, // (-8) mod 5
		{4, 13, 497, 445},
		{1, 65535, 7, 1},
	}
	for _, tc := range cases {
		got, err := ModPow(n(tc.base), n(tc.exp), n(tc.mod))
		if err != nil {
			t.Fatalf("ModPow(%d, %d, %d): %v", tc.base, tc.exp, tc.mod, err)
		}
		if !got.Equal(n(tc.want)) {
			t.Fatalf("ModPow(%d, %d, %d) = %s, want %d", tc.base, tc.exp, tc.mod, got, tc.want)
		}
	}
}

func TestModPowErrors(t *testing.T) {
	if _, err := ModPow(n(2), n(3), n(0)); !errors.Is(err, ErrInvalidModulus) {
		t.Fatalf("modulus 0 err = %v", err)
	}
	if _, err := ModPow(n(2), n(3), n(-7)); !errors.Is(err, ErrInvalidModulus) {
		t.Fatalf("modulus -7 err = %v", err)
	}
	if _, err := ModPow(n(2), n(-1), n(7)); !errors.Is(err, ErrNegativeExponent) {
		t.Fatalf("negative exponent err = %v", err)
	}
}

func TestModPowIdentities(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	for i := 0; i < 50; i++ {
		base := randomInt(r, 64)
		mod := randomInt(r, 64).AddSmall(2)
		zero, err := ModPow(base, bignum.Zero(), mod)
		if err != nil || !zero.Equal(bignum.One()) {
			t.Fatalf("ModPow(b, 0, m) = %s, %v", zero, err)
		}
		first, err := ModPow(base, bignum.One(), mod)
		if err != nil {
			t.Fatal(err)
		}
		want, _ := base.Mod(mod)
		if !first.Equal(want) {
			t.Fatalf("ModPow(b, 1, m) = %s, want %s", first, want)
		}
	}
}

func TestModPowMatchesBig(t *testing.T) {
	r := rand.New(rand.NewPCG(13, 14))
	for i := 0; i < 40; i++ {
		base := randomInt(r, 96)
		exp := randomInt(r, 96)
		mod := randomInt(r, 96).AddSmall(2)
		got, err := ModPow(base, exp, mod)
		if err != nil {
			t.Fatal(err)
		}
		want := new(big.Int).Exp(toBig(base), toBig(exp), toBig(mod))
		if toBig(got).Cmp(want) != 0 {
			t.Fatalf("ModPow mismatch for %s^%s mod %s: got %s want %s", base, exp, mod, got, want)
		}
	}
}

func TestExtendedGCD(t *testing.T) {
	cases := []struct{ a, b, g int64 }{
		{240, 46, 2},
		{46, 240, 2},
		{-240, 46, 2},
		{240, -46, 2},
		{-240, -46, 2},
		{17, 5, 1},
		{0, 9, 9},
		{9, 0, 9},
		{0, 0, 0},
	}
	for _, tc := range cases {
		g, x, y := ExtendedGCD(n(tc.a), n(tc.b))
		if !g.Equal(n(tc.g)) {
			t.Fatalf("ExtendedGCD(%d, %d) g = %s, want %d", tc.a, tc.b, g, tc.g)
		}
		if lhs := n(tc.a).Mul(x).Add(n(tc.b).Mul(y)); !lhs.Equal(g) {
			t.Fatalf("ExtendedGCD(%d, %d): a*x + b*y = %s, want %s", tc.a, tc.b, lhs, g)
		}
		if !GCD(n(tc.a), n(tc.b)).Equal(g) {
			t.Fatalf("GCD(%d, %d) != %s", tc.a, tc.b, g)
		}
	}
}

func TestExtendedGCDRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(15, 16))
	for i := 0; i < 200; i++ {
		a := randomInt(r, 48)
		b := randomInt(r, 48)
		g, x, y := ExtendedGCD(a, b)
		want := new(big.Int).GCD(nil, nil, toBig(a), toBig(b))
		if toBig(g).Cmp(want) != 0 {
			t.Fatalf("gcd(%s, %s) = %s, want %s", a, b, g, want)
		}
		if lhs := a.Mul(x).Add(b.Mul(y)); !lhs.Equal(g) {
			t.Fatalf("Bézout identity fails for %s, %s", a, b)
		}
	}
}

func TestModInverse(t *testing.T) {
	r := rand.New(rand.NewPCG(17, 18))
	checked := 0
	for checked < 100 {
		m := randomInt(r, 64).AddSmall(2)
		a := randomInt(r, 64)
		if !GCD(a, m).Equal(bignum.One()) {
			continue
		}
		checked++
		inv, err := ModInverse(a, m)
		if err != nil {
			t.Fatalf("ModInverse(%s, %s): %v", a, m, err)
		}
		if inv.Sign() < 0 || inv.Cmp(m) >= 0 {
			t.Fatalf("ModInverse(%s, %s) = %s outside [0, m)", a, m, inv)
		}
		prod, _ := a.Mul(inv).Mod(m)
		if !prod.Equal(bignum.One()) {
			t.Fatalf("a * ModInverse(a, m) mod m = %s", prod)
		}
	}
}

func TestModInverseErrors(t *testing.T) {
	if _, err := ModInverse(n(4), n(8)); !errors.Is(err, ErrNoInverse) {
		t.Fatalf("ModInverse(4, 8) err = %v", err)
	}
	if _, err := ModInverse(n(3), n(0)); !errors.Is(err, ErrInvalidModulus) {
		t.Fatalf("ModInverse(3, 0) err = %v", err)
	}
	if _, err := ModInverse(n(3), n(-5)); !errors.Is(err, ErrInvalidModulus) {
		t.Fatalf("ModInverse(3, -5) err = %v", err)
	}
	inv, err := ModInverse(n(-3), n(7))
	if err != nil || !inv.Equal(n(2)) {
		t.Fatalf("ModInverse(-3, 7) = %s, %v; want 2", inv, err)
	}
	inv, err = ModInverse(n(5), n(1))
	if err != nil || !inv.IsZero() {
		t.Fatalf("ModInverse(5, 1) = %s, %v; want 0", inv, err)
	}
}

func BenchmarkModPow1024(b *testing.B) {
	r := rand.New(rand.NewPCG(19, 20))
	base := randomInt(r, 128)
	exp := randomInt(r, 128)
	mod := randomInt(r, 128).SetBit(1023, 1).SetBit(0, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ModPow(base, exp, mod); err != nil {
			b.Fatal(err)
		}
	}
}
