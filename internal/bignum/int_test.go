package bignum

import (
	"bytes"
	"errors"
	"math/big"
	"math/rand/v2"
	"testing"
)

func randomInt(r *rand.Rand, maxLimbs int) Int {
	n := r.IntN(maxLimbs + 1)
	mag := make(nat, n)
	for i := range mag {
		mag[i] = r.Uint32()
	}
	// Exercise sparse values too: high limbs with few bits, runs of zeros.
	if n > 1 && r.IntN(4) == 0 {
		mag[n-1] &= 0xff
	}
	if n > 2 && r.IntN(4) == 0 {
		mag[n/2] = 0
	}
	return makeInt(r.IntN(2) == 0, mag)
}

func toBig(x Int) *big.Int {
	b := new(big.Int).SetBytes(x.Bytes())
	if x.Sign() < 0 {
		b.Neg(b)
	}
	return b
}

func checkCanonical(t *testing.T, x Int) {
	t.Helper()
	if len(x.mag) > 0 && x.mag[len(x.mag)-1] == 0 {
		t.Fatalf("non-canonical magnitude %v", x.mag)
	}
	if len(x.mag) == 0 && x.neg {
		t.Fatalf("negative zero")
	}
}

func TestFromInt64(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, 1 << 32, -(1 << 32), 1<<63 - 1, -1 << 63}
	for _, v := range cases {
		x := FromInt64(v)
		checkCanonical(t, x)
		got, ok := x.Int64()
		if !ok || got != v {
			t.Fatalf("FromInt64(%d).Int64() = %d, %v", v, got, ok)
		}
		if x.String() != big.NewInt(v).String() {
			t.Fatalf("FromInt64(%d).String() = %s", v, x.String())
		}
	}
}

func TestUint64Bounds(t *testing.T) {
	x := FromUint64(^uint64(0))
	if v, ok := x.Uint64(); !ok || v != ^uint64(0) {
		t.Fatalf("Uint64() = %d, %v", v, ok)
	}
	if _, ok := x.Int64(); ok {
		t.Fatalf("Int64() of 2^64-1 should not fit")
	}
	if _, ok := x.AddSmall(1).Uint64(); ok {
		t.Fatalf("Uint64() of 2^64 should not fit")
	}
	if _, ok := FromInt64(-1).Uint64(); ok {
		t.Fatalf("Uint64() of -1 should not fit")
	}
}

func TestAddSubInverse(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		a := randomInt(r, 12)
		b := randomInt(r, 12)
		sum := a.Add(b)
		checkCanonical(t, sum)
		if got := sum.Sub(b); !got.Equal(a) {
			t.Fatalf("(%s + %s) - %s = %s", a, b, b, got)
		}
		want := new(big.Int).Add(toBig(a), toBig(b))
		if toBig(sum).Cmp(want) != 0 {
			t.Fatalf("%s + %s = %s, want %s", a, b, sum, want)
		}
	}
}

func TestMulCommutes(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		a := randomInt(r, 10)
		b := randomInt(r, 10)
		ab := a.Mul(b)
		checkCanonical(t, ab)
		if !ab.Equal(b.Mul(a)) {
			t.Fatalf("%s * %s is not commutative", a, b)
		}
		want := new(big.Int).Mul(toBig(a), toBig(b))
		if toBig(ab).Cmp(want) != 0 {
			t.Fatalf("%s * %s = %s, want %s", a, b, ab, want)
		}
	}
}

func TestSqrMatchesMul(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 300; i++ {
		a := randomInt(r, 20)
		if got, want := a.Sqr(), a.Mul(a); !got.Equal(want) {
			t.Fatalf("Sqr(%s) = %s, want %s", a, got, want)
		}
	}
	allOnes := makeInt(false, nat{0xffffffff, 0xffffffff, 0xffffffff})
	want := new(big.Int).Mul(toBig(allOnes), toBig(allOnes))
	if toBig(allOnes.Sqr()).Cmp(want) != 0 {
		t.Fatalf("Sqr of all-ones magnitude = %s, want %s", allOnes.Sqr(), want)
	}
}

func TestDivModEuclidean(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	for i := 0; i < 1000; i++ {
		a := randomInt(r, 16)
		b := randomInt(r, 8)
		if b.IsZero() {
			continue
		}
		q, rem, err := a.DivMod(b)
		if err != nil {
			t.Fatalf("DivMod(%s, %s): %v", a, b, err)
		}
		checkCanonical(t, q)
		checkCanonical(t, rem)
		if rem.Sign() < 0 || rem.CmpAbs(b) >= 0 {
			t.Fatalf("DivMod(%s, %s) remainder %s outside [0, |b|)", a, b, rem)
		}
		if back := q.Mul(b).Add(rem); !back.Equal(a) {
			t.Fatalf("q*b + r = %s, want %s", back, a)
		}
		wantQ, wantR := new(big.Int).DivMod(toBig(a), toBig(b), new(big.Int))
		if toBig(q).Cmp(wantQ) != 0 || toBig(rem).Cmp(wantR) != 0 {
			t.Fatalf("DivMod(%s, %s) = %s, %s; want %s, %s", a, b, q, rem, wantQ, wantR)
		}
		m, err := a.Mod(b)
		if err != nil || !m.Equal(rem) {
			t.Fatalf("Mod(%s, %s) = %s, %v; want %s", a, b, m, err, rem)
		}
	}
}

func TestDivModSigns(t *testing.T) {
	cases := []struct {
		a, b, q, r int64
	}{
		{7, 3, 2, 1},
		{-7, 3, -3, 2},
		{7, -3, -2, 1},
		{-7, -3, 3, 2},
		{-6, 3, -2, 0},
		{0, 5, 0, 0},
	}
	for _, tc := range cases {
		q, r, err := FromInt64(tc.a).DivMod(FromInt64(tc.b))
		if err != nil {
			t.Fatalf("DivMod(%d, %d): %v", tc.a, tc.b, err)
		}
		if !q.Equal(FromInt64(tc.q)) || !r.Equal(FromInt64(tc.r)) {
			t.Fatalf("DivMod(%d, %d) = %s, %s; want %d, %d", tc.a, tc.b, q, r, tc.q, tc.r)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	a := FromInt64(10)
	if _, _, err := a.DivMod(Zero()); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("DivMod by zero err = %v", err)
	}
	if _, err := a.Mod(Zero()); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("Mod by zero err = %v", err)
	}
	if _, err := a.Div(Zero()); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("Div by zero err = %v", err)
	}
	if _, _, err := a.DivModSmall(0); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("DivModSmall by zero err = %v", err)
	}
	if _, err := a.ModSmall(0); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("ModSmall by zero err = %v", err)
	}
}

func TestKnuthMatchesShiftSubtract(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	for i := 0; i < 500; i++ {
		a := randomInt(r, 24).mag
		b := randomInt(r, 12).mag
		if len(b) == 0 {
			continue
		}
		q1, r1 := natDivMod(a, b)
		q2, r2 := natDivModSlow(a, b)
		if cmpLimbs(q1, q2) != 0 || cmpLimbs(r1, r2) != 0 {
			t.Fatalf("natDivMod(%v, %v) = %v, %v; shift-subtract gives %v, %v", a, b, q1, r1, q2, r2)
		}
	}
}

func TestKnuthAddBackCase(t *testing.T) {
	// Limb pattern from Hacker's Delight that needs the add-back correction.
	a := MustParse("0x7fffffff800000000000000000000000")
	b := MustParse("0x800000000000000000000001")
	q, r, err := a.DivMod(b)
	if err != nil {
		t.Fatal(err)
	}
	wantQ, wantR := new(big.Int).DivMod(toBig(a), toBig(b), new(big.Int))
	if toBig(q).Cmp(wantQ) != 0 || toBig(r).Cmp(wantR) != 0 {
		t.Fatalf("DivMod = %s, %s; want %s, %s", q, r, wantQ, wantR)
	}
}

func TestOperandsAreNotMutated(t *testing.T) {
	a := MustParse("0x123456789abcdef0123456789abcdef")
	b := MustParse("0xfedcba987654321")
	aCopy := append(nat(nil), a.mag...)
	bCopy := append(nat(nil), b.mag...)
	_ = a.Add(b)
	_ = a.Sub(b)
	_ = a.Mul(b)
	_ = a.Sqr()
	_, _, _ = a.DivMod(b)
	_, _ = a.Lsh(5)
	_, _ = a.Rsh(5)
	_ = a.SetBit(3, 0)
	if cmpLimbs(a.mag, aCopy) != 0 || cmpLimbs(b.mag, bCopy) != 0 {
		t.Fatalf("operation mutated an operand")
	}
}

func TestBitQueries(t *testing.T) {
	x := MustParse("0b1011000")
	if x.BitLen() != 7 {
		t.Fatalf("BitLen = %d", x.BitLen())
	}
	if x.TrailingZeros() != 3 {
		t.Fatalf("TrailingZeros = %d", x.TrailingZeros())
	}
	if x.Bit(3) != 1 || x.Bit(2) != 0 || x.Bit(100) != 0 {
		t.Fatalf("Bit mismatch")
	}
	if !x.IsEven() || x.IsOdd() {
		t.Fatalf("parity mismatch")
	}
	y := Zero().SetBit(64, 1)
	if y.BitLen() != 65 || y.TrailingZeros() != 64 {
		t.Fatalf("SetBit(64) = %s", y.Text(16))
	}
	if !y.SetBit(64, 0).IsZero() {
		t.Fatalf("clearing the only bit should give zero")
	}
	if Zero().BitLen() != 0 {
		t.Fatalf("BitLen(0) != 0")
	}
}

func TestShifts(t *testing.T) {
	x := MustParse("0xdeadbeefcafebabe1234")
	for _, n := range []int{0, 1, 31, 32, 33, 64, 100} {
		l, err := x.Lsh(n)
		if err != nil {
			t.Fatal(err)
		}
		back, err := l.Rsh(n)
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(x) {
			t.Fatalf("(x << %d) >> %d = %s", n, n, back.Text(16))
		}
		want := new(big.Int).Lsh(toBig(x), uint(n))
		if toBig(l).Cmp(want) != 0 {
			t.Fatalf("x << %d = %s, want %s", n, l.Text(16), want.Text(16))
		}
	}
	if _, err := x.Lsh(-1); !errors.Is(err, ErrNegativeShift) {
		t.Fatalf("Lsh(-1) err = %v", err)
	}
	if r, _ := x.Rsh(1000); !r.IsZero() {
		t.Fatalf("Rsh past width = %s", r)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x01},
		{0x01, 0x00},
		{0xff, 0xee, 0xdd, 0xcc, 0xbb},
		[]byte("Welcome to RSA Encryption."),
	}
	for _, buf := range cases {
		x := FromBytes(buf)
		if got := x.Bytes(); !bytes.Equal(got, buf) {
			t.Fatalf("FromBytes(%x).Bytes() = %x", buf, got)
		}
	}
	// Leading zero bytes are dropped.
	if got := FromBytes([]byte{0, 0, 7}).Bytes(); !bytes.Equal(got, []byte{7}) {
		t.Fatalf("leading zeros kept: %x", got)
	}
	padded := FromInt64(0x0102).FillBytes(make([]byte, 4))
	if !bytes.Equal(padded, []byte{0, 0, 1, 2}) {
		t.Fatalf("FillBytes = %x", padded)
	}
}

func TestFillBytesPanicsWhenTooSmall(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	FromInt64(0x010203).FillBytes(make([]byte, 2))
}
