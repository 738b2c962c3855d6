package bignum

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		dec  string
		hex  string
		fail bool
	}{
		{in: "0", dec: "0", hex: "0"},
		{in: "-0", dec: "0", hex: "0"},
		{in: "+42", dec: "42", hex: "2a"},
		{in: "-255", dec: "-255", hex: "-ff"},
		{in: "0xFF", dec: "255", hex: "ff"},
		{in: "0b1010", dec: "10", hex: "a"},
		{in: "0o17", dec: "15", hex: "f"},
		{in: "1_000_000_000_000", dec: "1000000000000", hex: "e8d4a51000"},
		{in: "340282366920938463463374607431768211456", dec: "340282366920938463463374607431768211456", hex: "100000000000000000000000000000000"},
		{in: "", fail: true},
		{in: "12a", fail: true},
		{in: "0x", fail: true},
		{in: "-", fail: true},
		{in: "0b102", fail: true},
	}
	for _, tc := range cases {
		x, err := Parse(tc.in)
		if tc.fail {
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Parse(%q) err = %v, want ErrParse", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got := x.String(); got != tc.dec {
			t.Fatalf("Parse(%q).String() = %q, want %q", tc.in, got, tc.dec)
		}
		if got := x.Text(16); got != tc.hex {
			t.Fatalf("Parse(%q).Text(16) = %q, want %q", tc.in, got, tc.hex)
		}
	}
}

func TestDecimalMatchesBig(t *testing.T) {
	s := "123456789012345678901234567890123456789012345678901234567890"
	x := MustParse(s)
	want, _ := new(big.Int).SetString(s, 10)
	if toBig(x).Cmp(want) != 0 {
		t.Fatalf("Parse(%s) = %s", s, toBig(x))
	}
	if x.String() != s {
		t.Fatalf("String() = %s", x.String())
	}
	if x.Text(2) != want.Text(2) || x.Text(8) != want.Text(8) {
		t.Fatalf("binary/octal mismatch")
	}
	// A value whose inner 9-digit groups have leading zeros.
	y := MustParse("1000000000000000001")
	if y.String() != "1000000000000000001" {
		t.Fatalf("String() = %s", y.String())
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustParse("not a number")
}
