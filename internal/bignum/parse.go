package bignum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse indicates malformed numeric text.
var ErrParse = errors.New("invalid numeric format")

// Parse reads an integer with an optional sign, an optional 0x/0b/0o prefix
// and '_' digit separators. Without a prefix the text is decimal.
func Parse(s string) (Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Int{}, ErrParse
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	mag, err := parseMagnitude(s)
	if err != nil {
		return Int{}, err
	}
	return makeInt(neg, mag), nil
}

// MustParse is like Parse but panics on malformed input. It is meant for
// constants in tests and tables.
func MustParse(s string) Int {
	x, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("bignum: MustParse(%q): %v", s, err))
	}
	return x
}

func parseMagnitude(s string) (nat, error) {
	if s == "" {
		return nil, ErrParse
	}
	if strings.IndexByte(s, '_') >= 0 {
		s = strings.ReplaceAll(s, "_", "")
	}

	base := uint32(10)
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
			s = s[2:]
		case 'b', 'B':
			base = 2
			s = s[2:]
		case 'o', 'O':
			base = 8
			s = s[2:]
		default:
		}
	}
	if s == "" {
		return nil, ErrParse
	}

	var out nat
	for i := range len(s) {
		d, ok := digitValue(s[i], base)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrParse, s)
		}
		out = natAddSmall(natMulSmall(out, base), d)
	}
	return out, nil
}

func digitValue(ch byte, base uint32) (uint32, bool) {
	var d uint32
	switch {
	case ch >= '0' && ch <= '9':
		d = uint32(ch - '0')
	case ch >= 'a' && ch <= 'f':
		d = uint32(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		d = uint32(ch-'A') + 10
	default:
		return 0, false
	}
	return d, d < base
}
