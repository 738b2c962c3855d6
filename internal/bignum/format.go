package bignum

import (
	"fmt"
	"strings"
)

const digits = "0123456789abcdef"

// String returns the decimal representation of x.
func (x Int) String() string { return x.Text(10) }

// Text returns x in the given base (2, 8, 10 or 16), lower case, with a
// leading '-' for negative values and no base prefix.
func (x Int) Text(base int) string {
	if len(x.mag) == 0 {
		return "0"
	}
	var s string
	switch base {
	case 10:
		s = formatDecimal(x.mag)
	case 2, 8, 16:
		s = formatPow2(x.mag, base)
	default:
		return fmt.Sprintf("<unsupported base %d>", base)
	}
	if x.neg {
		return "-" + s
	}
	return s
}

// formatDecimal peels off nine decimal digits per single-limb division.
func formatDecimal(mag nat) string {
	const base = uint32(1_000_000_000)

	cur := mag
	var parts []uint32
	for len(cur) > 0 {
		q, r := natDivModSmall(cur, base)
		parts = append(parts, r)
		cur = q
	}

	var sb strings.Builder
	sb.Grow(len(parts) * 9)
	fmt.Fprintf(&sb, "%d", parts[len(parts)-1])
	for i := len(parts) - 2; i >= 0; i-- {
		fmt.Fprintf(&sb, "%09d", parts[i])
	}
	return sb.String()
}

func formatPow2(mag nat, base int) string {
	var shift uint
	switch base {
	case 2:
		shift = 1
	case 8:
		shift = 3
	default:
		shift = 4
	}
	mask := uint(base - 1)
	n := bitLenLimbs(mag)
	count := (n + int(shift) - 1) / int(shift)
	out := make([]byte, count)
	for i := 0; i < count; i++ {
		var d uint
		for b := uint(0); b < shift; b++ {
			d |= natBit(mag, i*int(shift)+int(b)) << b
		}
		out[count-1-i] = digits[d&mask]
	}
	return string(out)
}
