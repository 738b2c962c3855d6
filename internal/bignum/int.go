// Package bignum implements immutable arbitrary-precision signed integers.
//
// An Int is a sign plus a base-2^32 little-endian magnitude with no high zero
// limbs, so every value has exactly one representation. Operations never
// modify their receiver or arguments; an Int may be shared between goroutines
// without synchronisation.
//
// Division is Euclidean: for b != 0, DivMod returns the unique q, r with
// a = q*b + r and 0 <= r < |b|.
package bignum

import "errors"

var (
	// ErrDivisionByZero indicates an attempt to divide by zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNegativeShift indicates a shift by a negative bit count.
	ErrNegativeShift = errors.New("negative shift")
)

// Int is an immutable arbitrary-precision signed integer. The zero value is 0.
type Int struct {
	neg bool
	mag nat
}

// Zero returns 0.
func Zero() Int { return Int{} }

// One returns 1.
func One() Int { return Int{mag: nat{1}} }

// FromInt64 creates an Int from an int64.
func FromInt64(v int64) Int {
	if v >= 0 {
		return Int{mag: natFromUint64(uint64(v))}
	}
	u := uint64(-(v + 1)) //nolint:gosec // G115: -(v+1) is non-negative and fits in uint64 here.
	u++
	return Int{neg: true, mag: natFromUint64(u)}
}

// FromUint64 creates an Int from a uint64.
func FromUint64(v uint64) Int {
	return Int{mag: natFromUint64(v)}
}

func makeInt(neg bool, mag nat) Int {
	mag = trimLimbs(mag)
	if len(mag) == 0 {
		return Int{}
	}
	return Int{neg: neg, mag: mag}
}

// Sign returns -1, 0 or +1.
func (x Int) Sign() int {
	switch {
	case len(x.mag) == 0:
		return 0
	case x.neg:
		return -1
	default:
		return 1
	}
}

// IsZero reports whether x == 0.
func (x Int) IsZero() bool { return len(x.mag) == 0 }

// IsOdd reports whether x is odd.
func (x Int) IsOdd() bool { return len(x.mag) > 0 && x.mag[0]&1 == 1 }

// IsEven reports whether x is even.
func (x Int) IsEven() bool { return !x.IsOdd() }

// BitLen returns the number of significant bits of |x|. BitLen of 0 is 0.
func (x Int) BitLen() int { return bitLenLimbs(x.mag) }

// Bit returns bit i of |x| (0 or 1).
func (x Int) Bit(i int) uint { return natBit(x.mag, i) }

// TrailingZeros returns the number of trailing zero bits of |x|, 0 for x == 0.
func (x Int) TrailingZeros() int { return natTrailingZeros(x.mag) }

// Cmp compares x and y and returns -1, 0 or +1.
func (x Int) Cmp(y Int) int {
	switch {
	case x.Sign() != y.Sign():
		if x.Sign() < y.Sign() {
			return -1
		}
		return 1
	case x.neg:
		return -cmpLimbs(x.mag, y.mag)
	default:
		return cmpLimbs(x.mag, y.mag)
	}
}

// CmpAbs compares |x| and |y|.
func (x Int) CmpAbs(y Int) int { return cmpLimbs(x.mag, y.mag) }

// Equal reports whether x == y.
func (x Int) Equal(y Int) bool { return x.Cmp(y) == 0 }

// Int64 converts x to int64 if it fits.
func (x Int) Int64() (int64, bool) {
	mag, ok := x.absUint64()
	if !ok {
		return 0, false
	}
	if !x.neg {
		if mag > 1<<63-1 {
			return 0, false
		}
		return int64(mag), true
	}
	// Negative: allow magnitude up to 2^63.
	if mag > 1<<63 {
		return 0, false
	}
	if mag == 1<<63 {
		return -1 << 63, true
	}
	return -int64(mag), true
}

// Uint64 converts x to uint64 if it is non-negative and fits.
func (x Int) Uint64() (uint64, bool) {
	if x.neg {
		return 0, false
	}
	return x.absUint64()
}

func (x Int) absUint64() (uint64, bool) {
	switch len(x.mag) {
	case 0:
		return 0, true
	case 1:
		return uint64(x.mag[0]), true
	case 2:
		return uint64(x.mag[0]) | uint64(x.mag[1])<<32, true
	default:
		return 0, false
	}
}

// Neg returns -x.
func (x Int) Neg() Int { return makeInt(!x.neg, x.mag) }

// Abs returns |x|.
func (x Int) Abs() Int { return makeInt(false, x.mag) }

// Add returns x + y.
func (x Int) Add(y Int) Int {
	if x.neg == y.neg {
		return makeInt(x.neg, natAdd(x.mag, y.mag))
	}
	switch cmpLimbs(x.mag, y.mag) {
	case 0:
		return Int{}
	case 1:
		return makeInt(x.neg, natSub(x.mag, y.mag))
	default:
		return makeInt(y.neg, natSub(y.mag, x.mag))
	}
}

// Sub returns x - y.
func (x Int) Sub(y Int) Int { return x.Add(y.Neg()) }

// AddSmall returns x + v.
func (x Int) AddSmall(v uint32) Int {
	if !x.neg {
		return makeInt(false, natAddSmall(x.mag, v))
	}
	return x.Add(Int{mag: natFromUint64(uint64(v))})
}

// Mul returns x * y.
func (x Int) Mul(y Int) Int {
	return makeInt(x.neg != y.neg, natMul(x.mag, y.mag))
}

// Sqr returns x * x.
func (x Int) Sqr() Int { return makeInt(false, natSqr(x.mag)) }

// MulSmall returns x * m.
func (x Int) MulSmall(m uint32) Int { return makeInt(x.neg, natMulSmall(x.mag, m)) }

// DivMod returns the Euclidean quotient and remainder of x / y:
// x = q*y + r with 0 <= r < |y|.
func (x Int) DivMod(y Int) (q, r Int, err error) {
	if y.IsZero() {
		return Int{}, Int{}, ErrDivisionByZero
	}
	qm, rm := natDivMod(x.mag, y.mag)
	q = makeInt(x.neg != y.neg, qm)
	r = makeInt(false, rm)
	if x.neg && !r.IsZero() {
		// Truncated division left r in (-|y|, 0); shift it into [0, |y|).
		r = makeInt(false, natSub(y.mag, rm))
		if y.neg {
			q = q.AddSmall(1)
		} else {
			q = q.Add(FromInt64(-1))
		}
	}
	return q, r, nil
}

// Div returns the Euclidean quotient x / y.
func (x Int) Div(y Int) (Int, error) {
	q, _, err := x.DivMod(y)
	return q, err
}

// Mod returns the Euclidean remainder of x / y, always in [0, |y|).
func (x Int) Mod(y Int) (Int, error) {
	if y.IsZero() {
		return Int{}, ErrDivisionByZero
	}
	_, rm := natDivMod(x.mag, y.mag)
	if x.neg && len(rm) > 0 {
		return makeInt(false, natSub(y.mag, rm)), nil
	}
	return makeInt(false, rm), nil
}

// DivModSmall divides |x| by d and returns the quotient magnitude and the
// remainder. It is the fast path used for decimal formatting and trial
// division; the sign of x is carried on the quotient.
func (x Int) DivModSmall(d uint32) (Int, uint32, error) {
	if d == 0 {
		return Int{}, 0, ErrDivisionByZero
	}
	q, r := natDivModSmall(x.mag, d)
	return makeInt(x.neg, q), r, nil
}

// ModSmall returns |x| mod d.
func (x Int) ModSmall(d uint32) (uint32, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	var rem uint64
	for i := len(x.mag) - 1; i >= 0; i-- {
		rem = (rem<<limbBits | uint64(x.mag[i])) % uint64(d)
	}
	return uint32(rem), nil //nolint:gosec // G115: remainder is below d.
}

// Lsh returns |x| << n with the sign of x.
func (x Int) Lsh(n int) (Int, error) {
	if n < 0 {
		return Int{}, ErrNegativeShift
	}
	return makeInt(x.neg, natShl(x.mag, uint(n))), nil
}

// Rsh returns |x| >> n with the sign of x (the magnitude is truncated).
func (x Int) Rsh(n int) (Int, error) {
	if n < 0 {
		return Int{}, ErrNegativeShift
	}
	return makeInt(x.neg, natShr(x.mag, uint(n))), nil
}

// SetBit returns a copy of x with bit i of the magnitude set to b.
func (x Int) SetBit(i int, b uint) Int {
	if i < 0 {
		return x
	}
	w := i / limbBits
	n := len(x.mag)
	if w >= n {
		if b == 0 {
			return x
		}
		n = w + 1
	}
	out := make(nat, n)
	copy(out, x.mag)
	mask := uint32(1) << (uint(i) % limbBits)
	if b == 0 {
		out[w] &^= mask
	} else {
		out[w] |= mask
	}
	return makeInt(x.neg, out)
}
