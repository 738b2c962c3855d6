package bignum

import "math/bits"

// natDivMod returns q, r with u = q*v + r and r < v. v must be non-zero.
//
// Multi-limb divisors use Knuth's algorithm D (TAOCP vol. 2, 4.3.1): the
// divisor is normalised so its top limb has the high bit set, which bounds
// each estimated quotient limb to at most two corrections.
func natDivMod(u, v nat) (q, r nat) {
	u = trimLimbs(u)
	v = trimLimbs(v)
	if cmpLimbs(u, v) < 0 {
		return nil, u
	}
	if len(v) == 1 {
		q, rem := natDivModSmall(u, v[0])
		return q, natFromUint64(uint64(rem))
	}

	n := len(v)
	m := len(u) - n
	s := uint(bits.LeadingZeros32(v[n-1]))

	vn := make(nat, n)
	for i := n - 1; i > 0; i-- {
		vn[i] = v[i]<<s | uint32(uint64(v[i-1])>>(limbBits-s)) //nolint:gosec // G115: shifted limb fits in uint32.
	}
	vn[0] = v[0] << s

	un := make(nat, len(u)+1)
	un[len(u)] = uint32(uint64(u[len(u)-1]) >> (limbBits - s)) //nolint:gosec // G115: shifted limb fits in uint32.
	for i := len(u) - 1; i > 0; i-- {
		un[i] = u[i]<<s | uint32(uint64(u[i-1])>>(limbBits-s)) //nolint:gosec // G115: shifted limb fits in uint32.
	}
	un[0] = u[0] << s

	q = make(nat, m+1)
	vTop := uint64(vn[n-1])
	vNext := uint64(vn[n-2])
	for j := m; j >= 0; j-- {
		num := uint64(un[j+n])<<limbBits | uint64(un[j+n-1])
		qhat := num / vTop
		rhat := num % vTop
		for qhat > limbMask || qhat*vNext > (rhat<<limbBits|uint64(un[j+n-2])) {
			qhat--
			rhat += vTop
			if rhat > limbMask {
				break
			}
		}

		// un[j:j+n+1] -= qhat * vn
		var borrow int64
		var t int64
		for i := 0; i < n; i++ {
			p := qhat * uint64(vn[i])
			t = int64(un[i+j]) - borrow - int64(p&limbMask) //nolint:gosec // G115: operands are below 2^33.
			un[i+j] = uint32(t)                              //nolint:gosec // G115: truncation is intentional (limb arithmetic).
			borrow = int64(p>>limbBits) - (t >> limbBits)    //nolint:gosec // G115: high half fits in int64.
		}
		t = int64(un[j+n]) - borrow
		un[j+n] = uint32(t) //nolint:gosec // G115: truncation is intentional (limb arithmetic).

		q[j] = uint32(qhat) //nolint:gosec // G115: qhat < 2^32 after correction.
		if t < 0 {
			// qhat was one too large: add the divisor back.
			q[j]--
			var carry uint64
			for i := 0; i < n; i++ {
				sum := uint64(un[i+j]) + uint64(vn[i]) + carry
				un[i+j] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
				carry = sum >> limbBits
			}
			un[j+n] += uint32(carry) //nolint:gosec // G115: carry is 0 or 1.
		}
	}

	r = make(nat, n)
	for i := 0; i < n-1; i++ {
		r[i] = un[i]>>s | uint32(uint64(un[i+1])<<(limbBits-s)) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
	}
	r[n-1] = un[n-1] >> s
	return trimLimbs(q), trimLimbs(r)
}

// natDivModSlow is bitwise shift-and-subtract division. It is kept as an
// independent reference for natDivMod in tests.
func natDivModSlow(a, b nat) (q, r nat) {
	a = trimLimbs(a)
	b = trimLimbs(b)
	if cmpLimbs(a, b) < 0 {
		return nil, a
	}
	shift := bitLenLimbs(a) - bitLenLimbs(b)
	denom := natShl(b, uint(shift)) //nolint:gosec // G115: shift is non-negative here.
	denom = append(nat(nil), denom...)
	rem := make(nat, len(a))
	copy(rem, a)

	quot := make(nat, shift/limbBits+1)
	for i := shift; i >= 0; i-- {
		if cmpLimbs(rem, denom) >= 0 {
			subInPlace(rem, denom)
			quot[i/limbBits] |= uint32(1) << (uint(i) % limbBits)
		}
		shr1InPlace(denom)
	}
	return trimLimbs(quot), trimLimbs(rem)
}

func shr1InPlace(limbs nat) {
	var carry uint32
	for i := len(limbs) - 1; i >= 0; i-- {
		v := limbs[i]
		limbs[i] = v>>1 | carry<<31
		carry = v & 1
	}
}
