package bignum

import "math/bits"

// nat is an unsigned magnitude in base 2^32, little-endian (nat[0] is least
// significant). Canonical form has no high zero limbs; zero is nil.
//
// Functions in this file never modify their inputs.
type nat []uint32

const (
	limbBits = 32
	limbMask = 1<<limbBits - 1
)

func natFromUint64(v uint64) nat {
	if v == 0 {
		return nil
	}
	lo := uint32(v)       //nolint:gosec // G115: truncation is intentional (low limb).
	hi := uint32(v >> 32) //nolint:gosec // G115: truncation is intentional (high limb).
	if hi == 0 {
		return nat{lo}
	}
	return nat{lo, hi}
}

func trimLimbs(limbs nat) nat {
	for len(limbs) > 0 && limbs[len(limbs)-1] == 0 {
		limbs = limbs[:len(limbs)-1]
	}
	if len(limbs) == 0 {
		return nil
	}
	return limbs
}

func bitLenLimbs(limbs nat) int {
	limbs = trimLimbs(limbs)
	if len(limbs) == 0 {
		return 0
	}
	ms := limbs[len(limbs)-1]
	return (len(limbs)-1)*limbBits + (limbBits - bits.LeadingZeros32(ms))
}

func cmpLimbs(a, b nat) int {
	a = trimLimbs(a)
	b = trimLimbs(b)
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func natAdd(a, b nat) nat {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return trimLimbs(a)
	}
	out := make(nat, len(a)+1)
	var carry uint64
	for i := range a {
		sum := uint64(a[i]) + carry
		if i < len(b) {
			sum += uint64(b[i])
		}
		out[i] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = sum >> limbBits
	}
	out[len(a)] = uint32(carry) //nolint:gosec // G115: carry is 0 or 1.
	return trimLimbs(out)
}

func natAddSmall(a nat, v uint32) nat {
	if v == 0 {
		return trimLimbs(a)
	}
	return natAdd(a, nat{v})
}

// natSub returns a-b. The caller guarantees a >= b.
func natSub(a, b nat) nat {
	a = trimLimbs(a)
	b = trimLimbs(b)
	if len(b) == 0 {
		return a
	}
	out := make(nat, len(a))
	copy(out, a)
	subInPlace(out, b)
	return trimLimbs(out)
}

func subInPlace(dst, sub nat) uint32 {
	var borrow uint32
	for i := range dst {
		var bv uint32
		if i < len(sub) {
			bv = sub[i]
		} else if borrow == 0 {
			break
		}
		dst[i], borrow = bits.Sub32(dst[i], bv, borrow)
	}
	return borrow
}

func addInPlace(dst, add nat) uint32 {
	var carry uint32
	for i := range dst {
		var av uint32
		if i < len(add) {
			av = add[i]
		} else if carry == 0 {
			break
		}
		dst[i], carry = bits.Add32(dst[i], av, carry)
	}
	return carry
}

// natMul is schoolbook multiplication, O(len(a)*len(b)).
func natMul(a, b nat) nat {
	a = trimLimbs(a)
	b = trimLimbs(b)
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	if len(b) == 1 {
		return natMulSmall(a, b[0])
	}
	if len(a) == 1 {
		return natMulSmall(b, a[0])
	}

	out := make(nat, len(a)+len(b))
	for i := range a {
		ai := uint64(a[i])
		if ai == 0 {
			continue
		}
		var carry uint64
		for j := range b {
			k := i + j
			sum := uint64(out[k]) + ai*uint64(b[j]) + carry
			out[k] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
			carry = sum >> limbBits
		}
		out[i+len(b)] = uint32(carry) //nolint:gosec // G115: carry fits in one limb.
	}
	return trimLimbs(out)
}

// natSqr squares a, computing each cross product once.
func natSqr(a nat) nat {
	a = trimLimbs(a)
	n := len(a)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return natMulSmall(a, a[0])
	}
	out := make(nat, 2*n)
	// cross terms a[i]*a[j], i < j
	for i := 0; i < n; i++ {
		ai := uint64(a[i])
		if ai == 0 {
			continue
		}
		var carry uint64
		for j := i + 1; j < n; j++ {
			k := i + j
			sum := uint64(out[k]) + ai*uint64(a[j]) + carry
			out[k] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
			carry = sum >> limbBits
		}
		out[i+n] = uint32(carry) //nolint:gosec // G115: carry fits in one limb.
	}
	// double the cross terms
	var top uint32
	for i := range out {
		v := out[i]
		out[i] = v<<1 | top
		top = v >> (limbBits - 1)
	}
	// add the squares on the diagonal
	var carry uint64
	for i := 0; i < n; i++ {
		sq := uint64(a[i]) * uint64(a[i])
		lo := uint64(out[2*i]) + (sq & limbMask) + carry
		out[2*i] = uint32(lo) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		hi := uint64(out[2*i+1]) + (sq >> limbBits) + (lo >> limbBits)
		out[2*i+1] = uint32(hi) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = hi >> limbBits
	}
	return trimLimbs(out)
}

func natMulSmall(a nat, m uint32) nat {
	a = trimLimbs(a)
	if m == 0 || len(a) == 0 {
		return nil
	}
	if m == 1 {
		return a
	}
	out := make(nat, len(a)+1)
	var carry uint64
	for i := range a {
		prod := uint64(a[i])*uint64(m) + carry
		out[i] = uint32(prod) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = prod >> limbBits
	}
	out[len(a)] = uint32(carry) //nolint:gosec // G115: carry fits in one limb.
	return trimLimbs(out)
}

// natDivModSmall divides a by the single limb d. d must be non-zero.
func natDivModSmall(a nat, d uint32) (nat, uint32) {
	a = trimLimbs(a)
	if len(a) == 0 {
		return nil, 0
	}
	out := make(nat, len(a))
	var rem uint64
	for i := len(a) - 1; i >= 0; i-- {
		cur := rem<<limbBits | uint64(a[i])
		out[i] = uint32(cur / uint64(d)) //nolint:gosec // G115: quotient fits in uint32.
		rem = cur % uint64(d)
	}
	return trimLimbs(out), uint32(rem) //nolint:gosec // G115: remainder fits in uint32.
}

func natShl(a nat, n uint) nat {
	a = trimLimbs(a)
	if len(a) == 0 || n == 0 {
		return a
	}
	wordShift := int(n / limbBits)
	bitShift := n % limbBits

	out := make(nat, len(a)+wordShift+1)
	if bitShift == 0 {
		copy(out[wordShift:], a)
		return trimLimbs(out)
	}
	var carry uint32
	for i := range a {
		v := a[i]
		out[i+wordShift] = v<<bitShift | carry
		carry = v >> (limbBits - bitShift)
	}
	out[len(a)+wordShift] = carry
	return trimLimbs(out)
}

func natShr(a nat, n uint) nat {
	a = trimLimbs(a)
	if len(a) == 0 || n == 0 {
		return a
	}
	wordShift := int(n / limbBits)
	bitShift := n % limbBits
	if wordShift >= len(a) {
		return nil
	}
	out := make(nat, len(a)-wordShift)
	if bitShift == 0 {
		copy(out, a[wordShift:])
		return trimLimbs(out)
	}
	for i := range out {
		v := a[i+wordShift] >> bitShift
		if i+wordShift+1 < len(a) {
			v |= a[i+wordShift+1] << (limbBits - bitShift)
		}
		out[i] = v
	}
	return trimLimbs(out)
}

func natBit(a nat, i int) uint {
	w := i / limbBits
	if i < 0 || w >= len(a) {
		return 0
	}
	return uint(a[w]>>(uint(i)%limbBits)) & 1
}

func natTrailingZeros(a nat) int {
	a = trimLimbs(a)
	n := 0
	for _, limb := range a {
		if limb == 0 {
			n += limbBits
			continue
		}
		return n + bits.TrailingZeros32(limb)
	}
	return 0
}
