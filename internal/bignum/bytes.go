package bignum

// FromBytes interprets buf as a big-endian unsigned magnitude.
func FromBytes(buf []byte) Int {
	out := make(nat, (len(buf)+3)/4)
	for i := 0; i < len(buf); i++ {
		b := buf[len(buf)-1-i]
		out[i/4] |= uint32(b) << (8 * (uint(i) % 4))
	}
	return makeInt(false, out)
}

// Bytes returns |x| as a minimal big-endian byte slice. Bytes of 0 is empty.
func (x Int) Bytes() []byte {
	n := (x.BitLen() + 7) / 8
	buf := make([]byte, n)
	return x.fill(buf)
}

// FillBytes writes |x| big-endian into buf, zero-padding on the left, and
// returns buf. It panics if |x| does not fit.
func (x Int) FillBytes(buf []byte) []byte {
	if (x.BitLen()+7)/8 > len(buf) {
		panic("bignum: value does not fit in buffer")
	}
	clear(buf)
	return x.fill(buf)
}

func (x Int) fill(buf []byte) []byte {
	for i := 0; i < len(buf); i++ {
		w := i / 4
		if w >= len(x.mag) {
			break
		}
		buf[len(buf)-1-i] = byte(x.mag[w] >> (8 * (uint(i) % 4)))
	}
	return buf
}
