package prime

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"fortio.org/safecast"

	"rsaforge/internal/bignum"
)

var (
	// ErrRandomSource wraps failures of the underlying random reader.
	ErrRandomSource = errors.New("random source failure")
	// ErrEmptyRange is returned by RandomRange when hi < lo.
	ErrEmptyRange = errors.New("empty sampling range")
)

// LockedReader serialises reads so one reader can back concurrent
// generators.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// NewLockedReader wraps r. Wrapping a *LockedReader returns it unchanged.
func NewLockedReader(r io.Reader) *LockedReader {
	if lr, ok := r.(*LockedReader); ok {
		return lr
	}
	return &LockedReader{r: r}
}

func (l *LockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

// RandomBits returns a uniform value in [0, 2^bits).
func RandomBits(r io.Reader, bits int) (bignum.Int, error) {
	if bits <= 0 {
		return bignum.Zero(), nil
	}
	nbytes := (bits + 7) / 8
	buf := make([]byte, nbytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return bignum.Int{}, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	excess, err := safecast.Conv[uint](nbytes*8 - bits)
	if err != nil {
		return bignum.Int{}, err
	}
	buf[0] &= byte(0xff >> excess)
	return bignum.FromBytes(buf), nil
}

// RandomRange returns a uniform value in [lo, hi] by rejection sampling.
func RandomRange(r io.Reader, lo, hi bignum.Int) (bignum.Int, error) {
	if hi.Cmp(lo) < 0 {
		return bignum.Int{}, ErrEmptyRange
	}
	span := hi.Sub(lo).AddSmall(1)
	bits := span.BitLen()
	for {
		v, err := RandomBits(r, bits)
		if err != nil {
			return bignum.Int{}, err
		}
		// At most half the draws land outside span.
		if v.Cmp(span) < 0 {
			return lo.Add(v), nil
		}
	}
}
