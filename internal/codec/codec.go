// Package codec turns text and byte payloads into integers below an RSA
// modulus and back. Payloads longer than one block are split; every block
// records its byte length so leading zero bytes survive the round trip.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"rsaforge/internal/bignum"
)

var (
	// ErrModulusTooSmall indicates a modulus below 256, which cannot hold a byte.
	ErrModulusTooSmall = errors.New("modulus too small to carry one byte per block")
	// ErrBlockOverflow indicates a block value wider than its declared length.
	ErrBlockOverflow = errors.New("block value exceeds declared length")
	// ErrMalformed indicates unreadable block text.
	ErrMalformed = errors.New("malformed block encoding")
)

// Block is one chunk of a payload as an integer.
type Block struct {
	Len   int        // plaintext byte length, restores leading zeros
	Value bignum.Int // value < n
}

// TextToBytes returns the NFC-normalised UTF-8 encoding of s, so canonically
// equivalent strings encrypt to the same integers.
func TextToBytes(s string) []byte {
	return []byte(norm.NFC.String(s))
}

// BytesToInt interprets b as an unsigned big-endian integer.
func BytesToInt(b []byte) bignum.Int { return bignum.FromBytes(b) }

// BlockSize returns the largest k with 256^k <= n; any k-byte value is then
// strictly below n.
func BlockSize(n bignum.Int) int {
	if n.Sign() <= 0 {
		return 0
	}
	return (n.BitLen() - 1) / 8
}

// Split cuts data into blocks whose values are all below n. Empty data
// yields no blocks.
func Split(data []byte, n bignum.Int) ([]Block, error) {
	size := BlockSize(n)
	if size < 1 {
		return nil, ErrModulusTooSmall
	}
	blocks := make([]Block, 0, (len(data)+size-1)/size)
	for len(data) > 0 {
		k := min(size, len(data))
		blocks = append(blocks, Block{Len: k, Value: BytesToInt(data[:k])})
		data = data[k:]
	}
	return blocks, nil
}

// Join concatenates decoded blocks, left-padding each to its length. Every
// declared length must fit a block of modulus n, which bounds the output to
// what Split could have produced.
func Join(blocks []Block, n bignum.Int) ([]byte, error) {
	size := BlockSize(n)
	if size < 1 {
		return nil, ErrModulusTooSmall
	}
	total := 0
	for i, b := range blocks {
		if b.Len < 0 || b.Len > size {
			return nil, fmt.Errorf("block %d: length %d outside [0, %d]: %w", i, b.Len, size, ErrMalformed)
		}
		if total > math.MaxInt-b.Len {
			return nil, fmt.Errorf("block %d: total length overflows: %w", i, ErrMalformed)
		}
		total += b.Len
	}
	out := make([]byte, 0, total)
	for i, b := range blocks {
		if b.Value.Sign() < 0 || b.Value.BitLen() > b.Len*8 {
			return nil, fmt.Errorf("block %d: %w", i, ErrBlockOverflow)
		}
		out = append(out, b.Value.FillBytes(make([]byte, b.Len))...)
	}
	return out, nil
}

// WriteBlocks writes one "<len> <hex>" line per block.
func WriteBlocks(w io.Writer, blocks []Block) error {
	bw := bufio.NewWriter(w)
	for _, b := range blocks {
		if _, err := fmt.Fprintf(bw, "%d %s\n", b.Len, b.Value.Text(16)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadBlocks parses the output of WriteBlocks. Blank lines are skipped.
func ReadBlocks(r io.Reader) ([]Block, error) {
	var blocks []Block
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		lenText, hexText, ok := strings.Cut(text, " ")
		if !ok {
			return nil, fmt.Errorf("line %d: %w", line, ErrMalformed)
		}
		n, err := strconv.Atoi(lenText)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: bad length %q: %w", line, lenText, ErrMalformed)
		}
		v, err := bignum.Parse("0x" + strings.TrimSpace(hexText))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		blocks = append(blocks, Block{Len: n, Value: v})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Map applies fn (typically an Encrypt or Decrypt method value) to every
// block value, keeping the lengths.
func Map(blocks []Block, fn func(bignum.Int) (bignum.Int, error)) ([]Block, error) {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		v, err := fn(b.Value)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out[i] = Block{Len: b.Len, Value: v}
	}
	return out, nil
}
