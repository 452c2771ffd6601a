package spatial

import "math/bits"

// BitFlag is a dense rows×cols bit matrix. It remembers which pairs were
// already tested during one query.
type BitFlag struct {
	rows, cols int
	words      []uint64
}

func NewBitFlag(rows, cols int) *BitFlag {
	f := &BitFlag{}
	f.Resize(rows, cols)
	return f
}

// Resize reallocates only when rows×cols exceeds the current capacity,
// otherwise the buffer is cleared in place
func (f *BitFlag) Resize(rows, cols int) {
	rows = max(rows, 0)
	cols = max(cols, 0)
	needed := (rows*cols + 63) / 64

	f.rows = rows
	f.cols = cols
	if needed > cap(f.words) {
		f.words = make([]uint64, needed)
		return
	}
	f.words = f.words[:needed]
	clear(f.words)
}

// Clear zeroes every bit without reallocating
func (f *BitFlag) Clear() {
	clear(f.words)
}

func (f *BitFlag) Rows() int { return f.rows }

func (f *BitFlag) Cols() int { return f.cols }

// Get reads the bit at (row, col)
func (f *BitFlag) Get(row, col int) bool {
	bit := row*f.cols + col
	return f.words[bit>>6]&(1<<(bit&63)) != 0
}

// GetSetOn sets the bit at (row, col) and returns its previous value.
// For unordered pairs the caller passes row < col.
func (f *BitFlag) GetSetOn(row, col int) bool {
	bit := row*f.cols + col
	word := &f.words[bit>>6]
	mask := uint64(1) << (bit & 63)
	was := *word&mask != 0
	*word |= mask
	return was
}

// Count returns the number of bits set
func (f *BitFlag) Count() int {
	n := 0
	for _, w := range f.words {
		n += bits.OnesCount64(w)
	}
	return n
}
