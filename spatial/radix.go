package spatial

import (
	"sort"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Below this size a comparison sort beats the two passes over the data a
// radix sort needs per digit.
const radixThreshold = 128

type sortItem[U constraints.Unsigned] struct {
	key   U
	index int
}

// radixSort sorts items by key, stable, using buf as scratch space.
// The sorted result is returned and is either items or buf.
func radixSort[U constraints.Unsigned](items, buf []sortItem[U]) []sortItem[U] {
	if len(items) < radixThreshold {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].key < items[j].key
		})
		return items
	}

	var maxKey U
	for _, it := range items {
		maxKey = max(maxKey, it.key)
	}

	if cap(buf) < len(items) {
		buf = make([]sortItem[U], len(items))
	}
	buf = buf[:len(items)]

	src, dst := items, buf
	keyBits := uint(unsafe.Sizeof(maxKey)) * 8
	for shift := uint(0); shift < keyBits; shift += 8 {
		// remaining digits are all zero
		if shift > 0 && maxKey>>shift == 0 {
			break
		}

		var counts [256]int
		for _, it := range src {
			counts[int((it.key>>shift)&0xff)]++
		}
		offset := 0
		for i := range counts {
			offset, counts[i] = offset+counts[i], offset
		}
		for _, it := range src {
			d := int((it.key >> shift) & 0xff)
			dst[counts[d]] = it
			counts[d]++
		}
		src, dst = dst, src
	}

	return src
}
