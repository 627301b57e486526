package utils

import "unsafe"

// RealView reinterprets a complex slice as interleaved (re, im) float64
// pairs. The view aliases c; nothing is copied.
func RealView(c []complex128) []float64 {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&c[0])), 2*len(c))
}

// ComplexView is the inverse of RealView; an odd trailing element is dropped.
func ComplexView(f []float64) []complex128 {
	if len(f) < 2 {
		return nil
	}
	return unsafe.Slice((*complex128)(unsafe.Pointer(&f[0])), len(f)/2)
}

// AlignedFloat64s returns n zeroed values whose first element sits on an
// align-byte boundary. Alignments of 8 bytes or less use a plain allocation.
func AlignedFloat64s(n, align int) []float64 {
	const valueSize = 8
	if align <= valueSize {
		return make([]float64, n)
	}
	buf := make([]float64, n+align/valueSize)
	mis := int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(align))
	off := ((align - mis) % align) / valueSize
	return buf[off : off+n : off+n]
}

// Overlaps reports whether a and b share any element in memory
func Overlaps(a, b []float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	const valueSize = 8
	a0 := uintptr(unsafe.Pointer(&a[0]))
	b0 := uintptr(unsafe.Pointer(&b[0]))
	return a0 < b0+uintptr(len(b))*valueSize && b0 < a0+uintptr(len(a))*valueSize
}
