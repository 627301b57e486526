package banded

import "errors"

var (
	// ErrShapeMismatch is returned when a vector, panel or matrix operand does
	// not agree with the declared trial/test sizes.
	ErrShapeMismatch = errors.New("banded: shape mismatch")

	// ErrUnsupportedFormat is returned for an unknown storage layout.
	ErrUnsupportedFormat = errors.New("banded: unsupported format")

	// ErrEmptyBand is returned when a diagonal would have no elements for the
	// matrix shape, or its value count disagrees with the band length.
	ErrEmptyBand = errors.New("banded: empty or misfit band")
)
