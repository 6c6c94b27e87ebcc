package datasets

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Array is a dense, row-major array in the configured precision. The leading
// axis is always the sample axis; the remaining axes describe one sample
// (feature width, or level x channel in convolution mode). Exactly one of
// Float32 and Float64 is non-nil, matching the DType the data was loaded
// with.
type Array struct {
	// Shape holds the axis lengths, sample axis first.
	Shape []int

	// Float32 is the flat buffer when the array is single precision.
	Float32 []float32

	// Float64 is the flat buffer when the array is double precision.
	Float64 []float64
}

// newArray allocates a zeroed array of the given precision and shape.
func newArray(dtype DType, shape ...int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	a := &Array{Shape: shape}
	if dtype == Float64 {
		a.Float64 = make([]float64, n)
	} else {
		a.Float32 = make([]float32, n)
	}
	return a
}

// DType reports the precision of the backing buffer.
func (a *Array) DType() DType {
	if a.Float64 != nil {
		return Float64
	}
	return Float32
}

// Rows returns the length of the sample axis.
func (a *Array) Rows() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// Width returns the number of values per sample (the product of all
// non-sample axes).
func (a *Array) Width() int {
	w := 1
	for _, d := range a.Shape[1:] {
		w *= d
	}
	return w
}

// set stores v at flat index i, casting to the array's precision.
func (a *Array) set(i int, v float64) {
	if a.Float64 != nil {
		a.Float64[i] = v
		return
	}
	a.Float32[i] = float32(v)
}

// At returns the value at flat index i as a float64.
func (a *Array) At(i int) float64 {
	if a.Float64 != nil {
		return a.Float64[i]
	}
	return float64(a.Float32[i])
}

// Slice returns a view of n consecutive samples starting at row start. The
// returned array shares the receiver's buffer.
func (a *Array) Slice(start, n int) *Array {
	w := a.Width()
	shape := make([]int, len(a.Shape))
	copy(shape, a.Shape)
	shape[0] = n
	out := &Array{Shape: shape}
	if a.Float64 != nil {
		out.Float64 = a.Float64[start*w : (start+n)*w]
	} else {
		out.Float32 = a.Float32[start*w : (start+n)*w]
	}
	return out
}

// Gather copies the samples at the given row indices, in order, into a new
// array.
func (a *Array) Gather(indices []int) *Array {
	w := a.Width()
	shape := make([]int, len(a.Shape))
	copy(shape, a.Shape)
	shape[0] = len(indices)
	out := newArray(a.DType(), shape...)
	for i, idx := range indices {
		if a.Float64 != nil {
			copy(out.Float64[i*w:(i+1)*w], a.Float64[idx*w:(idx+1)*w])
		} else {
			copy(out.Float32[i*w:(i+1)*w], a.Float32[idx*w:(idx+1)*w])
		}
	}
	return out
}

// Tensor converts the array into a gomlx tensor of the same shape and
// precision.
func (a *Array) Tensor() *tensors.Tensor {
	if a.Float64 != nil {
		return tensors.FromFlatDataAndDimensions(a.Float64, a.Shape...)
	}
	return tensors.FromFlatDataAndDimensions(a.Float32, a.Shape...)
}
