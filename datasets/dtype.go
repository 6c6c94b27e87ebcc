package datasets

import "fmt"

// DType selects the numeric precision of the loaded arrays.
type DType string

const (
	// Float32 is single precision, the default for training data.
	Float32 DType = "float32"
	// Float64 is double precision.
	Float64 DType = "float64"
)

// withDefault returns Float32 for the zero value.
func (d DType) withDefault() DType {
	if d == "" {
		return Float32
	}
	return d
}

func (d DType) validate() error {
	switch d {
	case Float32, Float64:
		return nil
	}
	return fmt.Errorf("datasets: unknown dtype %q", string(d))
}
