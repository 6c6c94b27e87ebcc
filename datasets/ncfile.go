package datasets

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// varFile is a read handle over one NetCDF archive of named variables.
// Variables are stored with sample as the trailing axis.
type varFile struct {
	path string
	f    *os.File
	nc   *cdf.File
}

// openVarFile opens the archive at path. The caller owns the handle and must
// Close it.
func openVarFile(path string) (*varFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datasets: opening %s: %w", path, err)
	}
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("datasets: reading netcdf header of %s: %w", path, err)
	}
	return &varFile{path: path, f: f, nc: nc}, nil
}

func (v *varFile) Close() error { return v.f.Close() }

// has reports whether the archive contains a variable with the given name.
func (v *varFile) has(name string) bool {
	for _, n := range v.nc.Header.Variables() {
		if n == name {
			return true
		}
	}
	return false
}

// read loads the full contents of the named variable into a float64 dense
// array with the on-disk shape.
func (v *varFile) read(name string) (*sparse.DenseArray, error) {
	if !v.has(name) {
		return nil, fmt.Errorf("datasets: variable %q not found in %s", name, v.path)
	}
	dims := v.nc.Header.Lengths(name)
	r := v.nc.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("datasets: reading variable %q from %s: %w", name, v.path, err)
	}
	out := sparse.ZerosDense(dims...)
	switch data := buf.(type) {
	case []float64:
		copy(out.Elements, data)
	case []float32:
		for i, e := range data {
			out.Elements[i] = float64(e)
		}
	case []int32:
		for i, e := range data {
			out.Elements[i] = float64(e)
		}
	default:
		return nil, fmt.Errorf("datasets: variable %q in %s has unsupported type %T", name, v.path, buf)
	}
	return out, nil
}

// sampleCount returns the length of the trailing (sample) axis of the named
// variable.
func (v *varFile) sampleCount(name string) (int, error) {
	if !v.has(name) {
		return 0, fmt.Errorf("datasets: variable %q not found in %s", name, v.path)
	}
	dims := v.nc.Header.Lengths(name)
	if len(dims) == 0 {
		return 0, fmt.Errorf("datasets: variable %q in %s has no dimensions", name, v.path)
	}
	return dims[len(dims)-1], nil
}
