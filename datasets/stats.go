package datasets

import "fmt"

// statsProvider looks up per-variable normalization statistics from the mean
// and standard deviation archives. A variable's statistics are either a
// single scalar or one value per vertical level.
type statsProvider struct {
	mean *varFile
	std  *varFile
}

// lookup returns the mean and standard deviation for the named variable.
// Each returned slice has length 1 (scalar, applied to every level) or
// length width (one value per level).
func (s *statsProvider) lookup(name string, width int) (mean, std []float64, err error) {
	m, err := s.mean.read(name)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.std.read(name)
	if err != nil {
		return nil, nil, err
	}
	if len(m.Elements) != 1 && len(m.Elements) != width {
		return nil, nil, fmt.Errorf("datasets: mean for %q has %d values, want 1 or %d",
			name, len(m.Elements), width)
	}
	if len(d.Elements) != 1 && len(d.Elements) != width {
		return nil, nil, fmt.Errorf("datasets: std for %q has %d values, want 1 or %d",
			name, len(d.Elements), width)
	}
	return m.Elements, d.Elements, nil
}
