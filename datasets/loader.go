package datasets

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Default statistics archives that accompany SPCAM model output.
const (
	DefaultMeanFile = "SPCAM_mean.nc"
	DefaultStdFile  = "SPCAM_std.nc"
)

// The two supported targets: the SPDT heating tendency is scaled by 1000 and
// the SPDQ moistening tendency by the latent heat of vaporization.
const (
	heatingTarget    = "SPDT"
	moisteningTarget = "SPDQ"

	heatingScale    = 1000.
	moisteningScale = 2.5e6
)

// ErrUnsupportedTargets is returned when a configuration requests target
// variables other than SPDT and SPDQ.
var ErrUnsupportedTargets = errors.New("datasets: no targets other than SPDT/SPDQ are implemented")

// Config describes where a feature/target set lives and how to assemble it.
type Config struct {
	// DataDir is prepended verbatim to the file names below (include any
	// trailing path separator).
	DataDir string

	// OutputFile names the model-output archive holding the feature and
	// target variables.
	OutputFile string

	// MeanFile and StdFile name the per-variable statistics archives used
	// for normalization. They default to DefaultMeanFile and DefaultStdFile.
	MeanFile string
	StdFile  string

	// Features lists the feature variable names to load. The list order
	// determines the column order of the assembled feature matrix.
	Features []string

	// Targets names the target variable pair. Defaults to SPDT, SPDQ; any
	// other value is a configuration error.
	Targets []string

	// Convolution splits the features into a [sample, level, channel] array
	// of multi-level variables and a [sample, width] array of single-level
	// variables instead of one flat matrix.
	Convolution bool

	// DType is the precision the arrays are stored in. Defaults to Float32.
	DType DType
}

func (c Config) withDefaults() Config {
	if c.MeanFile == "" {
		c.MeanFile = DefaultMeanFile
	}
	if c.StdFile == "" {
		c.StdFile = DefaultStdFile
	}
	if c.Targets == nil {
		c.Targets = []string{heatingTarget, moisteningTarget}
	}
	c.DType = c.DType.withDefault()
	return c
}

func (c Config) validate() error {
	if len(c.Targets) != 2 || c.Targets[0] != heatingTarget || c.Targets[1] != moisteningTarget {
		return fmt.Errorf("%w (requested %v)", ErrUnsupportedTargets, c.Targets)
	}
	if len(c.Features) == 0 {
		return errors.New("datasets: no feature variables requested")
	}
	return c.DType.validate()
}

// loadResult is the outcome of one full load: the assembled feature
// array(s), the target array, and the derived sample count.
type loadResult struct {
	x        *Array // flat feature matrix (non-convolution)
	xLevels  *Array // multi-level features (convolution)
	xScalar  *Array // single-level features (convolution)
	y        *Array
	names    []string
	widths   []int
	nSamples int
}

// loadData performs the full feature and target load described by cfg. It is
// shared by DataSet and DataGenerator, which differ only in how they serve
// the loaded arrays. All three archives are closed before it returns,
// whether or not the load succeeds.
func loadData(cfg Config) (*loadResult, error) {
	out, err := openVarFile(cfg.DataDir + cfg.OutputFile)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	mean, err := openVarFile(cfg.DataDir + cfg.MeanFile)
	if err != nil {
		return nil, err
	}
	defer mean.Close()
	std, err := openVarFile(cfg.DataDir + cfg.StdFile)
	if err != nil {
		return nil, err
	}
	defer std.Close()

	stats := &statsProvider{mean: mean, std: std}

	res := new(loadResult)
	if err := res.loadFeatures(cfg, out, stats); err != nil {
		return nil, err
	}
	if err := res.loadTargets(cfg, out); err != nil {
		return nil, err
	}
	return res, nil
}

// loadFeatures reads and normalizes every requested feature variable and
// assembles the feature matrix (or the leveled/scalar pair in convolution
// mode). The sample count is taken from the trailing axis of the first
// requested variable.
func (r *loadResult) loadFeatures(cfg Config, out *varFile, stats *statsProvider) error {
	n, err := out.sampleCount(cfg.Features[0])
	if err != nil {
		return err
	}
	r.nSamples = n

	raws := make([]*sparse.DenseArray, len(cfg.Features))
	widths := make([]int, len(cfg.Features))
	for i, name := range cfg.Features {
		raw, err := out.read(name)
		if err != nil {
			return err
		}
		// Everything before the trailing sample axis flattens into the
		// per-sample width; single-level variables have width 1.
		width := len(raw.Elements) / n
		mean, std, err := stats.lookup(name, width)
		if err != nil {
			return err
		}
		// The on-disk layout keeps each level's samples contiguous, so
		// normalization runs on level-sized spans before the transpose.
		for k := 0; k < width; k++ {
			m, s := mean[0], std[0]
			if len(mean) > 1 {
				m = mean[k]
			}
			if len(std) > 1 {
				s = std[k]
			}
			span := raw.Elements[k*n : (k+1)*n]
			floats.AddConst(-m, span)
			floats.Scale(1/s, span)
		}
		raws[i], widths[i] = raw, width
	}
	r.names = append([]string(nil), cfg.Features...)
	r.widths = widths

	if cfg.Convolution {
		return r.stackFeatures(cfg, raws, widths)
	}
	return r.concatFeatures(cfg, raws, widths)
}

// concatFeatures transposes every variable to sample-leading order and
// concatenates them along the feature axis in input order.
func (r *loadResult) concatFeatures(cfg Config, raws []*sparse.DenseArray, widths []int) error {
	total := 0
	for _, w := range widths {
		total += w
	}
	n := r.nSamples
	x := newArray(cfg.DType, n, total)
	off := 0
	for j, raw := range raws {
		for k := 0; k < widths[j]; k++ {
			for s := 0; s < n; s++ {
				x.set(s*total+off+k, raw.Elements[k*n+s])
			}
		}
		off += widths[j]
	}
	r.x = x
	return nil
}

// stackFeatures partitions the variables into multi-level and single-level
// groups, preserving input order within each group. The multi-level group is
// stacked into [sample, level, channel]; the single-level group is
// concatenated into [sample, width]. Every multi-level variable must have
// the same level count.
func (r *loadResult) stackFeatures(cfg Config, raws []*sparse.DenseArray, widths []int) error {
	var leveled, scalar []int
	for i, w := range widths {
		if w > 1 {
			leveled = append(leveled, i)
		} else {
			scalar = append(scalar, i)
		}
	}
	n := r.nSamples

	nLevels := 0
	for _, i := range leveled {
		if nLevels == 0 {
			nLevels = widths[i]
		} else if widths[i] != nLevels {
			return fmt.Errorf("datasets: cannot stack variable %q with %d levels into a group of %d-level variables",
				cfg.Features[i], widths[i], nLevels)
		}
	}

	xl := newArray(cfg.DType, n, nLevels, len(leveled))
	for j, i := range leveled {
		raw := raws[i]
		for z := 0; z < nLevels; z++ {
			for s := 0; s < n; s++ {
				xl.set((s*nLevels+z)*len(leveled)+j, raw.Elements[z*n+s])
			}
		}
	}

	xs := newArray(cfg.DType, n, len(scalar))
	for j, i := range scalar {
		raw := raws[i]
		for s := 0; s < n; s++ {
			xs.set(s*len(scalar)+j, raw.Elements[s])
		}
	}

	r.xLevels, r.xScalar = xl, xs
	return nil
}

// loadTargets reads the two tendency variables, converts them to training
// units, and transposes so sample is the leading axis. The heating block
// occupies the leading target columns, the moistening block the trailing
// ones.
func (r *loadResult) loadTargets(cfg Config, out *varFile) error {
	spdt, err := out.read(cfg.Targets[0])
	if err != nil {
		return err
	}
	spdq, err := out.read(cfg.Targets[1])
	if err != nil {
		return err
	}
	floats.Scale(heatingScale, spdt.Elements)
	floats.Scale(moisteningScale, spdq.Elements)

	n := r.nSamples
	wt := len(spdt.Elements) / n
	wq := len(spdq.Elements) / n
	y := newArray(cfg.DType, n, wt+wq)
	for k := 0; k < wt; k++ {
		for s := 0; s < n; s++ {
			y.set(s*(wt+wq)+k, spdt.Elements[k*n+s])
		}
	}
	for k := 0; k < wq; k++ {
		for s := 0; s < n; s++ {
			y.set(s*(wt+wq)+wt+k, spdq.Elements[k*n+s])
		}
	}
	r.y = y
	return nil
}
