package datasets

// DataSet is a complete, normalized feature/target set resident in memory.
// It is loaded eagerly at construction and immutable afterwards; use it for
// full in-memory training or evaluation, and DataGenerator when batches
// should be served incrementally.
type DataSet struct {
	cfg Config
	res *loadResult
}

// NewDataSet loads the feature and target arrays described by cfg.
// Construction either fully succeeds or returns an error with no partial
// state; the underlying archives are closed before it returns either way.
func NewDataSet(cfg Config) (*DataSet, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	res, err := loadData(cfg)
	if err != nil {
		return nil, err
	}
	return &DataSet{cfg: cfg, res: res}, nil
}

// NumSamples returns the number of samples in the set.
func (d *DataSet) NumSamples() int { return d.res.nSamples }

// Convolution reports whether the features are split into the
// leveled/scalar pair.
func (d *DataSet) Convolution() bool { return d.cfg.Convolution }

// X returns the flat [sample, width] feature matrix, or nil in convolution
// mode.
func (d *DataSet) X() *Array { return d.res.x }

// XLevels returns the [sample, level, channel] array of multi-level
// features in convolution mode, nil otherwise.
func (d *DataSet) XLevels() *Array { return d.res.xLevels }

// XScalar returns the [sample, width] array of single-level features in
// convolution mode, nil otherwise.
func (d *DataSet) XScalar() *Array { return d.res.xScalar }

// Y returns the [sample, width] target matrix.
func (d *DataSet) Y() *Array { return d.res.y }

// FeatureNames returns the loaded feature variable names in input order.
func (d *DataSet) FeatureNames() []string { return d.res.names }

// FeatureWidths returns the per-variable feature widths in input order.
func (d *DataSet) FeatureWidths() []int { return d.res.widths }
