package datasets

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// ShuffleBatches is the ShuffleMode that shuffles the order of whole batches
// only, keeping samples within a batch adjacent to each other on disk.
const ShuffleBatches = "batches"

// GeneratorConfig configures a DataGenerator.
type GeneratorConfig struct {
	Config

	// BatchSize is the number of samples per batch. It must be positive;
	// trailing samples that do not fill a whole batch are dropped.
	BatchSize int

	// ShuffleMode selects the shuffle granularity. ShuffleBatches (the
	// default) randomizes only the order of whole batches, which keeps batch
	// assembly a cheap contiguous slice. Any other value makes every sample
	// independently shuffleable, which costs a full gather per batch but
	// randomizes sample order across batch boundaries.
	ShuffleMode string
}

// DataGenerator serves an endless sequence of training batches from a
// normalized feature/target set held in memory. Loading happens once at
// construction; Generate never touches the archives again. The generator is
// re-entrant: every Generate call returns an independent sequence with its
// own shuffle draw.
type DataGenerator struct {
	cfg GeneratorConfig
	res *loadResult

	nBatches int
	idxs     []int

	rng *rand.Rand
}

// NewDataGenerator loads the data described by cfg and precomputes the base
// batch index set. The same configuration and failure modes apply as for
// NewDataSet, plus the batch size must be positive.
func NewDataGenerator(cfg GeneratorConfig) (*DataGenerator, error) {
	if cfg.ShuffleMode == "" {
		cfg.ShuffleMode = ShuffleBatches
	}
	cfg.Config = cfg.Config.withDefaults()
	if err := cfg.Config.validate(); err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("datasets: batch size must be positive, got %d", cfg.BatchSize)
	}
	res, err := loadData(cfg.Config)
	if err != nil {
		return nil, err
	}
	if res.nSamples < cfg.BatchSize {
		return nil, fmt.Errorf("datasets: batch size %d exceeds sample count %d",
			cfg.BatchSize, res.nSamples)
	}

	g := &DataGenerator{
		cfg:      cfg,
		res:      res,
		nBatches: res.nSamples / cfg.BatchSize,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg.ShuffleMode == ShuffleBatches {
		g.idxs = make([]int, g.nBatches)
		for i := range g.idxs {
			g.idxs[i] = i * cfg.BatchSize
		}
	} else {
		g.idxs = make([]int, res.nSamples)
		for i := range g.idxs {
			g.idxs[i] = i
		}
	}
	return g, nil
}

// Seed re-seeds the shuffle RNG so that subsequent Generate calls draw
// reproducible permutations.
func (g *DataGenerator) Seed(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
}

// NumSamples returns the number of samples loaded.
func (g *DataGenerator) NumSamples() int { return g.res.nSamples }

// NumBatches returns the number of whole batches per pass through the data.
func (g *DataGenerator) NumBatches() int { return g.nBatches }

// Convolution reports whether batches carry the leveled/scalar input pair.
func (g *DataGenerator) Convolution() bool { return g.cfg.Convolution }

// FeatureNames returns the loaded feature variable names in input order.
func (g *DataGenerator) FeatureNames() []string { return g.res.names }

// FeatureWidths returns the per-variable feature widths in input order.
func (g *DataGenerator) FeatureWidths() []int { return g.res.widths }

// Generate starts a new endless batch sequence. Each call copies the base
// index set and, when shuffle is true, applies one random permutation to the
// copy. The resulting order is fixed for the lifetime of the returned
// iterator: repeated passes over the data reuse it rather than reshuffling.
func (g *DataGenerator) Generate(shuffle bool) *Batches {
	order := make([]int, len(g.idxs))
	copy(order, g.idxs)
	if shuffle {
		g.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return &Batches{g: g, order: order}
}

// Batch is one (x, y) training pair. In convolution mode the inputs are the
// XLevels/XScalar pair; otherwise X holds the single input matrix. Y is
// always the target batch.
type Batch struct {
	X       *Array
	XLevels *Array
	XScalar *Array
	Y       *Array
}

// Inputs returns the input arrays in the order a model consumes them.
func (b *Batch) Inputs() []*Array {
	if b.X != nil {
		return []*Array{b.X}
	}
	return []*Array{b.XLevels, b.XScalar}
}

// Batches is an endless, restartable batch sequence with a fixed batch
// order. It cycles through all of the generator's batches before repeating
// and performs no I/O; the caller advances it one batch at a time and simply
// stops pulling when done.
type Batches struct {
	g     *DataGenerator
	order []int
	pos   int
}

// Next returns the next batch, cycling back to the first batch after the
// last. It cannot fail: every index it serves was derived from data
// validated when the generator was constructed.
func (b *Batches) Next() *Batch {
	i := b.pos
	b.pos = (b.pos + 1) % b.g.nBatches

	g := b.g
	if g.cfg.ShuffleMode == ShuffleBatches {
		start := b.order[i]
		return g.assemble(func(a *Array) *Array { return a.Slice(start, g.cfg.BatchSize) })
	}
	idx := b.order[i*g.cfg.BatchSize : (i+1)*g.cfg.BatchSize]
	return g.assemble(func(a *Array) *Array { return a.Gather(idx) })
}

// assemble builds a Batch by applying pick to each loaded array.
func (g *DataGenerator) assemble(pick func(*Array) *Array) *Batch {
	out := &Batch{Y: pick(g.res.y)}
	if g.cfg.Convolution {
		out.XLevels = pick(g.res.xLevels)
		out.XScalar = pick(g.res.xScalar)
	} else {
		out.X = pick(g.res.x)
	}
	return out
}

// Name identifies the sequence to gomlx training loops.
func (b *Batches) Name() string { return "spcam-batches" }

// Yield returns the next batch as gomlx tensors, implementing the
// train.Dataset protocol. In convolution mode the inputs are the
// leveled and scalar tensors, in that order. It never returns an error.
func (b *Batches) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	batch := b.Next()
	for _, x := range batch.Inputs() {
		inputs = append(inputs, x.Tensor())
	}
	return nil, inputs, []*tensors.Tensor{batch.Y.Tensor()}, nil
}

// Restart rewinds the sequence to its first batch. The batch order is kept;
// drawing a fresh shuffle requires a new Generate call.
func (b *Batches) Restart() error {
	b.pos = 0
	return nil
}
