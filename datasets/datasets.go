package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// This package provides the data-loading side of training a neural network
// that emulates sub-grid convective physics from SPCAM climate-model output.
//
// Two entry points are provided:
//
// DataSet
//   - One-shot load of a complete feature/target set into memory.
//   - Features are normalized per variable as (raw - mean) / std, using the
//     mean and standard deviation archives that accompany the model output.
//   - Targets are the SPDT/SPDQ tendencies scaled to training units.
//   - Intended for full in-memory training or evaluation.
//
// DataGenerator
//   - Same loading and normalization as DataSet, plus an endless batch-wise
//     iteration for iterative training. Generate returns an independent
//     infinite sequence of (x, y) batches; shuffling happens either at whole
//     batch granularity ("batches" mode, cheap contiguous slices) or per
//     sample (anything else, a full gather per batch).
//
// All arrays are loaded once at construction time and held in memory for the
// object's lifetime. The NetCDF sources are only open while loading; nothing
// here performs I/O after construction. This can be quite memory intensive!
//
// Notes on gomlx tensors:
//   - Batches are held as contiguous float32 or float64 buffers along with
//     shape metadata (the Array type). These convert directly into gomlx
//     tensors, and the Batches iterator exposes the Yield/Restart protocol
//     that gomlx training loops consume.

// BatchSource is the iteration protocol a model-fitting loop pulls batches
// from. It is the relevant subset of gomlx's train.Dataset interface, so a
// *Batches value can be handed straight to a gomlx training loop.
type BatchSource interface {
	Name() string
	Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error)
	Restart() error
}

var _ BatchSource = (*Batches)(nil)
