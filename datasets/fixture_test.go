package datasets

import (
	"math"
	"os"
	"sort"
	"testing"

	"github.com/ctessum/cdf"
)

// ncVar describes one variable in a generated NetCDF fixture.
type ncVar struct {
	dims []string
	data []float64
}

// writeNC writes a NetCDF file with the given dimensions and variables,
// mirroring the layout of the SPCAM archives (sample as the trailing axis).
func writeNC(t *testing.T, path string, dims map[string]int, vars map[string]ncVar) {
	t.Helper()

	dimNames := make([]string, 0, len(dims))
	for n := range dims {
		dimNames = append(dimNames, n)
	}
	sort.Strings(dimNames)
	lengths := make([]int, len(dimNames))
	for i, n := range dimNames {
		lengths[i] = dims[n]
	}

	h := cdf.NewHeader(dimNames, lengths)
	varNames := make([]string, 0, len(vars))
	for n := range vars {
		varNames = append(varNames, n)
	}
	sort.Strings(varNames)
	for _, n := range varNames {
		h.AddVariable(n, vars[n].dims, []float64{0})
	}
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture %s: %v", path, err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatalf("writing fixture header %s: %v", path, err)
	}
	for _, n := range varNames {
		end := f.Header.Lengths(n)
		start := make([]int, len(end))
		w := f.Writer(n, start, end)
		if _, err := w.Write(vars[n].data); err != nil {
			t.Fatalf("writing fixture variable %s: %v", n, err)
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatalf("finalizing fixture %s: %v", path, err)
	}
}

const (
	fixtureLevels  = 2
	fixtureSamples = 100
)

// Raw fixture values, indexed by level and sample.
func rawTAP(z, s int) float64  { return 100*float64(z) + float64(s) }
func rawQAP(z, s int) float64  { return 200*float64(z) + 2*float64(s) }
func rawUAP(z, s int) float64  { return 7*float64(z) + float64(s) }
func rawPS(s int) float64      { return 5 + float64(s) }
func rawSHFLX(s int) float64   { return 3 * float64(s) }
func rawSPDT(z, s int) float64 { return 0.001 * float64(s+z) }
func rawSPDQ(z, s int) float64 { return 1e-6 * float64(s+2*z) }

var fixtureMeans = map[string][]float64{
	"TAP":   {10, 20},
	"QAP":   {1, 2},
	"UAP":   {1, 2, 3},
	"PS":    {5},
	"SHFLX": {0},
}

var fixtureStds = map[string][]float64{
	"TAP":   {2, 4},
	"QAP":   {1, 2},
	"UAP":   {1, 1, 1},
	"PS":    {2},
	"SHFLX": {3},
}

// writeFixtureSet writes a small SPCAM-like archive triple (output, mean,
// std) into a temp directory and returns the directory including a trailing
// separator, ready to use as Config.DataDir.
func writeFixtureSet(t *testing.T) string {
	t.Helper()
	dir := t.TempDir() + string(os.PathSeparator)

	leveled := func(nz int, f func(z, s int) float64) []float64 {
		data := make([]float64, nz*fixtureSamples)
		for z := 0; z < nz; z++ {
			for s := 0; s < fixtureSamples; s++ {
				data[z*fixtureSamples+s] = f(z, s)
			}
		}
		return data
	}
	flat := func(f func(s int) float64) []float64 {
		data := make([]float64, fixtureSamples)
		for s := range data {
			data[s] = f(s)
		}
		return data
	}

	writeNC(t, dir+"out.nc",
		map[string]int{"lev": fixtureLevels, "lev3": 3, "sample": fixtureSamples},
		map[string]ncVar{
			"TAP":   {[]string{"lev", "sample"}, leveled(fixtureLevels, rawTAP)},
			"QAP":   {[]string{"lev", "sample"}, leveled(fixtureLevels, rawQAP)},
			"UAP":   {[]string{"lev3", "sample"}, leveled(3, rawUAP)},
			"PS":    {[]string{"sample"}, flat(rawPS)},
			"SHFLX": {[]string{"sample"}, flat(rawSHFLX)},
			"SPDT":  {[]string{"lev", "sample"}, leveled(fixtureLevels, rawSPDT)},
			"SPDQ":  {[]string{"lev", "sample"}, leveled(fixtureLevels, rawSPDQ)},
		})

	writeStats := func(path string, src map[string][]float64) {
		vars := make(map[string]ncVar)
		for name, vals := range src {
			switch len(vals) {
			case 1:
				vars[name] = ncVar{[]string{"one"}, vals}
			case fixtureLevels:
				vars[name] = ncVar{[]string{"lev"}, vals}
			default:
				vars[name] = ncVar{[]string{"lev3"}, vals}
			}
		}
		writeNC(t, path, map[string]int{"lev": fixtureLevels, "lev3": 3, "one": 1}, vars)
	}
	writeStats(dir+DefaultMeanFile, fixtureMeans)
	writeStats(dir+DefaultStdFile, fixtureStds)

	return dir
}

// norm computes the expected normalized value for one fixture variable at
// the given level.
func norm(raw float64, name string, level int) float64 {
	m := fixtureMeans[name]
	s := fixtureStds[name]
	mi, si := 0, 0
	if len(m) > 1 {
		mi = level
	}
	if len(s) > 1 {
		si = level
	}
	return (raw - m[mi]) / s[si]
}

// approx fails the test if got and want differ by more than single-precision
// rounding allows.
func approx(t *testing.T, got, want float64, context string) {
	t.Helper()
	tol := 1e-5 * math.Max(1, math.Abs(want))
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: got %g, want %g", context, got, want)
	}
}
