package attrib

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shpattr/internal/host"
)

// fakeHost records everything a tool reports. cancelAt asks for
// cancellation once the last reported percent reaches that value; -1
// disables it.
type fakeHost struct {
	labels   []string
	progress []int
	messages []string
	logged   []error
	cancelAt int
}

var _ host.Host = (*fakeHost)(nil)

func newFakeHost() *fakeHost { return &fakeHost{cancelAt: -1} }

func (f *fakeHost) ReportProgress(label string, percent int) {
	f.labels = append(f.labels, label)
	f.progress = append(f.progress, percent)
}

func (f *fakeHost) CancelRequested() bool {
	return f.cancelAt >= 0 && len(f.progress) > 0 && f.progress[len(f.progress)-1] >= f.cancelAt
}

func (f *fakeHost) ShowMessage(text string) { f.messages = append(f.messages, text) }

func (f *fakeHost) LogError(tool string, err error) { f.logged = append(f.logged, err) }

// fakeWriter stands in for the dbf store.
type fakeWriter struct {
	rows    int
	closed  bool
	aborted bool
}

func (w *fakeWriter) Append(values ...interface{}) error { w.rows++; return nil }
func (w *fakeWriter) Close() error                       { w.closed = true; return nil }
func (w *fakeWriter) Abort() error                       { w.aborted = true; return nil }

// writePointShapefile creates a shapefile with n point features and a
// two-field attribute table, returning the .shp path.
func writePointShapefile(t *testing.T, dir string, n int) string {
	t.Helper()
	path := filepath.Join(dir, "features.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	w.SetFields([]shp.Field{
		shp.StringField("NAME", 16),
		shp.NumberField("RANK", 4),
	})
	for i := 0; i < n; i++ {
		w.Write(&shp.Point{X: float64(i), Y: float64(-i)})
		w.WriteAttribute(i, 0, fmt.Sprintf("feature-%d", i))
		w.WriteAttribute(i, 1, i)
	}
	w.Close()
	return path
}

func TestReinitializeRebuildsTable(t *testing.T) {
	path := writePointShapefile(t, t.TempDir(), 25)

	h := newFakeHost()
	require.NoError(t, New(h).Reinitialize(path))

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer r.Close()

	// The old NAME/RANK schema is gone, replaced by the lone FID column.
	fields := r.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, "FID", fields[0].String())
	assert.Equal(t, byte('N'), fields[0].Fieldtype)
	assert.Equal(t, uint8(10), fields[0].Size)
	assert.Equal(t, uint8(0), fields[0].Precision)

	require.Equal(t, 25, r.AttributeCount())
	for i := 0; i < 25; i++ {
		assert.Equal(t, strconv.Itoa(i+1), r.ReadAttribute(i, 0))
	}
}

func TestReinitializeIsRepeatable(t *testing.T) {
	path := writePointShapefile(t, t.TempDir(), 8)

	require.NoError(t, New(newFakeHost()).Reinitialize(path))
	require.NoError(t, New(newFakeHost()).Reinitialize(path))

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.Fields(), 1)
	assert.Equal(t, 8, r.AttributeCount())
	assert.Equal(t, "8", r.ReadAttribute(7, 0))
}

func TestReinitializeEmptyGeometry(t *testing.T) {
	path := writePointShapefile(t, t.TempDir(), 0)

	h := newFakeHost()
	require.NoError(t, New(h).Reinitialize(path))

	assert.Empty(t, h.progress, "no progress should fire for an empty geometry file")

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.Fields(), 1)
	assert.Equal(t, "FID", r.Fields()[0].String())
	assert.Equal(t, 0, r.AttributeCount())
}

func TestReinitializeNoInput(t *testing.T) {
	h := newFakeHost()

	err := New(h).Reinitialize("")
	assert.ErrorIs(t, err, ErrInvalidArguments)
	assert.Empty(t, h.progress)

	err = New(h).Reinitialize("   ")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestReinitializeMissingGeometry(t *testing.T) {
	dir := t.TempDir()
	h := newFakeHost()

	err := New(h).Reinitialize(filepath.Join(dir, "missing.shp"))
	require.Error(t, err)
	assert.Equal(t, KindUnclassified, Classify(err))

	// The attribute store must not have been created or truncated.
	_, statErr := os.Stat(filepath.Join(dir, "missing.dbf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReinitializeCancelledMidLoop(t *testing.T) {
	h := newFakeHost()
	h.cancelAt = 50
	w := &fakeWriter{}

	r := New(h)
	r.countFeatures = func(string) (int, error) { return 1000, nil }
	r.openStore = func(string, []shp.Field) (RowWriter, error) { return w, nil }

	err := r.Reinitialize("features.shp")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.False(t, w.closed, "a cancelled run must not seal the store")
	assert.True(t, w.aborted)
	assert.Less(t, w.rows, 1000)
	assert.LessOrEqual(t, h.progress[len(h.progress)-1], 51)
}

func TestReinitializeProgressMonotonicAndDistinct(t *testing.T) {
	h := newFakeHost()
	w := &fakeWriter{}

	r := New(h)
	r.countFeatures = func(string) (int, error) { return 733, nil }
	r.openStore = func(string, []shp.Field) (RowWriter, error) { return w, nil }

	require.NoError(t, r.Reinitialize("features.shp"))
	require.NotEmpty(t, h.progress)
	assert.LessOrEqual(t, len(h.progress), 101)

	last := -1
	for _, p := range h.progress {
		assert.Greater(t, p, last, "progress must be strictly increasing per report")
		last = p
	}
	for _, l := range h.labels {
		assert.Equal(t, progressLabel, l)
	}

	assert.Equal(t, 733, w.rows)
	assert.True(t, w.closed)
	assert.False(t, w.aborted)
}

func TestReinitializeDerivedPathIsSuffixAnchored(t *testing.T) {
	h := newFakeHost()
	var gotPath string

	r := New(h)
	r.countFeatures = func(string) (int, error) { return 1, nil }
	r.openStore = func(path string, fields []shp.Field) (RowWriter, error) {
		gotPath = path
		return &fakeWriter{}, nil
	}

	require.NoError(t, r.Reinitialize(filepath.Join("maps", "roads.shp.backup", "roads.shp")))
	assert.Equal(t, filepath.Join("maps", "roads.shp.backup", "roads.dbf"), gotPath)
}
