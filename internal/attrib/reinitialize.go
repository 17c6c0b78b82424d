// Package attrib implements the attribute table tools: rebuilding a
// shapefile's .dbf from scratch and exporting one into a database.
package attrib

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"shpattr/internal/dbf"
	"shpattr/internal/host"
	"shpattr/internal/shputil"
)

// ToolName keys diagnostic log entries for the rebuild tool.
const ToolName = "ReinitializeAttributeTable"

const progressLabel = "Reinitializing attribute table"

// fidField is the single column the rebuilt table carries: a numeric FID,
// width 10, no decimal places.
func fidField() shp.Field { return shp.NumberField("FID", 10) }

// RowWriter is the slice of the attribute store the population loop needs.
// Close seals the table exactly once; Abort closes it without sealing (the
// cancellation and error paths).
type RowWriter interface {
	Append(values ...interface{}) error
	Close() error
	Abort() error
}

// Reinitializer rebuilds a shapefile's attribute table, replacing whatever
// schema is there with a single sequential FID column.
type Reinitializer struct {
	host host.Host

	// Seams for the external collaborators; the defaults hit the real
	// shapefile reader and dbf writer.
	countFeatures func(path string) (int, error)
	openStore     func(path string, fields []shp.Field) (RowWriter, error)
}

// New returns a Reinitializer reporting through h.
func New(h host.Host) *Reinitializer {
	return &Reinitializer{
		host:          h,
		countFeatures: shputil.FeatureCount,
		openStore: func(path string, fields []shp.Field) (RowWriter, error) {
			return dbf.Create(path, fields)
		},
	}
}

// Reinitialize rebuilds the attribute table paired with the geometry file
// at geometryPath. On success the .dbf next to it holds exactly one FID
// column and one row per feature, numbered 1..N in record order. On failure
// the store may be left partially written; there is no rollback once
// truncation has begun.
func (r *Reinitializer) Reinitialize(geometryPath string) error {
	if strings.TrimSpace(geometryPath) == "" {
		return ErrInvalidArguments
	}

	total, err := r.countFeatures(geometryPath)
	if err != nil {
		return err
	}

	tablePath := shputil.ReplaceExtension(geometryPath, ".dbf")
	w, err := r.openStore(tablePath, []shp.Field{fidField()})
	if err != nil {
		return fmt.Errorf("create attribute table %s: %w", tablePath, err)
	}
	sealed := false
	defer func() {
		if !sealed {
			w.Abort()
		}
	}()

	// FID values go in as floats to match the declared numeric type.
	// Cancellation is polled only when the percentage ticks over, so a
	// request takes effect within the current 1% bucket at worst.
	oldProgress := -1
	for i := 0; i < total; i++ {
		if err := w.Append(float64(i + 1)); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
		progress := int(100.0 * float64(i) / float64(total))
		if progress != oldProgress {
			if r.host.CancelRequested() {
				return ErrCancelled
			}
			r.host.ReportProgress(progressLabel, progress)
			oldProgress = progress
		}
	}

	sealed = true
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize attribute table %s: %w", tablePath, err)
	}
	return nil
}
