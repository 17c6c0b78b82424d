package attrib

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"shpattr/internal/database"
	"shpattr/internal/host"
)

// ExportToolName keys diagnostic log entries for the export tool.
const ExportToolName = "ExportAttributeTable"

const exportLabel = "Exporting attribute table"

// Export copies the attribute table paired with geometryPath into a
// database table, creating or replacing the table to match the DBF schema.
// Rows go over in record order inside one transaction, with the same
// progress and cancellation discipline as the rebuild loop; a cancelled or
// failed export is rolled back.
func Export(h host.Host, db *database.Database, geometryPath, table string) error {
	if strings.TrimSpace(geometryPath) == "" {
		return ErrInvalidArguments
	}

	r, err := shp.Open(geometryPath)
	if err != nil {
		return fmt.Errorf("open shapefile %s: %w", geometryPath, err)
	}
	defer r.Close()

	fields := r.Fields()
	if len(fields) == 0 {
		return fmt.Errorf("attribute table for %s has no fields", geometryPath)
	}
	total := r.AttributeCount()

	if table == "" {
		table = database.TableNameFor(geometryPath)
	}
	if err := db.EnsureAttributeTable(table, fields); err != nil {
		return err
	}

	ins, err := db.NewInserter(table, fields)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			ins.Rollback()
		}
	}()

	vals := make([]interface{}, len(fields))
	oldProgress := -1
	for i := 0; i < total; i++ {
		for j := range fields {
			vals[j] = r.ReadAttribute(i, j)
		}
		if err := ins.Insert(vals...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", i+1, table, err)
		}
		progress := int(100.0 * float64(i) / float64(total))
		if progress != oldProgress {
			if h.CancelRequested() {
				return ErrCancelled
			}
			h.ReportProgress(exportLabel, progress)
			oldProgress = progress
		}
	}

	committed = true
	if err := ins.Commit(); err != nil {
		return fmt.Errorf("commit export to %s: %w", table, err)
	}
	return nil
}
