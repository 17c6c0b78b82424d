package attrib

import (
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/panics"

	"shpattr/internal/database"
	"shpattr/internal/host"
)

// Run is the rebuild tool's boundary: it executes the reinitialization for
// the given argument list and reports every outcome through the host. No
// error escapes past it; the returned Kind exists for callers that care.
// Progress is reset on every exit path.
func Run(h host.Host, args []string) Kind {
	var input string
	if len(args) > 0 {
		input = args[0]
	}
	return execute(h, ToolName, progressLabel, "Attribute table rebuilt", func() error {
		return New(h).Reinitialize(input)
	})
}

// RunExport is the boundary for the database export tool.
func RunExport(h host.Host, db *database.Database, input, table string) Kind {
	return execute(h, ExportToolName, exportLabel, "Attribute table exported", func() error {
		return Export(h, db, input, table)
	})
}

func execute(h host.Host, tool, label, success string, fn func() error) Kind {
	defer h.ReportProgress(label, 0)

	start := time.Now()
	var err error
	var catcher panics.Catcher
	catcher.Try(func() { err = fn() })
	if rec := catcher.Recovered(); rec != nil {
		err = recoveredError(rec)
	}

	kind := Classify(err)
	switch kind {
	case KindOK:
		h.ShowMessage(fmt.Sprintf("%s (%v).", success, time.Since(start).Truncate(time.Millisecond)))
	case KindInvalidArguments:
		h.ShowMessage("Tool run with no input file. Supply the path to a vector file (.shp).")
	case KindResourceExhaustion:
		h.ShowMessage("Memory requirements of the operation exceeded available resources. Operation aborted.")
	case KindCancelled:
		h.ShowMessage("Operation cancelled.")
	default:
		h.ShowMessage("The operation could not be completed. See the error log for details.")
		h.LogError(tool, err)
	}
	return kind
}

// recoveredError folds a recovered panic into the error taxonomy. The
// runtime's allocation failures are recognised by their message so they are
// classified ahead of the generic bucket.
func recoveredError(rec *panics.Recovered) error {
	if strings.Contains(fmt.Sprint(rec.Value), "out of memory") {
		return fmt.Errorf("%w: %v", ErrResourceExhaustion, rec.Value)
	}
	return rec.AsError()
}
