// Package shputil holds the small shapefile helpers shared by the attribute
// table tools.
package shputil

import (
	"fmt"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
)

// FeatureCount returns the number of records in the geometry file at path.
// The count comes from walking the .shp itself, not the paired .dbf, so it
// stays correct when the attribute table is missing or corrupt.
func FeatureCount(path string) (int, error) {
	r, err := shp.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	n := 0
	for r.Next() {
		n++
	}
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("scan shapefile %s: %w", path, err)
	}
	return n, nil
}

// ReplaceExtension swaps the extension at the end of path for ext (given
// with its leading dot). Only the suffix is replaced, so a directory name
// that happens to contain ".shp" is never altered.
func ReplaceExtension(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}
