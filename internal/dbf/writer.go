// Package dbf writes dBase III tables, the attribute store paired with a
// shapefile. go-shp can only emit a .dbf while writing a whole new
// .shp/.shx/.dbf trio, which is no use when the geometry must stay
// untouched, so this package writes the table on its own. The on-disk
// layout is the one go-shp's reader parses, and shp.Field doubles as the
// schema descriptor.
package dbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	shp "github.com/jonas-p/go-shp"
)

// Writer builds a dBase III table record by record. Close seals the table;
// Abort closes the file without sealing it, leaving a header that reports
// zero records.
type Writer struct {
	f         *os.File
	fields    []shp.Field
	headerLen int
	recordLen int
	records   int
	closed    bool
}

// Create opens a new table at path, truncating any existing file there, and
// writes the header and field descriptors. The record count in the header
// stays zero until Close.
func Create(path string, fields []shp.Field) (*Writer, error) {
	if len(fields) == 0 {
		return nil, errors.New("dbf: schema needs at least one field")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dbf: create %s: %w", path, err)
	}

	w := &Writer{
		f:         f,
		fields:    fields,
		headerLen: 32 + 32*len(fields) + 1,
		recordLen: 1, // deletion flag
	}
	for _, fld := range fields {
		w.recordLen += int(fld.Size)
	}

	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, fmt.Errorf("dbf: write header %s: %w", path, err)
	}
	return w, nil
}

// writeHeader writes the 32-byte file header, the 32-byte descriptor per
// field and the 0x0D terminator. Called again on Close to seal the final
// record count.
func (w *Writer) writeHeader() error {
	h := make([]byte, 32)
	h[0] = 0x03 // dBase III without memo
	now := time.Now()
	h[1] = byte(now.Year() - 1900)
	h[2] = byte(now.Month())
	h[3] = byte(now.Day())
	binary.LittleEndian.PutUint32(h[4:8], uint32(w.records))
	binary.LittleEndian.PutUint16(h[8:10], uint16(w.headerLen))
	binary.LittleEndian.PutUint16(h[10:12], uint16(w.recordLen))
	if _, err := w.f.WriteAt(h, 0); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, w.fields); err != nil {
		return err
	}
	buf.WriteByte(0x0d)
	_, err := w.f.WriteAt(buf.Bytes(), 32)
	return err
}

// Append writes one row. The number of values must match the schema arity
// and every value must fit its field's declared type and width.
func (w *Writer) Append(values ...interface{}) error {
	if w.closed {
		return errors.New("dbf: writer is closed")
	}
	if len(values) != len(w.fields) {
		return fmt.Errorf("dbf: got %d values for %d fields", len(values), len(w.fields))
	}

	rec := make([]byte, w.recordLen)
	rec[0] = ' ' // not deleted
	off := 1
	for i, fld := range w.fields {
		s, err := formatValue(fld, values[i])
		if err != nil {
			return err
		}
		copy(rec[off:off+int(fld.Size)], s)
		off += int(fld.Size)
	}

	pos := int64(w.headerLen) + int64(w.records)*int64(w.recordLen)
	if _, err := w.f.WriteAt(rec, pos); err != nil {
		return fmt.Errorf("dbf: write record %d: %w", w.records+1, err)
	}
	w.records++
	return nil
}

// Records returns the number of rows appended so far.
func (w *Writer) Records() int { return w.records }

// Close seals the table: the end-of-file marker is written, the header is
// rewritten with the final record count and the file is synced.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	end := int64(w.headerLen) + int64(w.records)*int64(w.recordLen)
	if _, err := w.f.WriteAt([]byte{0x1a}, end); err != nil {
		w.f.Close()
		return fmt.Errorf("dbf: write end marker: %w", err)
	}
	if err := w.writeHeader(); err != nil {
		w.f.Close()
		return fmt.Errorf("dbf: seal header: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("dbf: sync: %w", err)
	}
	return w.f.Close()
}

// Abort closes the underlying file without sealing the table. The header
// keeps its zero record count, so readers see an empty table rather than a
// half-written one.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}

// formatValue renders a value into the fixed-width text cell dBase uses.
// Numerics are right-justified, strings left-justified, dates YYYYMMDD.
func formatValue(fld shp.Field, v interface{}) (string, error) {
	size := int(fld.Size)
	switch fld.Fieldtype {
	case 'N', 'F':
		var s string
		switch n := v.(type) {
		case float64:
			s = strconv.FormatFloat(n, 'f', int(fld.Precision), 64)
		case float32:
			s = strconv.FormatFloat(float64(n), 'f', int(fld.Precision), 32)
		case int:
			s = strconv.Itoa(n)
		case int32:
			s = strconv.FormatInt(int64(n), 10)
		case int64:
			s = strconv.FormatInt(n, 10)
		case string:
			s = n
		default:
			return "", fmt.Errorf("dbf: field %s: cannot store %T in a numeric field", fld.String(), v)
		}
		if len(s) > size {
			return "", fmt.Errorf("dbf: field %s: value %q exceeds width %d", fld.String(), s, size)
		}
		return strings.Repeat(" ", size-len(s)) + s, nil
	case 'C':
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("dbf: field %s: cannot store %T in a character field", fld.String(), v)
		}
		if len(s) > size {
			s = s[:size]
		}
		return s + strings.Repeat(" ", size-len(s)), nil
	case 'D':
		var s string
		switch d := v.(type) {
		case time.Time:
			s = d.Format("20060102")
		case string:
			s = d
		default:
			return "", fmt.Errorf("dbf: field %s: cannot store %T in a date field", fld.String(), v)
		}
		if len(s) > size {
			return "", fmt.Errorf("dbf: field %s: date %q exceeds width %d", fld.String(), s, size)
		}
		return s + strings.Repeat(" ", size-len(s)), nil
	default:
		return "", fmt.Errorf("dbf: field %s: unsupported field type %q", fld.String(), fld.Fieldtype)
	}
}
