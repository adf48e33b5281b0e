// Package export writes extracted shot collections to delimited files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/southbay/edlconv/internal/edl"
)

// ErrNothingToWrite is returned when a collection yields no exportable rows.
var ErrNothingToWrite = errors.New("nothing to write")

// RowWriter is the delimited sink rows are written to. *csv.Writer implements it.
type RowWriter interface {
	Write(record []string) error
}

// WriteRows writes the header and every exportable row of c to w. It returns
// the number of shot rows written.
func WriteRows(w RowWriter, c *edl.Collection) (int, error) {
	if c == nil || c.Len() == 0 {
		return 0, ErrNothingToWrite
	}
	if err := w.Write(edl.Columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	n := 0
	it := c.Rows()
	for it.Next() {
		if err := w.Write(it.Row()); err != nil {
			return n, fmt.Errorf("failed to write event %s: %w", it.Record().Event, err)
		}
		n++
	}
	return n, nil
}

// WriteCSV writes c as CSV to w.
func WriteCSV(w io.Writer, c *edl.Collection) (int, error) {
	cw := csv.NewWriter(w)
	n, err := WriteRows(cw, c)
	if err != nil {
		return n, err
	}
	cw.Flush()
	return n, cw.Error()
}

// WriteFile writes c as CSV to path. The file only appears once every row has
// been written, so a failed export leaves nothing behind.
func WriteFile(path string, c *edl.Collection) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := WriteCSV(tmp, c)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move export into place: %w", err)
	}
	return n, nil
}
