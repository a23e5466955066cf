package picks

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingColumn indicates the header lacks a column the analysis needs.
var ErrMissingColumn = errors.New("missing required column")

const maxLineBytes = 1 << 20

// ReadFile loads every pick from the table at path.
func ReadFile(path string) ([]Pick, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pick file: %w", err)
	}
	defer file.Close()

	rows, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Read parses a whitespace-delimited pick table with a header row.
func Read(r io.Reader) ([]Pick, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		bindings []*column
		width    int
		rows     []Pick
		lineNo   int
	)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if bindings == nil {
			var err error
			bindings, err = bindHeader(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			width = len(fields)
			continue
		}
		if len(fields) != width {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", lineNo, width, len(fields))
		}
		var p Pick
		for i, col := range bindings {
			if col == nil {
				continue
			}
			if err := col.set(&p, fields[i]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		rows = append(rows, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan pick table: %w", err)
	}
	if bindings == nil {
		return nil, errors.New("pick table has no header row")
	}
	return rows, nil
}

// bindHeader maps each header position to its schema column; unknown columns
// bind to nil and are skipped.
func bindHeader(header []string) ([]*column, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[name] = i
	}
	bindings := make([]*column, len(header))
	var missing []string
	for i := range schema {
		col := &schema[i]
		pos, ok := positions[col.name]
		if !ok {
			if col.required {
				missing = append(missing, col.name)
			}
			continue
		}
		bindings[pos] = col
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return bindings, nil
}
