package picks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Write emits rows as a space-delimited table with the canonical header.
func Write(w io.Writer, rows []Pick) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header(), " ") + "\n"); err != nil {
		return err
	}
	fields := make([]string, len(schema))
	for _, p := range rows {
		for i, col := range schema {
			fields[i] = col.get(p)
		}
		if _, err := bw.WriteString(strings.Join(fields, " ") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes rows to path, replacing any existing file.
func WriteFile(path string, rows []Pick) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create pick table directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pick table: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("write pick table: %w", err)
	}
	return file.Close()
}
