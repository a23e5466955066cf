package harvest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// SplitList partitions items across n ranks. Rank i first receives the
// contiguous chunk items[i*q:(i+1)*q] with q = len(items)/n; the remaining
// len(items)%n items then go one each to ranks 0, 1, ... in order.
func SplitList[T any](items []T, n int) [][]T {
	if n <= 0 {
		return nil
	}
	parts := make([][]T, n)
	quota := len(items) / n
	next := 0
	for rank := 0; rank < n; rank++ {
		parts[rank] = append(parts[rank], items[next:next+quota]...)
		next += quota
	}
	for rank := 0; next < len(items); rank++ {
		parts[rank] = append(parts[rank], items[next])
		next++
	}
	return parts
}

// RecursiveGlob returns every regular file under root whose base name
// matches pattern, sorted by path.
func RecursiveGlob(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
