package harvest_test

import (
	"os"
	"path/filepath"
	"testing"

	"clockdrift/internal/harvest"
)

func TestSplitListCoversEveryItemOnce(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for size := 0; size <= 20; size++ {
			items := make([]int, size)
			for i := range items {
				items[i] = i
			}
			parts := harvest.SplitList(items, n)
			if len(parts) != n {
				t.Fatalf("n=%d size=%d: expected %d parts, got %d", n, size, n, len(parts))
			}
			seen := make(map[int]int)
			minLen, maxLen := size, 0
			for _, part := range parts {
				for _, v := range part {
					seen[v]++
				}
				minLen = min(minLen, len(part))
				maxLen = max(maxLen, len(part))
			}
			if len(seen) != size {
				t.Fatalf("n=%d size=%d: covered %d items", n, size, len(seen))
			}
			for v, c := range seen {
				if c != 1 {
					t.Fatalf("n=%d size=%d: item %d assigned %d times", n, size, v, c)
				}
			}
			if maxLen-minLen > 1 {
				t.Fatalf("n=%d size=%d: chunk sizes differ by %d", n, size, maxLen-minLen)
			}
		}
	}
}

func TestSplitListRemainderGoesToLowestRanks(t *testing.T) {
	parts := harvest.SplitList([]string{"a", "b", "c", "d", "e", "f", "g"}, 3)
	want := [][]string{{"a", "b", "g"}, {"c", "d"}, {"e", "f"}}
	for rank := range want {
		if len(parts[rank]) != len(want[rank]) {
			t.Fatalf("rank %d: got %v want %v", rank, parts[rank], want[rank])
		}
		for i := range want[rank] {
			if parts[rank][i] != want[rank][i] {
				t.Fatalf("rank %d: got %v want %v", rank, parts[rank], want[rank])
			}
		}
	}
	if harvest.SplitList([]int{1}, 0) != nil {
		t.Fatal("expected nil for zero ranks")
	}
}

func TestRecursiveGlob(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b/2.txt", "a/1.txt", "a/deep/3.txt", "a/skip.xml", "top.txt"} {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := harvest.RecursiveGlob(root, "*.txt")
	if err != nil {
		t.Fatalf("RecursiveGlob: %v", err)
	}
	want := []string{"a/1.txt", "a/deep/3.txt", "b/2.txt", "top.txt"}
	if len(files) != len(want) {
		t.Fatalf("got %v", files)
	}
	for i, rel := range want {
		if files[i] != filepath.Join(root, rel) {
			t.Fatalf("file %d: got %s want %s", i, files[i], rel)
		}
	}
	if _, err := harvest.RecursiveGlob(root, "["); err == nil {
		t.Fatal("expected bad pattern error")
	}
}
