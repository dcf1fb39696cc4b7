package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeName  = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	nonAlphaNum = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Store is a flat-file text corpus: one record per .txt file under a single
// directory. Writes overwrite by name, and queries always re-read the whole
// directory. Concurrent tasks writing the same record name race
// last-writer-wins; there is nothing here worth locking over.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create knowledge dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put stores content under a sanitized record name and returns the name
// actually used.
func (s *Store) Put(name, content string) (string, error) {
	safe := unsafeName.ReplaceAllString(name, "_")
	path := filepath.Join(s.dir, safe+".txt")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)), 0644); err != nil {
		return "", fmt.Errorf("write record %s: %w", safe, err)
	}
	return safe, nil
}

// Corpus returns every record concatenated in directory order. An empty
// string means the store holds nothing yet.
func (s *Store) Corpus() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("read knowledge dir: %w", err)
	}

	var b strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return "", fmt.Errorf("read record %s: %w", e.Name(), err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// DeriveName builds a record name from the leading characters of a search
// instruction, so auto-saved results get a stable, recognizable filename.
// The prefix is measured in characters so non-ASCII instructions are not
// split mid-rune.
func DeriveName(instruction string) string {
	if runes := []rune(instruction); len(runes) > 20 {
		instruction = string(runes[:20])
	}
	return nonAlphaNum.ReplaceAllString(instruction, "_")
}
