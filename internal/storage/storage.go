package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// Store handles persistence of the route dataset file.
type Store struct {
	path string
}

// New creates a Store for the dataset at path. A leading ~/ is expanded
// and the parent directory is created.
func New(path string) (*Store, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{path: path}, nil
}

// Path returns the dataset file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the dataset from disk. A missing file yields an empty dataset.
//
// Duplicate names are kept as loaded; use Dataset.DuplicateNames to report them.
func (s *Store) Load() (*route.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return route.NewDataset(), nil
		}
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var d route.Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	if d.Routes == nil {
		d.Routes = []*route.Record{}
	}

	return &d, nil
}

// Save writes the dataset sorted by (date, name). The file is replaced
// atomically so readers never observe a partial write. d itself is not
// reordered.
func (s *Store) Save(d *route.Dataset) error {
	sorted := &route.Dataset{Routes: append([]*route.Record{}, d.Routes...)}
	sorted.Sort()

	data, err := Encode(sorted)
	if err != nil {
		return err
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	return nil
}

// Encode renders a dataset in the on-disk form: two-space indent with
// non-ASCII and HTML characters written verbatim.
func Encode(d *route.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temp file in the target directory, syncs it
// and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        // nolint:errcheck
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()        // nolint:errcheck
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadPageList reads an ordered list of relative page paths, one per line.
// Blank lines are skipped.
func LoadPageList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page list: %w", err)
	}
	defer f.Close() // nolint:errcheck

	return readLines(f)
}

// SavePageList writes page paths, one per line.
func SavePageList(path string, pages []string) error {
	var buf bytes.Buffer
	for _, p := range pages {
		buf.WriteString(p)
		buf.WriteByte('\n')
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing page list: %w", err)
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning lines: %w", err)
	}
	return lines, nil
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
