package storage

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Exception tells the scanner how to treat one page.
type Exception string

const (
	// Ignore skips the page and excludes its route from reconciliation.
	Ignore Exception = "ignore"
	// Include parses the page in relaxed mode and keeps its warnings quiet.
	Include Exception = "include"
)

// Exceptions maps relative page paths to their treatment.
type Exceptions map[string]Exception

// Get returns the exception for a page, or "" when there is none.
func (e Exceptions) Get(page string) Exception {
	return e[page]
}

// Ignored returns the pages marked Ignore.
func (e Exceptions) Ignored() []string {
	var pages []string
	for p, kind := range e {
		if kind == Ignore {
			pages = append(pages, p)
		}
	}
	sort.Strings(pages)
	return pages
}

type exceptionsFile struct {
	Pages map[string]string `toml:"pages"`
}

// LoadExceptions reads the page-exception list. A missing file yields no
// exceptions.
//
// Two formats are accepted. The TOML form:
//
//	[pages]
//	"/index.php/trails/gpstracks/123-foo" = "ignore"
//
// and the legacy line form "N: kind: /path".
func LoadExceptions(path string) (Exceptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Exceptions{}, nil
		}
		return nil, fmt.Errorf("reading exceptions: %w", err)
	}
	return ParseExceptions(data)
}

// ParseExceptions decodes exceptions in either supported format.
func ParseExceptions(data []byte) (Exceptions, error) {
	var file exceptionsFile
	tomlErr := toml.Unmarshal(data, &file)
	if tomlErr == nil {
		out := make(Exceptions, len(file.Pages))
		for page, kind := range file.Pages {
			k, err := parseKind(kind)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", page, err)
			}
			out[strings.TrimSpace(page)] = k
		}
		return out, nil
	}

	out, err := parseLegacyExceptions(data)
	if err != nil {
		return nil, fmt.Errorf("parsing exceptions: not TOML (%v) nor legacy format: %w", tomlErr, err)
	}
	return out, nil
}

func parseLegacyExceptions(data []byte) (Exceptions, error) {
	lines, err := readLines(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	out := make(Exceptions, len(lines))
	for i, line := range lines {
		parts := strings.SplitN(line, ": ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: want \"N: kind: /path\", got %q", i+1, line)
		}
		k, err := parseKind(parts[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out[strings.TrimSpace(parts[2])] = k
	}
	return out, nil
}

func parseKind(s string) (Exception, error) {
	switch Exception(strings.ToLower(strings.TrimSpace(s))) {
	case Ignore:
		return Ignore, nil
	case Include:
		return Include, nil
	}
	return "", fmt.Errorf("unknown exception kind %q", s)
}
