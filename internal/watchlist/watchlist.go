// Package watchlist persists the two named symbol lists (favorites and
// indexes) as JSON files. The aggregation core only ever consumes the
// ordered symbol list; this store owns the files.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind selects which named list to load or save.
type Kind string

const (
	Favorites Kind = "favorites"
	Indexes   Kind = "indexes"
)

// Defaults written when a list file does not exist yet.
var (
	defaultFavorites = []string{"SH513100", "SH513500", "SH513180", "IBIT"}
	defaultIndexes   = []string{
		"SH000001", "SZ399001", "SZ399006", "SH000688",
		"SH000016", "BJ899050", "HKHSI", "HKHSTECH",
		".DJI", ".IXIC", ".INX",
	}
)

// Store reads and writes the watchlist files.
type Store struct {
	FavoritesPath string
	IndexesPath   string
}

type favoritesFile struct {
	Stocks []string `json:"stocks"`
}

type indexesFile struct {
	Indexes []string `json:"indexes"`
}

// Load returns the ordered symbol list of the given kind, creating the
// file with defaults when it does not exist. Symbols are normalized to
// upper case.
func (s *Store) Load(kind Kind) ([]string, error) {
	path, defaults := s.pick(kind)
	if path == "" {
		return nil, fmt.Errorf("unknown watchlist kind %q", kind)
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.Save(kind, defaults); err != nil {
			return nil, err
		}
		return append([]string(nil), defaults...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var symbols []string
	switch kind {
	case Favorites:
		var f favoritesFile
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		symbols = f.Stocks
	case Indexes:
		var f indexesFile
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		symbols = f.Indexes
	}

	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym != "" {
			out = append(out, sym)
		}
	}
	return out, nil
}

// Save writes the ordered symbol list of the given kind.
func (s *Store) Save(kind Kind, symbols []string) error {
	path, _ := s.pick(kind)
	if path == "" {
		return fmt.Errorf("unknown watchlist kind %q", kind)
	}

	var payload any
	switch kind {
	case Favorites:
		payload = favoritesFile{Stocks: symbols}
	case Indexes:
		payload = indexesFile{Indexes: symbols}
	}
	b, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *Store) pick(kind Kind) (path string, defaults []string) {
	switch kind {
	case Favorites:
		return s.FavoritesPath, defaultFavorites
	case Indexes:
		return s.IndexesPath, defaultIndexes
	default:
		return "", nil
	}
}
