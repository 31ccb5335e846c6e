package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// IndexFile is the sidecar kept in each scope directory when the title index
// is enabled. It maps note file names to the titles they were created with.
const IndexFile = ".notepads-index.yaml"

type titleIndex struct {
	Titles map[string]string `yaml:"titles"`
}

func (s *Store) loadIndex(dir string) (map[string]string, error) {
	if !s.titleIndex {
		return nil, nil
	}
	path := filepath.Join(dir, IndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, classify("read index", path, err)
	}

	var idx titleIndex
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("read index %s: %w: %w", path, ErrReadDecode, err)
	}
	if idx.Titles == nil {
		idx.Titles = map[string]string{}
	}
	return idx.Titles, nil
}

func (s *Store) saveIndex(dir string, titles map[string]string) error {
	path := filepath.Join(dir, IndexFile)
	data, err := yaml.Marshal(&titleIndex{Titles: titles})
	if err != nil {
		return fmt.Errorf("encode index %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write index %s: %w: %w", path, ErrIOFailure, err)
	}
	return nil
}

// updateIndex applies fn to the titles of dir and saves the result. It is a
// no-op when the index is disabled.
func (s *Store) updateIndex(dir string, fn func(titles map[string]string)) error {
	if !s.titleIndex {
		return nil
	}
	titles, err := s.loadIndex(dir)
	if err != nil {
		return err
	}
	fn(titles)
	return s.saveIndex(dir, titles)
}

// fileForTitle returns the first file, in name order, recorded with title.
func fileForTitle(titles map[string]string, title string) (string, bool) {
	var files []string
	for file, stored := range titles {
		if stored == title {
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		return "", false
	}
	sort.Strings(files)
	return files[0], true
}

func noteTitle(titles map[string]string, file string) string {
	if title, ok := titles[file]; ok && title != "" {
		return title
	}
	return DisplayTitle(file)
}
