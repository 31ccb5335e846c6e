package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ViniZap4/notepads/domain"
)

// Store owns every note and folder under a single notes root. Operations are
// synchronous and unlocked; one process is expected to own the root.
type Store struct {
	root       string
	log        zerolog.Logger
	titleIndex bool
}

type Option func(*Store)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithTitleIndex keeps entered titles in a per-directory sidecar file so that
// listings and lookups use them instead of the title derived from the file name.
func WithTitleIndex(enabled bool) Option {
	return func(s *Store) {
		s.titleIndex = enabled
	}
}

// NewStore opens the notes root, creating it when missing.
func NewStore(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("notes root: %w", ErrInvalidName)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("notes root %s: %w: %w", root, ErrInvalidName, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, classify("create root", abs, err)
	}

	s := &Store{root: abs, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Root() string { return s.root }

// ScopeDir returns the directory a scope refers to. It does not check that the
// folder exists.
func (s *Store) ScopeDir(scope domain.Scope) (string, error) {
	if scope.IsRoot() {
		return s.root, nil
	}
	if err := validName(string(scope)); err != nil {
		return "", fmt.Errorf("scope %q: %w", scope, err)
	}
	return filepath.Join(s.root, string(scope)), nil
}

// NotePath joins a note file name onto a scope directory.
func (s *Store) NotePath(scope domain.Scope, file string) (string, error) {
	dir, err := s.ScopeDir(scope)
	if err != nil {
		return "", err
	}
	if file != filepath.Base(file) || !strings.HasSuffix(file, NoteExt) || strings.ContainsAny(file, `/\`) {
		return "", fmt.Errorf("note file %q: %w", file, ErrInvalidName)
	}
	return filepath.Join(dir, file), nil
}

// ListNotes returns the notes directly inside scope, ordered by title and then
// by file name. Folders and hidden files are never listed, and folders are
// never descended into.
func (s *Store) ListNotes(scope domain.Scope) ([]domain.Note, error) {
	dir, err := s.ScopeDir(scope)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classify("list notes", dir, err)
	}
	titles, err := s.loadIndex(dir)
	if err != nil {
		return nil, err
	}

	notes := make([]domain.Note, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !strings.HasSuffix(entry.Name(), NoteExt) {
			continue
		}
		notes = append(notes, domain.Note{
			Title: noteTitle(titles, entry.Name()),
			File:  entry.Name(),
			Scope: scope,
			Path:  filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Title != notes[j].Title {
			return notes[i].Title < notes[j].Title
		}
		return notes[i].File < notes[j].File
	})
	return notes, nil
}

// ListFolders returns the folders directly under the notes root. Hidden
// directories are skipped.
func (s *Store) ListFolders() ([]domain.Folder, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, classify("list folders", s.root, err)
	}

	var folders []domain.Folder
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folders = append(folders, domain.Folder{
			Name: entry.Name(),
			Path: filepath.Join(s.root, entry.Name()),
		})
	}
	return folders, nil
}

// Read returns the full text of a note. A missing file is ErrNotFound and
// content that is not UTF-8 is ErrReadDecode; an empty note reads as "" with a
// nil error.
func (s *Store) Read(path string) (string, error) {
	path, err := s.checkNotePath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", classify("read", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read %s: %w", path, ErrReadDecode)
	}
	return string(data), nil
}

// Write replaces the content of a note, creating the file if needed. The
// scope directory must already exist.
func (s *Store) Write(path, text string) error {
	path, err := s.checkNotePath(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w: %w", path, ErrIOFailure, err)
	}
	s.log.Debug().Str("path", path).Int("bytes", len(text)).Msg("note written")
	return nil
}

// ResolveTitle finds the note a listed title refers to. An exact title index
// entry wins, then the slug path for the title, then a case-insensitive match
// against the listing of scope.
func (s *Store) ResolveTitle(title string, scope domain.Scope) (domain.Note, error) {
	dir, err := s.ScopeDir(scope)
	if err != nil {
		return domain.Note{}, err
	}
	titles, err := s.loadIndex(dir)
	if err != nil {
		return domain.Note{}, err
	}

	if file, ok := fileForTitle(titles, title); ok {
		path := filepath.Join(dir, file)
		if isFile(path) {
			return domain.Note{Title: title, File: file, Scope: scope, Path: path}, nil
		}
	}

	file := Slugify(title)
	path := filepath.Join(dir, file)
	if isFile(path) {
		return domain.Note{Title: noteTitle(titles, file), File: file, Scope: scope, Path: path}, nil
	}

	notes, err := s.ListNotes(scope)
	if err != nil {
		return domain.Note{}, err
	}
	for _, note := range notes {
		if strings.EqualFold(note.Title, title) {
			return note, nil
		}
	}
	return domain.Note{}, fmt.Errorf("resolve %q in %q: %w", title, scope, ErrNotFound)
}

// checkNotePath accepts only note files inside the root or one folder below it.
func (s *Store) checkNotePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("note path %s: %w", path, ErrInvalidName)
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("note path %s is outside %s: %w", path, s.root, ErrInvalidName)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) > 2 || !strings.HasSuffix(abs, NoteExt) {
		return "", fmt.Errorf("note path %s: %w", path, ErrInvalidName)
	}
	if len(parts) == 2 {
		if err := validName(parts[0]); err != nil {
			return "", fmt.Errorf("note path %s: %w", path, err)
		}
	}
	return abs, nil
}

func (s *Store) scopeOf(path string) domain.Scope {
	dir := filepath.Dir(path)
	if dir == s.root {
		return domain.RootScope
	}
	return domain.Scope(filepath.Base(dir))
}

func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%q starts with a dot: %w", name, ErrInvalidName)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%q contains a path separator: %w", name, ErrInvalidName)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
