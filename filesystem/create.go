package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ViniZap4/notepads/domain"
)

// CreateNote makes an empty note for title in scope. When the slug path is
// already taken the existing note is returned with existed set and nothing is
// written.
func (s *Store) CreateNote(title string, scope domain.Scope) (note domain.Note, existed bool, err error) {
	dir, err := s.ScopeDir(scope)
	if err != nil {
		return domain.Note{}, false, err
	}
	if _, err := os.Stat(dir); err != nil {
		return domain.Note{}, false, classify("create note in", dir, err)
	}

	file := Slugify(title)
	path := filepath.Join(dir, file)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		titles, err := s.loadIndex(dir)
		if err != nil {
			return domain.Note{}, false, err
		}
		return domain.Note{Title: noteTitle(titles, file), File: file, Scope: scope, Path: path}, true, nil
	}
	if err != nil {
		return domain.Note{}, false, fmt.Errorf("create note %s: %w: %w", path, ErrIOFailure, err)
	}
	if err := f.Close(); err != nil {
		return domain.Note{}, false, fmt.Errorf("create note %s: %w: %w", path, ErrIOFailure, err)
	}

	note = domain.Note{Title: DisplayTitle(file), File: file, Scope: scope, Path: path}
	if s.titleIndex {
		note.Title = title
		if err := s.updateIndex(dir, func(titles map[string]string) { titles[file] = title }); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("title not recorded")
		}
	}
	s.log.Debug().Str("path", path).Msg("note created")
	return note, false, nil
}

// Rename moves a note to the slug path of newTitle inside the same scope. An
// occupied target is ErrAlreadyExists and nothing is moved, even when the
// target is the note itself.
func (s *Store) Rename(oldPath, newTitle string) (domain.Note, error) {
	oldPath, err := s.checkNotePath(oldPath)
	if err != nil {
		return domain.Note{}, err
	}
	if _, err := os.Lstat(oldPath); err != nil {
		return domain.Note{}, classify("rename", oldPath, err)
	}

	dir := filepath.Dir(oldPath)
	file := Slugify(newTitle)
	newPath := filepath.Join(dir, file)
	taken, err := exists(newPath)
	if err != nil {
		return domain.Note{}, fmt.Errorf("rename %s: %w: %w", oldPath, ErrIOFailure, err)
	}
	if taken {
		return domain.Note{}, fmt.Errorf("rename %s to %s: %w", oldPath, file, ErrAlreadyExists)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return domain.Note{}, fmt.Errorf("rename %s: %w: %w", oldPath, ErrIOFailure, err)
	}

	note := domain.Note{Title: DisplayTitle(file), File: file, Scope: s.scopeOf(newPath), Path: newPath}
	if s.titleIndex {
		note.Title = newTitle
		err := s.updateIndex(dir, func(titles map[string]string) {
			delete(titles, filepath.Base(oldPath))
			titles[file] = newTitle
		})
		if err != nil {
			s.log.Warn().Err(err).Str("path", newPath).Msg("title not recorded")
		}
	}
	s.log.Debug().Str("from", oldPath).Str("to", newPath).Msg("note renamed")
	return note, nil
}

// Delete removes a note permanently.
func (s *Store) Delete(path string) error {
	path, err := s.checkNotePath(path)
	if err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return classify("delete", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("delete %s: is a directory: %w", path, ErrIOFailure)
	}
	if err := os.Remove(path); err != nil {
		return classify("delete", path, err)
	}

	dir := filepath.Dir(path)
	if err := s.updateIndex(dir, func(titles map[string]string) { delete(titles, filepath.Base(path)) }); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("stale title left in index")
	}
	s.log.Debug().Str("path", path).Msg("note deleted")
	return nil
}

// CreateFolder makes an empty folder directly under the notes root.
func (s *Store) CreateFolder(name string) (domain.Folder, error) {
	if err := validName(name); err != nil {
		return domain.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	path := filepath.Join(s.root, name)
	if err := os.Mkdir(path, 0755); err != nil {
		return domain.Folder{}, classify("create folder", path, err)
	}
	s.log.Debug().Str("path", path).Msg("folder created")
	return domain.Folder{Name: name, Path: path}, nil
}
