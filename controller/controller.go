package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/notepads/domain"
	"github.com/ViniZap4/notepads/events"
	"github.com/ViniZap4/notepads/filesystem"
)

type NoteStore interface {
	ListNotes(scope domain.Scope) ([]domain.Note, error)
	ListFolders() ([]domain.Folder, error)
	NotePath(scope domain.Scope, file string) (string, error)
	Read(path string) (string, error)
	Write(path, text string) error
	Rename(oldPath, newTitle string) (domain.Note, error)
	Delete(path string) error
	CreateFolder(name string) (domain.Folder, error)
	CreateNote(title string, scope domain.Scope) (domain.Note, bool, error)
	ResolveTitle(title string, scope domain.Scope) (domain.Note, error)
}

type Publisher interface {
	Publish(ev events.Event)
}

// Controller turns intents into store calls and answers with the view the
// shell should render. It holds no scope of its own; every intent names one.
type Controller struct {
	store NoteStore
	pub   Publisher
	log   zerolog.Logger
}

func New(store NoteStore, pub Publisher, log zerolog.Logger) *Controller {
	return &Controller{store: store, pub: pub, log: log}
}

func (c *Controller) Dispatch(ctx context.Context, in Intent) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	// Folders live under the root, so a new folder is always shown from there.
	if in.Kind == NewFolder {
		in.Scope = domain.RootScope
	}
	id := uuid.NewString()
	log := c.log.With().Str("intent_id", id).Str("intent", string(in.Kind)).Str("scope", string(in.Scope)).Logger()

	view := View{Scope: in.Scope}
	note, err := c.apply(in, &view)
	if err != nil {
		log.Info().Err(err).Str("kind", filesystem.KindOf(err)).Msg("intent failed")
		return View{}, err
	}
	view.Note = note

	if in.mutates() && !view.Existed {
		ev := events.Event{ID: id, Type: events.TypeRefresh, Intent: string(in.Kind), Scope: in.Scope}
		if note != nil {
			ev.File = note.File
		}
		if c.pub != nil {
			c.pub.Publish(ev)
		}
	}

	if view.Folders, err = c.store.ListFolders(); err != nil {
		return View{}, err
	}
	if view.Notes, err = c.store.ListNotes(in.Scope); err != nil {
		return View{}, err
	}
	log.Debug().Int("notes", len(view.Notes)).Msg("intent applied")
	return view, nil
}

func (c *Controller) apply(in Intent, view *View) (*domain.Note, error) {
	switch in.Kind {
	case Refresh:
		return nil, nil

	case NewNote:
		if strings.TrimSpace(in.Title) == "" {
			return nil, fmt.Errorf("%s needs a title: %w", in.Kind, ErrBadIntent)
		}
		note, existed, err := c.store.CreateNote(in.Title, in.Scope)
		if err != nil {
			return nil, err
		}
		view.Existed = existed
		if existed {
			if note.Content, err = c.store.Read(note.Path); err != nil {
				return nil, err
			}
		}
		return &note, nil

	case OpenNote:
		note, err := c.find(in)
		if err != nil {
			return nil, err
		}
		if note.Content, err = c.store.Read(note.Path); err != nil {
			return nil, err
		}
		return &note, nil

	case SaveNote:
		path, err := c.notePath(in)
		if err != nil {
			return nil, err
		}
		if err := c.store.Write(path, in.Text); err != nil {
			return nil, err
		}
		note, err := c.byFile(in.Scope, in.File)
		if err != nil {
			return nil, err
		}
		note.Content = in.Text
		return &note, nil

	case RenameNote:
		if strings.TrimSpace(in.Title) == "" {
			return nil, fmt.Errorf("%s needs a new title: %w", in.Kind, ErrBadIntent)
		}
		path, err := c.notePath(in)
		if err != nil {
			return nil, err
		}
		note, err := c.store.Rename(path, in.Title)
		if err != nil {
			return nil, err
		}
		return &note, nil

	case DeleteNote:
		path, err := c.notePath(in)
		if err != nil {
			return nil, err
		}
		return nil, c.store.Delete(path)

	case NewFolder:
		if _, err := c.store.CreateFolder(in.Name); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unknown intent %q: %w", in.Kind, ErrBadIntent)
}

func (c *Controller) notePath(in Intent) (string, error) {
	if in.File == "" {
		return "", fmt.Errorf("%s needs a file: %w", in.Kind, ErrBadIntent)
	}
	return c.store.NotePath(in.Scope, in.File)
}

// find locates the note an open intent refers to, by file when given and by
// title otherwise.
func (c *Controller) find(in Intent) (domain.Note, error) {
	switch {
	case in.File != "":
		return c.byFile(in.Scope, in.File)
	case in.Title != "":
		return c.store.ResolveTitle(in.Title, in.Scope)
	}
	return domain.Note{}, fmt.Errorf("%s needs a title or file: %w", in.Kind, ErrBadIntent)
}

func (c *Controller) byFile(scope domain.Scope, file string) (domain.Note, error) {
	if _, err := c.store.NotePath(scope, file); err != nil {
		return domain.Note{}, err
	}
	notes, err := c.store.ListNotes(scope)
	if err != nil {
		return domain.Note{}, err
	}
	for _, n := range notes {
		if n.File == file {
			return n, nil
		}
	}
	return domain.Note{}, fmt.Errorf("note %s in %q: %w", file, scope, filesystem.ErrNotFound)
}
