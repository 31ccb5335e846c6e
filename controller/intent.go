package controller

import (
	"errors"

	"github.com/ViniZap4/notepads/domain"
)

type Kind string

const (
	NewNote    Kind = "new_note"
	OpenNote   Kind = "open_note"
	SaveNote   Kind = "save_note"
	RenameNote Kind = "rename_note"
	DeleteNote Kind = "delete_note"
	NewFolder  Kind = "new_folder"
	Refresh    Kind = "refresh"
)

var ErrBadIntent = errors.New("bad intent")

// Intent is something the shell asks for. Which fields matter depends on Kind:
//
//	new_note     Title, Scope
//	open_note    Title or File, Scope
//	save_note    File, Text, Scope
//	rename_note  File, Title (the new title), Scope
//	delete_note  File, Scope
//	new_folder   Name
//	refresh      Scope
type Intent struct {
	Kind  Kind         `json:"type"`
	Scope domain.Scope `json:"scope"`
	Title string       `json:"title,omitempty"`
	File  string       `json:"file,omitempty"`
	Text  string       `json:"text,omitempty"`
	Name  string       `json:"name,omitempty"`
}

func (i Intent) mutates() bool {
	switch i.Kind {
	case NewNote, SaveNote, RenameNote, DeleteNote, NewFolder:
		return true
	}
	return false
}

// View is what the shell should render after an intent: the listing of the
// scope and, for intents that open an editor, the note with its content.
type View struct {
	Scope   domain.Scope    `json:"scope"`
	Folders []domain.Folder `json:"folders"`
	Notes   []domain.Note   `json:"notes"`
	Note    *domain.Note    `json:"note,omitempty"`
	Existed bool            `json:"existed,omitempty"`
}
