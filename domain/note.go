package domain

// Scope names the directory a note operation runs in. The zero value is the
// notes root; any other value is the name of a folder directly under it.
type Scope string

const RootScope Scope = ""

func (s Scope) IsRoot() bool { return s == RootScope }

type Note struct {
	Title   string `json:"title"`
	File    string `json:"file"`
	Scope   Scope  `json:"scope"`
	Path    string `json:"-"`
	Content string `json:"content,omitempty"`
}

type Folder struct {
	Name string `json:"name"`
	Path string `json:"-"`
}
