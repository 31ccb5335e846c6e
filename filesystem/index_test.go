package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/notepads/domain"
)

func TestTitleIndex_KeepsEnteredTitles(t *testing.T) {
	s := newTestStore(t, WithTitleIndex(true))

	note, existed, err := s.CreateNote("Café Ideas!", domain.RootScope)
	require.NoError(t, err)
	require.False(t, existed)
	assert.Equal(t, "cafe_ideas.txt", note.File)
	assert.Equal(t, "Café Ideas!", note.Title)
	assert.FileExists(t, filepath.Join(s.Root(), IndexFile))

	notes, err := s.ListNotes(domain.RootScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Café Ideas!"}, titlesOf(notes))

	folders, err := s.ListFolders()
	require.NoError(t, err)
	assert.Empty(t, folders)

	found, err := s.ResolveTitle("Café Ideas!", domain.RootScope)
	require.NoError(t, err)
	assert.Equal(t, note.Path, found.Path)
}

func TestTitleIndex_FilesWithoutEntryUseDerivedTitle(t *testing.T) {
	s := newTestStore(t, WithTitleIndex(true))
	writeRaw(t, filepath.Join(s.Root(), "plain_file.txt"), "")

	notes, err := s.ListNotes(domain.RootScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Plain File"}, titlesOf(notes))
}

func TestTitleIndex_RenameAndDelete(t *testing.T) {
	s := newTestStore(t, WithTitleIndex(true))
	note, _, err := s.CreateNote("first DRAFT", domain.RootScope)
	require.NoError(t, err)

	renamed, err := s.Rename(note.Path, "Final (v2)")
	require.NoError(t, err)
	assert.Equal(t, "Final (v2)", renamed.Title)

	titles, err := s.loadIndex(s.Root())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"final_v2.txt": "Final (v2)"}, titles)

	require.NoError(t, s.Delete(renamed.Path))
	titles, err = s.loadIndex(s.Root())
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestTitleIndex_PerFolder(t *testing.T) {
	s := newTestStore(t, WithTitleIndex(true))
	_, err := s.CreateFolder("Work")
	require.NoError(t, err)
	_, _, err = s.CreateNote("Q3 Plan!", "Work")
	require.NoError(t, err)

	notes, err := s.ListNotes("Work")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q3 Plan!"}, titlesOf(notes))
	assert.FileExists(t, filepath.Join(s.Root(), "Work", IndexFile))
	assert.NoFileExists(t, filepath.Join(s.Root(), IndexFile))
}

func TestTitleIndex_Corrupt(t *testing.T) {
	s := newTestStore(t, WithTitleIndex(true))
	writeRaw(t, filepath.Join(s.Root(), IndexFile), "titles: [unclosed")

	_, err := s.ListNotes(domain.RootScope)
	assert.ErrorIs(t, err, ErrReadDecode)
}

func TestTitleIndex_Disabled(t *testing.T) {
	s := newTestStore(t)
	note, _, err := s.CreateNote("Café Ideas!", domain.RootScope)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Ideas", note.Title)
	assert.NoFileExists(t, filepath.Join(s.Root(), IndexFile))
}
