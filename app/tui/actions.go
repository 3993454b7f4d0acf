package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwoac/nvvim/search/bleve_indexer"
)

// targetTitle is the title the next mutating action applies to: the
// selected result row if there is one, otherwise whatever is typed in the
// query buffer.
func (m Model) targetTitle() string {
	if item, ok := m.list.SelectedItem().(noteItem); ok {
		return item.title
	}
	return strings.TrimSpace(m.textInput.Value())
}

// openSelected resolves the target title to a filename and hands it to
// the external editor. A title with no matching note resolves to a
// synthesized filename, so opening is also how notes get created. The
// index is closed while the editor runs because it holds an exclusive
// lock; EditingFinished reopens it.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	title := m.targetTitle()
	if title == "" {
		return m, nil
	}

	filename, err := m.resolver.ResolveFilename(title)
	if err != nil {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("open: %v", err)))
		return m, nil
	}

	// Reseed the query buffer with the chosen title.
	m.textInput.SetValue(title)
	m.textInput.CursorEnd()

	if err := m.indexer.Close(); err != nil {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("close index: %v", err)))
		return m, nil
	}
	return m, m.editor.EditFile(filepath.Join(m.config.RootPath, filename))
}

// deleteSelected removes the target note's file and rebuilds the index.
// There is no targeted delete in the store: the rebuild rescans the notes
// directory, which is what guarantees the stale entry is gone.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	title := m.targetTitle()
	if title == "" {
		return m, nil
	}

	filename, err := m.resolver.ResolveFilename(title)
	if err != nil {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("delete: %v", err)))
		return m, nil
	}

	err = os.Remove(filepath.Join(m.config.RootPath, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("delete %s: %v", filename, err)))
		return m, nil
	}

	m.textInput.SetValue("")

	indexer := m.indexer
	return m, func() tea.Msg {
		if err := indexer.Rebuild(); err != nil {
			return resultMsg{err: err}
		}
		return indexChangedMsg{}
	}
}

// startRename opens the rename prompt seeded with the target title.
func (m *Model) startRename() {
	title := m.targetTitle()
	if title == "" {
		return
	}
	m.renaming = true
	m.renameInput.SetValue(title)
	m.renameInput.CursorEnd()
	m.renameInput.Focus()
	m.textInput.Blur()
}

func (m Model) stopRename() Model {
	m.renaming = false
	m.renameInput.Blur()
	m.textInput.Focus()
	return m
}

// handleRenameKey drives the rename prompt. An empty answer (or escape)
// aborts; that is a normal stop, not an error.
func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.stopRename(), nil
	case "enter":
		newName := strings.TrimSpace(m.renameInput.Value())
		if newName == "" {
			return m.stopRename(), nil
		}
		return m.stopRename().finishRename(newName)
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

// finishRename writes the note under its new name, deletes the old file,
// rebuilds the index and opens the renamed note.
func (m Model) finishRename(newName string) (tea.Model, tea.Cmd) {
	if !strings.HasSuffix(newName, m.config.Extension) {
		newName += m.config.Extension
	}

	oldTitle := m.targetTitle()
	oldFile, err := m.resolver.ResolveFilename(oldTitle)
	if err != nil {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("rename: %v", err)))
		return m, nil
	}

	oldPath := filepath.Join(m.config.RootPath, oldFile)
	newPath := filepath.Join(m.config.RootPath, newName)

	content, err := os.ReadFile(oldPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("rename: read %s: %v", oldFile, err)))
		return m, nil
	}
	if err := os.WriteFile(newPath, content, 0o644); err != nil {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("rename: write %s: %v", newName, err)))
		return m, nil
	}
	err = os.Remove(oldPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		// The new file exists either way; the rebuild below indexes
		// whatever is actually on disk.
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("rename: remove %s: %v", oldFile, err)))
	}

	if err := m.indexer.Rebuild(); err != nil {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("rename: %v", err)))
		return m, nil
	}

	m.textInput.SetValue(bleve_indexer.NoteTitle(newName, m.config.Extension))
	m.textInput.CursorEnd()

	if err := m.indexer.Close(); err != nil {
		m.list.NewStatusMessage(statusStyle(fmt.Sprintf("close index: %v", err)))
		return m, nil
	}
	return m, m.editor.EditFile(newPath)
}
