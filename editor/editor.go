package editor

import (
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

type Editor struct {
	Editing   bool   // Is the editor open
	EditorCmd string // Command to open the editor on shell
}

// EditingFinished is emitted when the external editor exits. Path is the
// file that was being edited, so the caller can reindex it.
type EditingFinished struct {
	Path string
	Err  error
}

// this opens up an external editor.
func openEditor(app, path string) tea.Cmd {
	return tea.ExecProcess(exec.Command(app, path), func(err error) tea.Msg {
		return EditingFinished{Path: path, Err: err}
	})
}

func (m *Editor) Init() tea.Cmd {
	return nil
}

func (m *Editor) EditFile(filepath string) tea.Cmd {
	m.Editing = true
	return openEditor(m.EditorCmd, filepath)
}

func (m Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	switch msg.(type) {
	case EditingFinished:
		m.Editing = false
		return m, nil
	}

	return m, nil
}

// Doesnt render anything
func (m Editor) View() string {
	return ""
}
