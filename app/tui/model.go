package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/knipferrc/teacup/code"
	"github.com/samber/lo"

	"github.com/cwoac/nvvim/editor"
	"github.com/cwoac/nvvim/search"
	"github.com/cwoac/nvvim/utils"
)

var (
	listStyle    = lipgloss.NewStyle().MarginTop(1)
	dividerStyle = lipgloss.NewStyle().Faint(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render
)

// Main app model for bubbletea.
//
// The rendered screen follows a fixed row scheme: the query input is the
// first row, a divider rule follows, then one row per result in resolver
// order. The divider is rendered outside the list widget so it can never
// be selected.
type Model struct {
	width       int                // width of terminal
	height      int                // height of terminal
	preview     *code.Bubble       // the preview widget model
	list        list.Model         // the result list widget model
	textInput   textinput.Model    // the query input widget model
	renameInput textinput.Model    // input for the rename prompt
	renaming    bool               // rename prompt open
	indexer     search.NoteIndexer // the persistent note index
	resolver    *search.Resolver   // query and filename resolution
	editor      editor.Editor      // for opening up external editor.
	config      *utils.Config
}

// Create a new model for the app
func New(indexer search.NoteIndexer, config *utils.Config) *Model {
	return &Model{
		list:        createListModel(),
		textInput:   createTextInput("Search:", "query", true),
		renameInput: createTextInput("Rename:", "new name", false),
		indexer:     indexer,
		resolver:    search.NewResolver(indexer, config.Extension),
		editor:      editor.Editor{Editing: false, EditorCmd: config.Editor},
		config:      config,
	}
}

func (m *Model) setListSize() {
	width := m.width
	height := m.height

	// If preview is open take half width
	if m.preview != nil {
		width = m.width / 2
	}

	m.list.SetSize(width, height-3)
}

func (m *Model) setPreviewSize() {
	if m.preview != nil {
		m.preview.SetSize(m.width/2, m.height)
	}
}

func (m *Model) updateSize(width, height int) {
	m.height = height
	m.width = width

	m.setListSize()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.resolveCmd())
}

// resolveCmd reruns the current query against the index.
func (m Model) resolveCmd() tea.Cmd {
	query := m.textInput.Value()
	resolver := m.resolver
	return func() tea.Msg {
		entries, err := resolver.Resolve(query)
		return resultMsg{entries: entries, err: err}
	}
}

// Formats a match fragment for the result list:
// removes newlines and replaces runs of whitespace with a single space.
func formatContent(content string) string {
	s := stripansi.Strip(content)
	s = strings.ReplaceAll(s, "\n", " ↵ ")
	re := regexp.MustCompile(`\s{2,}|\t+`)
	return string(re.ReplaceAll([]byte(s), []byte(" ")))
}

// The update fn for the bubbletea model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case resultMsg:
		if msg.err != nil {
			// Leave the previous rows in place, just surface the error.
			m.list.NewStatusMessage(statusStyle(fmt.Sprintf("search: %v", msg.err)))
			break
		}
		m.list.SetItems(lo.Map(msg.entries, func(entry search.Entry, _ int) list.Item {
			return noteItem{
				title:    entry.Title,
				filename: entry.Filename,
				fragment: formatContent(entry.Fragment),
			}
		}))

	case indexChangedMsg:
		return m, m.resolveCmd()

	case tea.KeyMsg:
		if m.renaming {
			return m.handleRenameKey(msg)
		}
		// Keybindings:
		// Tab - move down in the list
		// Shift+Tab - move up in the list
		// Enter - open the selected note (or create it from the query)
		// Ctrl+X - delete the selected note
		// Ctrl+N - rename the selected note
		// Ctrl+R - rebuild the index from disk
		// Ctrl+P - toggle preview for the selected note
		// Esc - close preview
		// Ctrl+K - Preview line up
		// Ctrl+J - Preview line down
		// Ctrl+C - quit the application
		switch msg.String() {
		case "tab", "down":
			m.list.CursorDown()
		case "shift+tab", "up":
			m.list.CursorUp()
		case "enter":
			return m.openSelected()
		case "ctrl+x":
			return m.deleteSelected()
		case "ctrl+n":
			m.startRename()
			return m, nil
		case "ctrl+r":
			indexer := m.indexer
			return m, func() tea.Msg {
				if err := indexer.Rebuild(); err != nil {
					return resultMsg{err: err}
				}
				return indexChangedMsg{}
			}
		case "ctrl+p":
			if item, ok := m.list.SelectedItem().(noteItem); ok {
				codeModel := code.New(false, true, lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})
				codeModel.SetSize(m.width/2, m.height)
				cmds = append(cmds, codeModel.SetFileName(filepath.Join(m.config.RootPath, item.filename)))
				m.preview = &codeModel
			}
		case "esc":
			m.preview = nil
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+k":
			if m.preview != nil {
				m.preview.Viewport.LineUp(5)
			}
		case "ctrl+j":
			if m.preview != nil {
				m.preview.Viewport.LineDown(5)
			}
		default:
			log.Print(msg.String())
		}

	case editor.EditingFinished:
		// The index was closed while the editor held the lock. Reopen it
		// and fold the edited note back in; if the user never saved the
		// synthesized file there is nothing to index.
		if err := m.indexer.Open(); err != nil {
			m.list.NewStatusMessage(statusStyle(fmt.Sprintf("reopen index: %v", err)))
			break
		}
		name := filepath.Base(msg.Path)
		if err := m.indexer.UpdateFile(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.list.NewStatusMessage(statusStyle(fmt.Sprintf("index %s: %v", name, err)))
		}
		cmds = append(cmds, m.resolveCmd())

	case tea.WindowSizeMsg:
		m.updateSize(msg.Width, msg.Height)
	}

	// Update the widgets sizes
	m.setListSize()
	m.setPreviewSize()

	// save to compare if changed
	oldValue := m.textInput.Value()

	// pass on message to the other components
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)

	if m.preview != nil {
		var newPreview code.Bubble
		newPreview, cmd = m.preview.Update(msg)
		cmds = append(cmds, cmd)
		m.preview = &newPreview
	}

	// If the query changed, rerun it.
	newValue := m.textInput.Value()
	if oldValue != newValue {
		cmds = append(cmds, m.resolveCmd())
	}

	return m, tea.Batch(cmds...)
}

// resultMsg carries the entries for the most recent query.
type resultMsg struct {
	entries []search.Entry
	err     error
}

// indexChangedMsg signals that the index changed underneath the session
// (watcher event or completed rebuild) and the view should re-resolve.
type indexChangedMsg struct{}

// View fn for bubbletea model
func (m Model) View() string {
	inputView := m.textInput.View()
	if m.renaming {
		inputView = m.renameInput.View()
	}

	divider := dividerStyle.Render(strings.Repeat("─", maxInt(m.width, 10)))

	listContent := listStyle.Render(m.list.View())

	// render list
	innerContent := listContent

	// if preview then preview takes up half the width
	if m.preview != nil {
		innerContent = lipgloss.JoinHorizontal(lipgloss.Left,
			listContent,      // render list
			m.preview.View(), // render preview.
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		inputView,    // the query (or rename prompt) row
		divider,      // never selectable
		innerContent, // result rows
	)
}

// noteItem implements list.Item interface
type noteItem struct {
	title    string
	filename string
	fragment string
}

func (n noteItem) Title() string { return n.title }
func (n noteItem) Description() string {
	if n.fragment == "" {
		return n.filename
	}
	return n.fragment
}
func (n noteItem) FilterValue() string { return "" }

// Create the list model
func createListModel() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.Styles.NoItems = l.Styles.NoItems.Copy().PaddingLeft(2)
	return l
}

// Create a text input model
func createTextInput(prompt, placeholder string, focus bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = prompt
	ti.PromptStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		MarginRight(1).
		MarginLeft(2).
		Padding(0, 1)
	if focus {
		ti.Focus()
	}
	return ti
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
