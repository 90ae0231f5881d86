package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pstkit/pstkit/pst"
)

// KeyMap is the set of key bindings pstbrowse recognizes.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

var defaultKeys = KeyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k")),
	Down:  key.NewBinding(key.WithKeys("down", "j")),
	Enter: key.NewBinding(key.WithKeys("enter", "right", "l")),
	Back:  key.NewBinding(key.WithKeys("left", "h", "backspace")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

// Model is the pstbrowse application state: a folder-tree cursor (current
// folder plus a breadcrumb stack of ancestors) and the subject list of the
// current folder's contents table.
type Model struct {
	fh   *pst.FileHandle
	keys KeyMap

	breadcrumb []*pst.Folder // ancestors, root first, current excluded
	current    *pst.Folder
	children   []*pst.Folder
	selected   int

	subjects []string
	err      error

	width, height int
}

// NewModel opens the root folder of fh and loads its immediate children and
// contents, ready to drive with arrow keys.
func NewModel(fh *pst.FileHandle) Model {
	m := Model{fh: fh, keys: defaultKeys}
	root, err := fh.RootFolder()
	if err != nil {
		m.err = err
		return m
	}
	m.current = root
	m.loadChildren()
	m.loadSubjects()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// loadChildren refreshes m.children from m.current's sub-folders.
func (m *Model) loadChildren() {
	m.selected = 0
	children, err := m.current.SubFolders()
	if err != nil {
		m.err = err
		m.children = nil
		return
	}
	m.children = children
}

// loadSubjects refreshes m.subjects from m.current's contents table.
func (m *Model) loadSubjects() {
	m.subjects = nil
	cursor, err := m.current.NewCursor()
	if err != nil {
		m.err = err
		return
	}
	for {
		item, err := cursor.GetNextChild()
		if err != nil || item == nil {
			break
		}
		subject := item.MessageClass()
		if s, ok := item.(interface{ Subject() string }); ok {
			if text := s.Subject(); text != "" {
				subject = text
			}
		}
		m.subjects = append(m.subjects, subject)
	}
}

// descend moves into the currently selected child folder.
func (m *Model) descend() {
	if m.selected < 0 || m.selected >= len(m.children) {
		return
	}
	m.breadcrumb = append(m.breadcrumb, m.current)
	m.current = m.children[m.selected]
	m.loadChildren()
	m.loadSubjects()
}

// ascend moves back to the parent folder, if any.
func (m *Model) ascend() {
	if len(m.breadcrumb) == 0 {
		return
	}
	m.current = m.breadcrumb[len(m.breadcrumb)-1]
	m.breadcrumb = m.breadcrumb[:len(m.breadcrumb)-1]
	m.loadChildren()
	m.loadSubjects()
}

// Close releases the underlying file handle.
func (m Model) Close() error {
	if m.fh == nil {
		return nil
	}
	return m.fh.Close()
}
