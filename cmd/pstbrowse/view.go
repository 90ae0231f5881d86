package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	header := m.renderHeader()
	content := m.renderContent()
	status := statusStyle.Render("↑/k ↓/j navigate  →/l/Enter open  ←/h/Backspace up  q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, content, status)
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("PST Browser")
	path := pathStyle.Render(m.currentPath())
	return lipgloss.JoinHorizontal(lipgloss.Top, title, lipgloss.NewStyle().Render("  "), path)
}

func (m Model) currentPath() string {
	var parts []string
	for _, f := range m.breadcrumb {
		parts = append(parts, f.DisplayName())
	}
	if m.current != nil {
		parts = append(parts, m.current.DisplayName())
	}
	return strings.Join(parts, " / ")
}

func (m Model) renderContent() string {
	paneWidth := m.width/2 - 2
	if paneWidth < 10 {
		paneWidth = 30
	}
	paneHeight := m.height - 5
	if paneHeight < 5 {
		paneHeight = 15
	}

	left := activePaneStyle.Width(paneWidth).Height(paneHeight).Render(m.renderFolderList())
	right := paneStyle.Width(paneWidth).Height(paneHeight).Render(m.renderSubjectList())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderFolderList() string {
	if len(m.children) == 0 {
		return "(no sub-folders)"
	}
	var b strings.Builder
	for i, f := range m.children {
		line := f.DisplayName()
		if i == m.selected {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSubjectList() string {
	if len(m.subjects) == 0 {
		return "(no items)"
	}
	var b strings.Builder
	for _, s := range m.subjects {
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}
