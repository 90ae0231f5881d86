package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pstkit/pstkit/pkg/types"
	"github.com/pstkit/pstkit/pst"
)

func main() {
	args := os.Args[1:]
	if len(args) < 1 || args[0] == "--help" || args[0] == "-h" {
		printUsage()
		if len(args) < 1 {
			os.Exit(1)
		}
		return
	}

	path := args[0]
	fh, err := pst.Open(path, types.OpenOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open %s: %v\n", path, err)
		os.Exit(1)
	}

	m := NewModel(fh)

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		fh.Close()
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	if model, ok := finalModel.(Model); ok {
		_ = model.Close()
	} else {
		fh.Close()
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: pstbrowse <pst-file>\n")
	fmt.Fprintf(os.Stderr, "\nA minimal read-only folder-tree browser for Outlook PST/OST files.\n")
	fmt.Fprintf(os.Stderr, "\n  ↑/k ↓/j    navigate sub-folders\n")
	fmt.Fprintf(os.Stderr, "  →/l/Enter  open selected sub-folder\n")
	fmt.Fprintf(os.Stderr, "  ←/h        go to parent folder\n")
	fmt.Fprintf(os.Stderr, "  q          quit\n")
}
