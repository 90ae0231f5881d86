package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pstkit/pstkit/pkg/types"
	"github.com/pstkit/pstkit/pst"
)

var treeDepth int

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 5, "Maximum depth")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Display the folder hierarchy",
		Long: `The tree command displays a hierarchical view of the folder structure
rooted at the message store's root folder.

Example:
  pstls tree Archive.pst
  pstls tree Archive.pst --depth 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args[0])
		},
	}
}

func runTree(path string) error {
	fh, err := pst.Open(path, types.OpenOptions{})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	root, err := fh.RootFolder()
	if err != nil {
		return fmt.Errorf("failed to open root folder: %w", err)
	}

	fmt.Println(root.DisplayName())
	return printFolderTree(root, "", 1)
}

func printFolderTree(f *pst.Folder, prefix string, depth int) error {
	if depth > treeDepth {
		return nil
	}
	children, err := f.SubFolders()
	if err != nil {
		return fmt.Errorf("failed to list sub-folders: %w", err)
	}
	for i, child := range children {
		last := i == len(children)-1
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}
		fmt.Printf("%s%s%s\n", prefix, connector, child.DisplayName())
		if err := printFolderTree(child, nextPrefix, depth+1); err != nil {
			printVerbose("skipping subtree of %s: %v\n", strings.TrimSpace(child.DisplayName()), err)
		}
	}
	return nil
}
