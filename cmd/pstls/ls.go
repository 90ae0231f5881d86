package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pstkit/pstkit/pkg/types"
	"github.com/pstkit/pstkit/pst"
)

func init() {
	rootCmd.AddCommand(newLsCmd())
}

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <file> <folder-path>",
		Short: "List the contents of a folder",
		Long: `The ls command lists the message rows of a folder's contents table,
identified by a slash-separated path of display names rooted at the message
store's root folder.

Example:
  pstls ls Archive.pst "Top of Outlook data file/Inbox"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(args[0], args[1])
		},
	}
}

func runLs(path, folderPath string) error {
	fh, err := pst.Open(path, types.OpenOptions{})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	root, err := fh.RootFolder()
	if err != nil {
		return fmt.Errorf("failed to open root folder: %w", err)
	}

	folder, err := resolveFolderPath(root, folderPath)
	if err != nil {
		return err
	}

	cursor, err := folder.NewCursor()
	if err != nil {
		return fmt.Errorf("failed to open contents table: %w", err)
	}

	type row struct {
		Subject string `json:"subject"`
		Class   string `json:"class"`
	}
	var rows []row
	for {
		item, err := cursor.GetNextChild()
		if err != nil {
			return fmt.Errorf("failed reading contents row: %w", err)
		}
		if item == nil {
			break
		}
		subject := ""
		if s, ok := item.(interface{ Subject() string }); ok {
			subject = s.Subject()
		}
		rows = append(rows, row{Subject: subject, Class: item.MessageClass()})
	}

	if jsonOut {
		return printJSON(rows)
	}
	for _, r := range rows {
		fmt.Printf("%-40s %s\n", r.Subject, r.Class)
	}
	return nil
}

// resolveFolderPath walks down sub-folders, matching each slash-separated
// segment of path against DisplayName.
func resolveFolderPath(root *pst.Folder, path string) (*pst.Folder, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return root, nil
	}
	current := root
	for _, segment := range strings.Split(path, "/") {
		children, err := current.SubFolders()
		if err != nil {
			return nil, fmt.Errorf("failed to list sub-folders of %q: %w", current.DisplayName(), err)
		}
		var next *pst.Folder
		for _, c := range children {
			if c.DisplayName() == segment {
				next = c
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("no sub-folder named %q under %q", segment, current.DisplayName())
		}
		current = next
	}
	return current, nil
}
