package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pstkit/pstkit/pkg/types"
	"github.com/pstkit/pstkit/pst"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Validate a PST/OST header and report basic metadata",
		Long: `The info command validates a PST/OST file header and displays its
variant, encryption mode, and message store display name.

Example:
  pstls info Archive.pst
  pstls info Archive.pst --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

type infoResult struct {
	File        string `json:"file"`
	Variant     int    `json:"variant"`
	Unicode     bool   `json:"unicode"`
	Encrypted   bool   `json:"encrypted"`
	StoreName   string `json:"store_name,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
}

func runInfo(path string) error {
	printVerbose("Opening %s\n", path)

	fh, err := pst.Open(path, types.OpenOptions{})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	res := infoResult{
		File:      path,
		Variant:   fh.Variant(),
		Unicode:   fh.IsUnicode(),
		Encrypted: fh.IsEncrypted(),
	}
	if stat, err := os.Stat(path); err == nil {
		res.SizeBytes = stat.Size()
	}
	if store, err := fh.MessageStore(); err == nil {
		res.StoreName = store.DisplayName()
	} else {
		printVerbose("message store unreadable: %v\n", err)
	}

	if jsonOut {
		return printJSON(res)
	}

	fmt.Printf("File:      %s\n", res.File)
	fmt.Printf("Size:      %d bytes\n", res.SizeBytes)
	fmt.Printf("Variant:   %d (unicode=%t)\n", res.Variant, res.Unicode)
	fmt.Printf("Encrypted: %t\n", res.Encrypted)
	if res.StoreName != "" {
		fmt.Printf("Store:     %s\n", res.StoreName)
	}
	return nil
}
