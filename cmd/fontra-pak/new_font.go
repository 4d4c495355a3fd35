package main

import (
	"fmt"
	"path/filepath"

	"fontra-pak/internal/backend"

	"github.com/spf13/cobra"
)

func newNewFontCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new-font <path.fontra>",
		Short: "Create an empty .fontra project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := backend.CreateNewFont(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
