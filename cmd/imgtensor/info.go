package main

import (
	"fmt"
	"os"

	"github.com/imacej/BigDL/images"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.raw>...",
	Short: "Print the dimensions stored in raw image files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "reading raw file")
		}
		w, h, err := images.ReadHeader(data)
		if err != nil {
			return errors.Wrap(err, path)
		}
		status := "ok"
		if len(data) != images.RawSize(w, h) {
			status = fmt.Sprintf("size mismatch: %d bytes, want %d", len(data), images.RawSize(w, h))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%dx%d\t%s\n", path, w, h, status)
	}
	return nil
}
