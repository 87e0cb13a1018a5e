package main

import (
	"log"

	"github.com/imacej/BigDL/dataset"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a raw image file back out as JPEG, PNG or WebP",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("input", "i", "", "Raw image file")
	exportCmd.Flags().StringP("output", "o", "", "Output image; the extension picks the format")
	exportCmd.Flags().Bool("hflip", false, "Mirror the image horizontally")
	exportCmd.MarkFlagRequired("input")
	exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	hflip, _ := cmd.Flags().GetBool("hflip")

	img, err := dataset.ReadRawFile(inputPath, 1)
	if err != nil {
		return err
	}
	if hflip {
		img.HFlip()
	}

	if err := img.Save(outputPath, 1); err != nil {
		return err
	}
	log.Printf("✅ Exported %dx%d image to %s", img.Width(), img.Height(), outputPath)
	return nil
}
