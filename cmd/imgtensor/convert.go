package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/imacej/BigDL/dataset"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Rescale a root/<class>/<image> tree into raw image files",
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringP("config", "c", "", "YAML or JSON config file")
	convertCmd.Flags().StringP("input", "i", "", "Dataset root with one directory per class")
	convertCmd.Flags().StringP("output", "o", "", "Output directory for raw files")
	convertCmd.Flags().Int("scale-to", 0, "Short side length after rescaling (0 keeps the config value)")
	convertCmd.Flags().Int("concurrency", 0, "Parallel decoders (0 keeps the config value)")
	convertCmd.Flags().String("tensors", "", "Also write one .npy tensor per image to this directory")
	convertCmd.Flags().Bool("bgr", false, "Keep B, G, R plane order in written tensors")
	convertCmd.Flags().Bool("strict", false, "Fail on the first unreadable image")
	convertCmd.Flags().Bool("debug", false, "Log every decoded image")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	config, err := convertConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	files, classes, err := dataset.LocalImagePaths(config.Root)
	if err != nil {
		return err
	}
	log.Printf("📂 Found %d images in %d classes under %s", len(files), len(classes), config.Root)

	imgs, err := dataset.NewReader(config.ReaderOptions()).ReadAll(ctx, files)
	if err != nil {
		return errors.Wrap(err, "reading images")
	}

	paths, err := dataset.WriteRawFiles(config.Output, imgs, config.Scale())
	if err != nil {
		return err
	}
	log.Printf("✅ Wrote %d raw images to %s", len(paths), config.Output)

	if config.TensorOutput != "" {
		paths, err := dataset.WriteTensorFiles(config.TensorOutput, imgs, config.ToRGB)
		if err != nil {
			return err
		}
		log.Printf("✅ Wrote %d tensors to %s (rgb=%t)", len(paths), config.TensorOutput, config.ToRGB)
	}
	return nil
}

// convertConfig merges the optional config file with command line flags.
func convertConfig(cmd *cobra.Command) (*dataset.Config, error) {
	config := dataset.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := dataset.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if v, _ := cmd.Flags().GetString("input"); v != "" {
		config.Root = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		config.Output = v
	}
	if v, _ := cmd.Flags().GetInt("scale-to"); v > 0 {
		config.ScaleTo = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		config.Concurrency = v
	}
	if v, _ := cmd.Flags().GetString("tensors"); v != "" {
		config.TensorOutput = v
	}
	if v, _ := cmd.Flags().GetBool("bgr"); v {
		config.ToRGB = false
	}
	if v, _ := cmd.Flags().GetBool("strict"); v {
		config.SkipInvalid = false
	}
	if v, _ := cmd.Flags().GetBool("debug"); v {
		config.Debug = true
	}
	return config, nil
}
