package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pictext/pictext/internal/pipeline"
)

// batchCmd represents the batch command for multi-image processing.
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Extract text from multiple images concurrently",
	Long: `Extract text from multiple image files in one run. Files are
processed concurrently by a worker pool; a failure on one file does
not stop the others.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WebP

Examples:
  pictext batch *.png
  pictext batch invoices/*.jpg --output results.json
  pictext batch a.png b.png --no-cache`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		outputFile, _ := cmd.Flags().GetString("output")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		files, err := expandArgs(args)
		if err != nil {
			return err
		}

		inputs := make([]pipeline.BatchInput, 0, len(files))
		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			inputs = append(inputs, pipeline.BatchInput{Filename: filepath.Base(path), Content: content})
		}

		ctx := context.Background()
		pl, err := buildPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = pl.Close() }()

		opts := pipeline.DefaultOptions()
		opts.UseCache = !noCache

		result, err := pl.ExtractBatch(ctx, inputs, opts)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		out = append(out, '\n')

		if outputFile != "" {
			return os.WriteFile(outputFile, out, 0o600)
		}
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", result.Failed, result.TotalFiles)
		}
		return nil
	},
}

// expandArgs resolves glob patterns that the shell did not expand.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// Not a pattern; let the read fail with a useful error later.
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	batchCmd.Flags().Bool("no-cache", false, "bypass the result cache")
}
