package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pictext/pictext/internal/pipeline"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image [file]",
	Short: "Extract text from a single image",
	Long: `Extract text from one image file.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WebP

Examples:
  pictext image scan.png
  pictext image photo.jpg --format json
  pictext image receipt.png --output result.json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		format, _ := cmd.Flags().GetString("format")
		if format != outputFormatJSON && format != outputFormatText {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join([]string{outputFormatText, outputFormatJSON}, ", "))
		}
		outputFile, _ := cmd.Flags().GetString("output")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		ctx := context.Background()
		pl, err := buildPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = pl.Close() }()

		opts := pipeline.DefaultOptions()
		opts.UseCache = !noCache

		result, err := pl.ExtractText(ctx, content, args[0], opts)
		if err != nil {
			return err
		}

		var out []byte
		if format == outputFormatJSON {
			out, err = json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			out = append(out, '\n')
		} else {
			out = []byte(result.Text + "\n")
		}

		if outputFile != "" {
			return os.WriteFile(outputFile, out, 0o600)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
	imageCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	imageCmd.Flags().Bool("no-cache", false, "bypass the result cache")
}
