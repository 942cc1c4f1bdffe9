package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nutriscan/labelocr/internal/extract"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image]",
	Short: "Extract nutrition facts from a label photo",
	Long: `Scan runs the full extraction pipeline on one image: normalization,
text recognition and nutrient parsing. The result is printed as JSON or
plain text together with the combined confidence score.

A confidence below 0.70 means the result should be treated as advisory.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringP("format", "f", "", "output format: json or text (default from config)")
	scanCmd.Flags().StringP("engine", "e", "", "recognition engine: auto, tesseract or deep")
	scanCmd.Flags().StringP("output", "o", "", "write result to file instead of stdout")
	scanCmd.Flags().Bool("debug", false, "keep intermediate images for inspection")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("cannot read image %s: %w", imagePath, err)
	}

	cfg := GetConfig()
	format := cfg.Output.Format
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = f
	}
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format %q (json, text)", format)
	}

	pipelineCfg := cfg.Pipeline
	if e, _ := cmd.Flags().GetString("engine"); e != "" {
		pipelineCfg.Method = e
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		pipelineCfg.Debug = true
	}

	pipeline, err := extract.NewBuilder().WithConfig(pipelineCfg).Build()
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = pipeline.Close() }()

	result := pipeline.Run(imagePath)

	var rendered string
	if format == "json" {
		rendered, err = result.ToJSON()
		if err != nil {
			return err
		}
	} else {
		rendered = result.ToPlainText()
	}

	if outFile, _ := cmd.Flags().GetString("output"); outFile != "" {
		if err := os.WriteFile(outFile, []byte(rendered+"\n"), 0o600); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
