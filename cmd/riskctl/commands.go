package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify one text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args, file)
			if err != nil {
				return err
			}
			_, built, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			res := built.Classifier.Classify(cmd.Context(), text)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "label:      %s (confidence %.2f)\n", res.Label, res.Confidence)
			fmt.Fprintf(out, "risk:       %s (score %.2f, %d%%)\n", res.RiskLevel, res.RiskScore, res.ExtremismPercentage)
			fmt.Fprintf(out, "method:     %s\n", res.AnalysisMethod)
			if len(res.Keywords) > 0 {
				fmt.Fprintf(out, "keywords:   %s\n", strings.Join(res.Keywords, ", "))
			}
			for _, f := range res.RiskFactors {
				fmt.Fprintf(out, "  - %s\n", f)
			}
			if res.Degraded {
				fmt.Fprintln(out, "note:       remote model unavailable, local result only")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newPercentageCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "percentage [text...]",
		Short: "Estimate the extremism percentage of a text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args, file)
			if err != nil {
				return err
			}
			_, built, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return printJSON(cmd.OutOrStdout(), built.Classifier.ExtremismPercentage(cmd.Context(), text))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file (- for stdin)")
	return cmd
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Classify every non-empty line of a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			texts, err := readLines(cmd, file)
			if err != nil {
				return err
			}
			_, built, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return printJSON(cmd.OutOrStdout(), built.Classifier.BatchAnalyze(cmd.Context(), texts))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one text per line (- for stdin)")
	return cmd
}

func newTrainCmd(root *rootOptions) *cobra.Command {
	var (
		data string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the local naive Bayes model from a CSV of text,label rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if data == "" {
				return errors.New("--data is required")
			}
			texts, labels, err := readTrainingCSV(data)
			if err != nil {
				return err
			}
			cfg, built, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			report, err := built.Classifier.Train(texts, labels)
			if err != nil {
				return err
			}

			if out == "" {
				out = cfg.LocalModel.ModelPath
			}
			if err := built.Classifier.SaveModel(out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "trained on %d samples (%d held out), accuracy %.3f, vocabulary %d\nmodel saved to %s\n",
				report.Samples, report.TestSize, report.Accuracy, report.Vocabulary, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "CSV file with text,label columns (label 0 or 1)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "model output path (default: local_model.model_path)")
	return cmd
}

func readLines(cmd *cobra.Command, file string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var texts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	return texts, scanner.Err()
}

// readTrainingCSV reads text,label rows. A first row whose label is not a number is a header.
func readTrainingCSV(path string) ([]string, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open training data: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse training data: %w", err)
	}

	var (
		texts  []string
		labels []int
	)
	for i, row := range rows {
		label, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, nil, fmt.Errorf("row %d: invalid label %q", i+1, row[1])
		}
		texts = append(texts, row[0])
		labels = append(labels, label)
	}
	return texts, labels, nil
}
