package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/app"
	"github.com/nikola254/breaking-news-sub000/internal/config"
	"github.com/nikola254/breaking-news-sub000/internal/logging"
)

type rootOptions struct {
	ConfigPath string
	LogLevel   string
	Offline    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "riskctl",
		Short:         "Score texts for extremism risk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: built-in defaults)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.Offline, "offline", false, "never call the remote model")

	cmd.AddCommand(
		newClassifyCmd(opts),
		newPercentageCmd(opts),
		newBatchCmd(opts),
		newTrainCmd(opts),
	)
	return cmd
}

// setup loads configuration and builds the classifier for one command run.
func (o *rootOptions) setup() (*config.Config, *app.Built, *zap.Logger, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.LoadConfig(o.ConfigPath)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg = loaded
	}
	if o.Offline {
		cfg.RemoteModel.Enabled = false
	}

	logger, err := logging.New(o.LogLevel, true)
	if err != nil {
		return nil, nil, nil, err
	}

	built, err := app.BuildClassifier(cfg, logger, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, built, logger, nil
}

// inputText returns the positional arguments joined, the file contents, or stdin.
func inputText(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(b), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", errors.New("no text given: pass it as arguments or with --file")
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
