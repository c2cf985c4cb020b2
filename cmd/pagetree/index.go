package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pagetree/internal/config"
	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/pipeline"
	"github.com/dgallion1/pagetree/internal/source"
)

func newIndexCmd() *cobra.Command {
	var output string
	var docName string

	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Index a single document and print its section tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), args[0], docName, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the tree to a file instead of stdout")
	cmd.Flags().StringVar(&docName, "doc-name", "", "document name in the output (defaults to the file name)")
	return cmd
}

func runIndex(ctx context.Context, path, docName, output string) error {
	log := newLogger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	extractor, err := source.ForFile(path)
	if err != nil {
		return err
	}
	texts, err := extractor.Extract(f, path)
	if err != nil {
		return fmt.Errorf("extract pages: %w", err)
	}
	if len(texts) == 0 {
		return fmt.Errorf("no extractable content in %s", path)
	}
	store := pagestore.New(texts, pagestore.NewTokenCounter())
	log.Info("pages extracted", "file", path, "pages", store.Len())

	if docName == "" {
		docName = filepath.Base(path)
	}

	oracle := llm.NewClient(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL, log)
	defer oracle.Close()

	p := pipeline.New(oracle, store, pipeline.ConfigFromApp(cfg), log)
	result, err := p.Run(ctx, docName)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if output == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(output, append(out, '\n'), 0o644)
}
