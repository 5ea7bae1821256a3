package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-rag-chat/config"
	"go-rag-chat/rag"
)

func runAsk(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("file"); v != "" {
		cfg.RAG.DocumentPath = v
	}
	if v, _ := cmd.Flags().GetString("query"); v != "" {
		cfg.RAG.Query = v
	}
	if v, _ := cmd.Flags().GetInt("top-k"); v > 0 {
		cfg.RAG.TopK = v
	}
	if err := cfg.ValidateRAG(); err != nil {
		return err
	}
	if cfg.OpenAI.APIKey == "" {
		return config.ErrMissingAPIKey
	}

	ans, err := newPipeline(cfg).Run(cmd.Context(), cfg.RAG.DocumentPath, cfg.RAG.Query)
	if err != nil {
		return err
	}
	printAnswer(cmd.OutOrStdout(), ans)
	return nil
}

func printAnswer(w io.Writer, ans rag.Answer) {
	fmt.Fprintln(w, "Answer:", ans.Text)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for _, s := range ans.Sources {
		fmt.Fprintln(w, "-", s.Chunk.Content)
	}
}
