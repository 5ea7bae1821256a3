package main

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"go-rag-chat/config"
	"go-rag-chat/logging"
	"go-rag-chat/rag"
)

var rootCmd = &cobra.Command{
	Use:   "ragqa",
	Short: "Answer a question about a document with retrieval-augmented generation",
	Long: `ragqa loads a document, splits it into overlapping chunks, embeds and
indexes them, retrieves the chunks closest to the query and asks a language
model to answer from them. Run "ragqa serve" to expose the same pipeline over
HTTP.`,
	SilenceUsage: true,
	RunE:         runAsk,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file")
	rootCmd.Flags().StringP("file", "f", "", "document to index (default from config: data.txt)")
	rootCmd.Flags().StringP("query", "q", "", "question to answer (default from config: \"What is RAG?\")")
	rootCmd.Flags().IntP("top-k", "k", 0, "number of chunks to retrieve (default from config: 2)")

	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file named by --config and sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newPipeline(cfg *config.Config) *rag.Pipeline {
	p := &rag.Pipeline{
		Splitter: rag.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		TopK:     cfg.RAG.TopK,
		Log:      log.Log,
	}

	if cfg.OpenAI.APIKey != "" {
		client := rag.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		p.Generator = rag.NewOpenAIGenerator(client, cfg.OpenAI.ChatModel, cfg.OpenAI.Temperature)
		p.Embedder = rag.NewOpenAIEmbedder(client, cfg.OpenAI.EmbeddingModel)
	}
	if cfg.RAG.Embedder == "simple" {
		p.Embedder = rag.NewSimpleEmbedder()
	}
	return p
}
