package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go-rag-chat/chat"
	"go-rag-chat/config"
	"go-rag-chat/logging"
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a local model, streaming replies as they are generated",
	Long: `chat reads one line at a time, sends the whole conversation to a local
inference server and prints the reply token by token. Type exit, quit, 0 or q
to leave.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
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

	rootCmd.Flags().StringP("config", "c", "", "YAML config file")
	rootCmd.Flags().StringP("model", "m", "", "model name (default from config: llama3.1:8b)")
	rootCmd.Flags().String("endpoint", "", "inference endpoint URL")
	rootCmd.Flags().String("protocol", "", "ollama or openai")
}

func run(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	defaults := config.Default()
	// replies share the terminal with logs
	defaults.LogLevel = "warn"
	cfg, err := config.LoadInto(defaults, path)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		return err
	}

	applyFlags(cmd, cfg)
	transport, err := newTransport(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	session := chat.NewSession(chat.NewClient(transport, cfg.Chat.Model, out), out)
	session.Banner = term.IsTerminal(int(os.Stdin.Fd()))
	return session.Run(cmd.Context(), cmd.InOrStdin())
}

// applyFlags overrides config values with any flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	for flag, dst := range map[string]*string{
		"model":    &cfg.Chat.Model,
		"endpoint": &cfg.Chat.Endpoint,
		"protocol": &cfg.Chat.Protocol,
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*dst = v
		}
	}
}

func newTransport(cfg *config.Config) (chat.Transport, error) {
	if err := cfg.ValidateChat(); err != nil {
		return nil, err
	}
	timeout, _ := cfg.Chat.Timeout()
	endpoint := cfg.Chat.EndpointURL()

	if cfg.Chat.Protocol == "openai" {
		return chat.NewOpenAITransport(endpoint, cfg.Chat.APIKey, timeout), nil
	}
	return chat.NewOllamaTransport(endpoint, timeout), nil
}
