package main

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"

	"go-rag-chat/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve upload, query and ask endpoints over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			cfg.Server.Addr = v
		}
		if err := cfg.ValidateRAG(); err != nil {
			return err
		}

		p := newPipeline(cfg)
		if p.Generator == nil {
			log.Warn("OPENAI_API_KEY not set, /ask is disabled")
		}
		return server.New(p, log.Log).Run(cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config: :8080)")
}
