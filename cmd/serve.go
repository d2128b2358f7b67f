package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/llm"
	"github.com/abhisek/selfassess/internal/proxy"
	"github.com/abhisek/selfassess/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment API and AI proxy over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, closeSvc, err := openService(ctx, cfg, st, logger, true)
		if err != nil {
			return err
		}
		defer closeSvc()

		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger.Named("llm"))
		if err != nil {
			return err
		}
		transcriber, err := llm.NewTranscriber(cfg.LLM, st.EventRepo(), logger.Named("llm"))
		if err != nil {
			return err
		}
		logger.Info("ai proxy configured",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", provider.ModelID()),
			zap.String("transcription_model", transcriber.ModelID()))

		handler := proxy.NewHandler(transcriber, provider, logger.Named("proxy"))
		srv := server.New(svc, handler, server.NewMetrics(), logger.Named("http"))
		return srv.Run(ctx, cfg.Server)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
