package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/birmacher/ai-commit-generator/commit"
	"github.com/birmacher/ai-commit-generator/common"
	"github.com/birmacher/ai-commit-generator/llm"
	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/birmacher/ai-commit-generator/server"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generate endpoint over HTTP",
	Long:  `Start an HTTP server exposing POST /api/generate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			settings.Server.Addr = addr
		}

		service, err := newService(settings)
		if err != nil {
			return err
		}

		srv := server.New(service, server.Config{
			Addr:            settings.Server.Addr,
			MaxBodyBytes:    settings.Server.MaxBodyBytes,
			ReadTimeout:     time.Duration(settings.Server.ReadTimeout) * time.Second,
			WriteTimeout:    settings.WriteTimeout(),
			ShutdownTimeout: settings.Timeout(),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx)
	},
}

// newService wires the configured provider into the generation pipeline
func newService(s common.Settings) (*commit.Service, error) {
	if s.APIKey == "" {
		logger.Warnf("%s is not set, generation requests will fail until it is configured", s.APIKeyEnv())
	}

	client, err := llm.NewLLM(s.Provider, s.APIKey,
		llm.WithModel(s.Model),
		llm.WithAPITimeout(s.Timeout()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create LLM client")
	}

	return commit.NewService(client, s.APIKeyEnv()), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", common.DefaultAddr, "Address to listen on")
}
