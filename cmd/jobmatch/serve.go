package main

import (
	"context"
	"fmt"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/scraper"
	"github.com/jonathan/job-recommender/internal/server"
	"github.com/jonathan/job-recommender/internal/server/ratelimit"
	"github.com/jonathan/job-recommender/internal/upskill"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Start an HTTP server exposing resume processing, job recommendations, upskill suggestions and corpus updates.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				root.cfg.Port = port
			}
			srv, err := buildServer(cmd.Context(), root)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	return cmd
}

func buildServer(ctx context.Context, root *rootOptions) (*server.Server, error) {
	cfg := root.cfg

	s, err := scraper.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper: %w", err)
	}

	suggestions, err := upskill.NewFromConfig(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create upskill service: %w", err)
	}

	var jwtService *server.JWTService
	if cfg.AdminJWTSecret != "" {
		jwtConfig, err := config.NewJWTConfigFrom(cfg.AdminJWTSecret, root.getenv("ADMIN_JWT_EXPIRATION_HOURS"))
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		jwtService = server.NewJWTService(jwtConfig)
	}

	location := cfg.CorpusSource
	srv, err := server.New(server.Options{
		Port:    cfg.Port,
		Engine:  root.engine(),
		Scraper: s,
		Store: func(ctx context.Context) (corpus.Store, error) {
			return corpus.Open(ctx, location)
		},
		Upskill:        suggestions,
		JWT:            jwtService,
		RateLimit:      ratelimit.LoadConfig(root.getenv),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}
