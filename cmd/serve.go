package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/kozaktomas/clinic-admin/internal/facematch"
	"github.com/kozaktomas/clinic-admin/internal/web"
	"github.com/kozaktomas/clinic-admin/internal/web/handlers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the descriptor web service",
	Long: `Start an HTTP service exposing descriptor extraction and matching:

  GET  /api/v1/health
  POST /api/v1/descriptor   raw image body -> {"descriptor": [...] | null}
  POST /api/v1/match        {"descriptor": [...]} -> {"label", "distance"}
  GET  /api/v1/labels

Labeled descriptors come from --descriptors or the workers table. When neither
is available the match endpoint answers 503.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("descriptors", "", "YAML file with labeled descriptors (default: workers table)")
	serveCmd.Flags().String("models-dir", "", "Directory holding the model files (default FACE_MODELS_DIR)")
}

// newServeMatcher builds the matcher, or returns nil when no labels are available.
func newServeMatcher(ctx context.Context, cfg *config.Config, path string) *facematch.Matcher {
	labeled, err := loadLabeledDescriptors(ctx, cfg, path)
	if err != nil {
		log.Warn().Err(err).Msg("matching disabled")
		return nil
	}
	if len(labeled) == 0 {
		log.Warn().Msg("no labeled descriptors; matching disabled")
		return nil
	}
	matcher, err := facematch.NewMatcher(labeled)
	if err != nil {
		log.Warn().Err(err).Msg("matching disabled")
		return nil
	}
	log.Info().Int("labels", len(labeled)).Msg("matcher ready")
	return matcher
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var extractor handlers.DescriptorExtractor
	ex, closeExtractor, err := newExtractor(ctx, cmd, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("face models unavailable; descriptor endpoint disabled")
	} else {
		defer closeExtractor()
		extractor = ex
	}

	matcher := newServeMatcher(ctx, cfg, mustGetString(cmd, "descriptors"))
	server := web.NewServer(cfg, extractor, matcher)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}()

	return server.Start()
}
