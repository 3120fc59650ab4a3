package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/kozaktomas/clinic-admin/internal/facematch"
	"github.com/kozaktomas/clinic-admin/internal/facerec"
	"github.com/kozaktomas/clinic-admin/internal/facerec/dlib"
	"github.com/kozaktomas/clinic-admin/internal/frame"
	"github.com/kozaktomas/clinic-admin/internal/frame/camera"
	"github.com/kozaktomas/clinic-admin/internal/supabase"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	workersTable           = "workers"
	workerLabelColumn      = "name"
	workerDescriptorColumn = "face_descriptor"
)

var faceCmd = &cobra.Command{
	Use:   "face",
	Short: "Face descriptor commands",
	Long: `Commands that download the dlib face models, compute face descriptors from
images or a camera, and match them against known workers.`,
}

func init() {
	rootCmd.AddCommand(faceCmd)
	faceCmd.PersistentFlags().String("models-dir", "", "Directory holding the model files (default FACE_MODELS_DIR)")
}

// modelsDir resolves --models-dir against configuration.
func modelsDir(cmd *cobra.Command, cfg *config.Config) string {
	if dir := mustGetString(cmd, "models-dir"); dir != "" {
		return dir
	}
	return cfg.Face.ModelsDir
}

// loadModels downloads any missing model file into dir.
func loadModels(ctx context.Context, cfg *config.Config, dir, baseURL string) error {
	if baseURL == "" {
		baseURL = cfg.Face.ModelsURL
	}
	files := cfg.Face.ModelFiles()
	if facerec.ModelsPresent(dir, files) {
		return nil
	}

	log.Info().Str("dir", dir).Str("source", baseURL).Msg("downloading face models")
	src := facerec.NewHTTPModelSource(baseURL, os.Stderr)
	if err := facerec.LoadModels(ctx, src, dir, files); err != nil {
		return fmt.Errorf("loading face models: %w", err)
	}
	return nil
}

// newExtractor makes sure the models exist and constructs the dlib backend.
// The returned close function releases the native recognizer.
func newExtractor(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*facerec.Extractor, func(), error) {
	dir := modelsDir(cmd, cfg)
	if err := loadModels(ctx, cfg, dir, ""); err != nil {
		return nil, nil, err
	}

	rec, err := dlib.New(dir)
	if err != nil {
		return nil, nil, err
	}
	return facerec.NewExtractor(rec, cfg.Face.MaxFrameSize), rec.Close, nil
}

// readFrame reads the frame from the image argument or from --camera.
func readFrame(cmd *cobra.Command, args []string) ([]byte, error) {
	if cmd.Flags().Changed("camera") {
		if len(args) > 0 {
			return nil, fmt.Errorf("use either an image path or --camera, not both")
		}
		device := mustGetInt(cmd, "camera")
		log.Debug().Int("device", device).Msg("capturing frame")
		return camera.Capture(device)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("an image path or --camera is required")
	}
	return frame.ReadFile(args[0])
}

// loadWorkerDescriptors reads labeled descriptors from the workers table.
func loadWorkerDescriptors(ctx context.Context, client *supabase.Client) ([]facematch.LabeledDescriptors, error) {
	rows, err := client.Select(ctx, workersTable, supabase.Query{
		Columns: workerLabelColumn + "," + workerDescriptorColumn,
		Filters: url.Values{workerDescriptorColumn: {"not.is.null"}},
		Order:   workerLabelColumn + ".asc",
	})
	if err != nil {
		return nil, fmt.Errorf("loading worker descriptors: %w", err)
	}
	return facematch.LabeledFromRows(rows, workerLabelColumn, workerDescriptorColumn)
}

// loadLabeledDescriptors reads labeled descriptors from path, or from the
// workers table when path is empty.
func loadLabeledDescriptors(ctx context.Context, cfg *config.Config, path string) ([]facematch.LabeledDescriptors, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening descriptor file: %w", err)
		}
		defer f.Close()
		return facematch.LoadLabeledDescriptors(f)
	}

	client, err := newSupabaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return loadWorkerDescriptors(ctx, client)
}
