package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/spf13/cobra"
)

var faceModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Download the face detection and recognition models",
	Long: `Fetches the detector, landmark and recognition models in parallel into the
models directory. Files that already exist are kept.`,
	Args: cobra.NoArgs,
	RunE: runFaceModels,
}

func init() {
	faceCmd.AddCommand(faceModelsCmd)
	faceModelsCmd.Flags().String("base-url", "", "Base URL serving the model files (default FACE_MODELS_URL)")
}

func runFaceModels(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	dir := modelsDir(cmd, cfg)

	if err := loadModels(context.Background(), cfg, dir, mustGetString(cmd, "base-url")); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Models ready in %s\n", dir)
	for _, m := range cfg.Face.Models {
		fmt.Fprintf(out, "  %-12s %s\n", m.Role, filepath.Join(dir, m.File))
	}
	return nil
}
