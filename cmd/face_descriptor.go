package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/kozaktomas/clinic-admin/internal/supabase"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var faceDescriptorCmd = &cobra.Command{
	Use:   "descriptor [image]",
	Short: "Compute the face descriptor of an image or camera frame",
	Long: `Detects faces in the image (JPEG, PNG, GIF or BMP) or in one frame grabbed
from --camera and prints the 128-value descriptor of the most prominent face
as JSON. Prints null when no face is found.

With --save-worker the descriptor is stored in workers.face_descriptor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFaceDescriptor,
}

func init() {
	faceCmd.AddCommand(faceDescriptorCmd)
	faceDescriptorCmd.Flags().Int("camera", 0, "Capture the frame from this camera device instead of a file")
	faceDescriptorCmd.Flags().String("save-worker", "", "Store the descriptor on the worker with this id")
}

func runFaceDescriptor(cmd *cobra.Command, args []string) error {
	workerID := mustGetString(cmd, "save-worker")
	if workerID != "" {
		if _, err := uuid.Parse(workerID); err != nil {
			return fmt.Errorf("invalid worker id %q: %w", workerID, err)
		}
	}

	data, err := readFrame(cmd, args)
	if err != nil {
		return err
	}

	cfg := config.Load()
	ctx := context.Background()

	extractor, closeExtractor, err := newExtractor(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer closeExtractor()

	desc, err := extractor.GetFaceDescriptor(ctx, data)
	if err != nil {
		return err
	}
	if desc == nil {
		log.Warn().Msg("no face detected")
	}

	if err := writeJSON(cmd.OutOrStdout(), desc); err != nil {
		return err
	}

	if workerID == "" {
		return nil
	}
	if desc == nil {
		return errors.New("no face detected; worker descriptor not saved")
	}

	client, err := newSupabaseClient(cfg)
	if err != nil {
		return err
	}
	err = client.Update(ctx, workersTable,
		url.Values{"id": {supabase.Eq(workerID)}},
		map[string]any{workerDescriptorColumn: desc})
	if errors.Is(err, supabase.ErrNoRowsUpdated) {
		return fmt.Errorf("worker %s not found; descriptor not saved", workerID)
	}
	if err != nil {
		logRemoteError(log.Error(), err).Str("worker", workerID).Msg("saving descriptor failed")
		return err
	}
	log.Info().Str("worker", workerID).Msg("descriptor saved")
	return nil
}
