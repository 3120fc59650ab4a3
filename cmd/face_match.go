package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/kozaktomas/clinic-admin/internal/facematch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var faceMatchCmd = &cobra.Command{
	Use:   "match [image]",
	Short: "Identify the worker in an image or camera frame",
	Long: `Computes the face descriptor of the image (or --camera frame) and finds the
closest labeled descriptor set. Labels come from --descriptors (YAML) or from
the workers table (name, face_descriptor).

A match requires a mean euclidean distance below the threshold (default 0.6);
otherwise the label is "unknown". With --expect the command fails unless the
matched label equals the expected one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFaceMatch,
}

func init() {
	faceCmd.AddCommand(faceMatchCmd)
	faceMatchCmd.Flags().Int("camera", 0, "Capture the frame from this camera device instead of a file")
	faceMatchCmd.Flags().String("descriptors", "", "YAML file with labeled descriptors (default: workers table)")
	faceMatchCmd.Flags().Float64("threshold", facematch.DefaultDistanceThreshold, "Maximum distance for a match")
	faceMatchCmd.Flags().String("expect", "", "Fail unless the face matches this label")
	faceMatchCmd.Flags().Bool("json", false, "Output as JSON")
}

func runFaceMatch(cmd *cobra.Command, args []string) error {
	data, err := readFrame(cmd, args)
	if err != nil {
		return err
	}

	cfg := config.Load()
	ctx := context.Background()

	labeled, err := loadLabeledDescriptors(ctx, cfg, mustGetString(cmd, "descriptors"))
	if err != nil {
		return err
	}
	matcher, err := facematch.NewMatcherWithThreshold(labeled, mustGetFloat64(cmd, "threshold"))
	if err != nil {
		return fmt.Errorf("building matcher: %w", err)
	}
	log.Debug().Int("labels", len(labeled)).Msg("matcher ready")

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
		return fmt.Errorf("no face detected")
	}
	if err := matcher.CheckDescriptor(desc); err != nil {
		return fmt.Errorf("labeled descriptors do not fit the extracted descriptor: %w", err)
	}

	match := matcher.FindBestMatch(desc)
	log.Info().Str("label", match.Label).Float64("distance", match.Distance).Msg("face matched")

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		if err := writeJSON(out, match); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s (distance %.4f)\n", match.Label, match.Distance)
	}

	if expect := mustGetString(cmd, "expect"); expect != "" && !facematch.SameLabel(expect, match.Label) {
		return fmt.Errorf("expected %q, matched %q", expect, match.Label)
	}
	return nil
}
