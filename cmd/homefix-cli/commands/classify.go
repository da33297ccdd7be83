package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cswnn/Capstone-Homefix2/internal/bootstrap"
	"github.com/cswnn/Capstone-Homefix2/internal/classifier"
)

func newClassifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <image-file>",
		Short: "Classify a photo with the inference server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			img, err := classifier.DecodeImage(raw)
			if err != nil {
				return err
			}

			clf, err := bootstrap.NewClassifier(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}

			spin := e.ui.Spinner("classifying")
			spin.Start()
			pred, err := clf.Classify(ctx, img)
			spin.Stop()
			if err != nil {
				return err
			}

			if e.ui.JSONMode() {
				return e.ui.JSON(pred)
			}
			e.ui.KeyValue("defect", pred.Defect)
			e.ui.KeyValue("location", pred.Location)
			if pred.Unmasked {
				e.ui.Warning("defect has no location scope, location is unconstrained")
			}
			return nil
		},
	}
}
