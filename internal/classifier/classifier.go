package classifier

import (
	"context"
	"fmt"
	"image"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/metrics"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// DefaultImageSize is the square input resolution of the network.
const DefaultImageSize = 456

// Classifier preprocesses images, runs the backend and applies the scope mask.
type Classifier struct {
	backend Backend
	size    int
	logger  *observability.Logger
}

// New creates a classifier. size <= 0 selects DefaultImageSize.
func New(backend Backend, size int, logger *observability.Logger) *Classifier {
	if size <= 0 {
		size = DefaultImageSize
	}
	return &Classifier{backend: backend, size: size, logger: logger.WithOperation("classify")}
}

// CheckReady fails when the backend has not loaded the model.
func (c *Classifier) CheckReady(ctx context.Context) error {
	if err := c.backend.Ready(ctx); err != nil {
		return domain.InferenceError("classifier backend not ready", err)
	}
	return nil
}

// ClassifyBase64 decodes a base64 image and classifies it. Decode failures
// never reach the backend.
func (c *Classifier) ClassifyBase64(ctx context.Context, b64 string) (Prediction, error) {
	img, err := DecodeBase64(b64)
	if err != nil {
		return Prediction{}, err
	}
	return c.Classify(ctx, img)
}

// Classify returns the defect and the best location allowed for it.
func (c *Classifier) Classify(ctx context.Context, img image.Image) (Prediction, error) {
	tensor := ToTensor(img, c.size)
	shape := []int64{1, 3, int64(c.size), int64(c.size)}

	out, err := c.backend.Infer(ctx, tensor, shape)
	if err != nil {
		return Prediction{}, domain.InferenceError("classifier inference failed", err)
	}
	if len(out.Defect) != len(DefectLabels) || len(out.Location) != len(LocationLabels) {
		return Prediction{}, domain.InferenceError(
			fmt.Sprintf("unexpected logit sizes %d/%d, want %d/%d", len(out.Defect), len(out.Location), len(DefectLabels), len(LocationLabels)), nil)
	}

	defect, location, unmasked := MaskedArgmax(out.Defect, out.Location, LocationScope)
	if unmasked {
		c.logger.Warn().Int("defect_index", defect).Msg("no location scope for defect, using unmasked prediction")
	}

	p := Prediction{
		Defect:        DefectLabels[defect],
		Location:      LocationLabels[location],
		DefectIndex:   defect,
		LocationIndex: location,
		Unmasked:      unmasked,
	}
	metrics.Classifications.WithLabelValues(p.Defect, p.Location).Inc()

	c.logger.Info().
		Str("defect", p.Defect).
		Str("location", p.Location).
		Msg("image classified")
	return p, nil
}
