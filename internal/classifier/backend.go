package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cswnn/Capstone-Homefix2/internal/metrics"
)

// Output holds the raw logits of both heads for a batch of one.
type Output struct {
	Defect   []float32
	Location []float32
}

// Backend runs the network on a normalized NCHW tensor.
type Backend interface {
	Infer(ctx context.Context, tensor []float32, shape []int64) (Output, error)
	Ready(ctx context.Context) error
}

// V2Config configures V2Backend.
type V2Config struct {
	BaseURL        string
	Model          string
	InputName      string
	DefectOutput   string
	LocationOutput string
	Timeout        time.Duration
}

// V2Backend speaks the Open Inference Protocol (KServe v2) over REST.
type V2Backend struct {
	httpClient *http.Client
	cfg        V2Config
}

// NewV2Backend creates an inference client.
func NewV2Backend(cfg V2Config) (*V2Backend, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("inference base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.DefectOutput == "" {
		cfg.DefectOutput = "defect_logits"
	}
	if cfg.LocationOutput == "" {
		cfg.LocationOutput = "location_logits"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &V2Backend{httpClient: &http.Client{Timeout: timeout}, cfg: cfg}, nil
}

type v2Tensor struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type v2Request struct {
	Inputs  []v2Tensor          `json:"inputs"`
	Outputs []map[string]string `json:"outputs"`
}

type v2Response struct {
	ModelName string     `json:"model_name"`
	Outputs   []v2Tensor `json:"outputs"`
	Error     string     `json:"error,omitempty"`
}

func (b *V2Backend) modelURL(suffix string) string {
	return fmt.Sprintf("%s/v2/models/%s%s", b.cfg.BaseURL, url.PathEscape(b.cfg.Model), suffix)
}

// Infer posts the tensor and returns the two output heads.
func (b *V2Backend) Infer(ctx context.Context, tensor []float32, shape []int64) (out Output, err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternalCall("classifier", start, err) }()

	body, err := json.Marshal(v2Request{
		Inputs: []v2Tensor{{Name: b.cfg.InputName, Shape: shape, Datatype: "FP32", Data: tensor}},
		Outputs: []map[string]string{
			{"name": b.cfg.DefectOutput},
			{"name": b.cfg.LocationOutput},
		},
	})
	if err != nil {
		return Output{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.modelURL("/infer"), bytes.NewReader(body))
	if err != nil {
		return Output{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Output{}, fmt.Errorf("read response: %w", err)
	}

	var decoded v2Response
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(respBody, &decoded) == nil && decoded.Error != "" {
			return Output{}, fmt.Errorf("inference server error: %s (status %d)", decoded.Error, resp.StatusCode)
		}
		return Output{}, fmt.Errorf("inference server returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return Output{}, fmt.Errorf("unmarshal response: %w", err)
	}

	for _, o := range decoded.Outputs {
		switch o.Name {
		case b.cfg.DefectOutput:
			out.Defect = o.Data
		case b.cfg.LocationOutput:
			out.Location = o.Data
		}
	}
	if out.Defect == nil || out.Location == nil {
		return Output{}, fmt.Errorf("response is missing %q or %q", b.cfg.DefectOutput, b.cfg.LocationOutput)
	}
	return out, nil
}

// Ready checks the model readiness endpoint.
func (b *V2Backend) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.modelURL("/ready"), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("readiness probe: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model %s is not ready (status %d)", b.cfg.Model, resp.StatusCode)
	}
	return nil
}

var _ Backend = (*V2Backend)(nil)
