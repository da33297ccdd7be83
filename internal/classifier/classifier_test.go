package classifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

type fakeBackend struct {
	out      Output
	err      error
	calls    int
	shape    []int64
	notReady bool
}

func (f *fakeBackend) Infer(ctx context.Context, tensor []float32, shape []int64) (Output, error) {
	f.calls++
	f.shape = shape
	return f.out, f.err
}

func (f *fakeBackend) Ready(ctx context.Context) error {
	if f.notReady {
		return errors.New("loading")
	}
	return nil
}

func logits(n, hot int) []float32 {
	v := make([]float32, n)
	v[hot] = 5
	return v
}

func TestClassifier_ClassifyBase64(t *testing.T) {
	backend := &fakeBackend{out: Output{
		Defect:   logits(4, 2),  // rust
		Location: logits(22, 6), // faucet
	}}
	c := New(backend, 16, observability.NewNopLogger())

	b64 := base64.StdEncoding.EncodeToString(solidPNG(t, 5, 5, color.Gray{Y: 90}))
	p, err := c.ClassifyBase64(context.Background(), b64)
	require.NoError(t, err)

	assert.Equal(t, "녹", p.Defect)
	assert.Equal(t, "수전", p.Location)
	assert.Equal(t, []int64{1, 3, 16, 16}, backend.shape)
}

func TestClassifier_DecodeFailureSkipsBackend(t *testing.T) {
	backend := &fakeBackend{}
	c := New(backend, 16, observability.NewNopLogger())

	_, err := c.ClassifyBase64(context.Background(), "not-an-image")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeImageDecode))
	assert.Zero(t, backend.calls)
}

func TestClassifier_BackendErrors(t *testing.T) {
	img, err := DecodeImage(solidPNG(t, 2, 2, color.White))
	require.NoError(t, err)

	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"backend failure", &fakeBackend{err: errors.New("connection refused")}},
		{"wrong logit sizes", &fakeBackend{out: Output{Defect: logits(3, 0), Location: logits(22, 0)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.backend, 8, observability.NewNopLogger()).Classify(context.Background(), img)
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeModelInference))
		})
	}
}

func TestClassifier_CheckReady(t *testing.T) {
	c := New(&fakeBackend{notReady: true}, 0, observability.NewNopLogger())
	err := c.CheckReady(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeModelInference))
}

func TestV2Backend_Infer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/models/homefix/ready":
			w.WriteHeader(http.StatusOK)
		case "/v2/models/homefix/infer":
			var req v2Request
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Inputs, 1)
			assert.Equal(t, "pixel_values", req.Inputs[0].Name)
			assert.Equal(t, "FP32", req.Inputs[0].Datatype)
			assert.Equal(t, []int64{1, 3, 2, 2}, req.Inputs[0].Shape)
			assert.Len(t, req.Inputs[0].Data, 12)

			_ = json.NewEncoder(w).Encode(v2Response{
				ModelName: "homefix",
				Outputs: []v2Tensor{
					{Name: "location_logits", Shape: []int64{1, 22}, Datatype: "FP32", Data: logits(22, 14)},
					{Name: "defect_logits", Shape: []int64{1, 4}, Datatype: "FP32", Data: logits(4, 3)},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b, err := NewV2Backend(V2Config{BaseURL: srv.URL, Model: "homefix", InputName: "pixel_values"})
	require.NoError(t, err)

	require.NoError(t, b.Ready(context.Background()))

	out, err := b.Infer(context.Background(), make([]float32, 12), []int64{1, 3, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, float32(5), out.Defect[3])
	assert.Equal(t, float32(5), out.Location[14])
}

func TestV2Backend_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/models/homefix/infer" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unexpected shape for input"}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b, err := NewV2Backend(V2Config{BaseURL: srv.URL, Model: "homefix"})
	require.NoError(t, err)

	require.Error(t, b.Ready(context.Background()))

	_, err = b.Infer(context.Background(), []float32{0}, []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected shape for input")
}

func TestNewV2Backend_Validation(t *testing.T) {
	_, err := NewV2Backend(V2Config{Model: "m"})
	require.Error(t, err)
	_, err = NewV2Backend(V2Config{BaseURL: "http://x"})
	require.Error(t, err)
}
