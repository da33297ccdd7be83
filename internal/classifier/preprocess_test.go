package classifier

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeBase64(t *testing.T) {
	raw := solidPNG(t, 4, 3, color.RGBA{R: 255, A: 255})
	padded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name  string
		input string
	}{
		{"padded", padded},
		{"unpadded", base64.RawStdEncoding.EncodeToString(raw)},
		{"data url", "data:image/png;base64," + padded},
		{"line wrapped", padded[:10] + "\n" + padded[10:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeBase64(tt.input)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
		})
	}
}

func TestDecodeBase64_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"empty", ""},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello world"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBase64(tt.input)
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeImageDecode))
		})
	}
}

func TestToTensor_SolidColor(t *testing.T) {
	img, err := DecodeImage(solidPNG(t, 10, 20, color.RGBA{R: 255, G: 0, B: 128, A: 255}))
	require.NoError(t, err)

	const size = 8
	tensor := ToTensor(img, size)
	require.Len(t, tensor, 3*size*size)

	plane := size * size
	want := [3]float32{
		(1 - 0.485) / 0.229,
		(0 - 0.456) / 0.224,
		(128.0/255 - 0.406) / 0.225,
	}
	for c := 0; c < 3; c++ {
		for _, p := range []int{0, plane / 2, plane - 1} {
			assert.InDelta(t, want[c], tensor[c*plane+p], 1e-3, "channel %d pixel %d", c, p)
		}
	}
}
