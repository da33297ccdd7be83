package classifier

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
)

var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// DecodeBase64 decodes a base64 image, padded or not. A data URL prefix is
// tolerated. Failures are ImageDecodeErrors.
func DecodeBase64(s string) (image.Image, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, domain.ImageDecodeError("invalid base64", err)
	}
	return DecodeImage(raw)
}

// DecodeImage decodes raw image bytes.
func DecodeImage(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, domain.ImageDecodeError("empty image", nil)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.ImageDecodeError("cannot identify image file", err)
	}
	return img, nil
}

// ToTensor resizes img to size x size with bilinear interpolation and
// returns the normalized pixels in CHW order.
func ToTensor(img image.Image, size int) []float32 {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			off := dst.PixOffset(x, y)
			p := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(dst.Pix[off+c]) / 255
				out[c*plane+p] = (v - channelMean[c]) / channelStd[c]
			}
		}
	}
	return out
}
