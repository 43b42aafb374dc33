// MODUL: frames
// ZWECK: Konvertierung einer Bildfolge in einen Video-Tensor
// INPUT: Frames als image.Image, alle mit gleichen Bounds
// OUTPUT: float32-Tensor (3, T, H, W) mit Werten in [0, 1]
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: pdevine/tensor
// HINWEISE: Channel-First Layout wie bei torchvideo

package transforms

import (
	"fmt"
	"image"

	"github.com/pdevine/tensor"

	"github.com/magicknight/torchvideo/transforms/functional"
)

// FramesToTensor konvertiert Frames in einen Tensor (C=3, T, H, W).
func FramesToTensor(frames []image.Image) (*tensor.Dense, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", functional.ErrInvalidArgument)
	}

	bounds := frames[0].Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	if h == 0 || w == 0 {
		return nil, fmt.Errorf("%w: empty frame bounds %v", functional.ErrInvalidArgument, bounds)
	}

	t := len(frames)
	planeSize := h * w
	channelSize := t * planeSize
	data := make([]float32, 3*channelSize)

	for ti, frame := range frames {
		if b := frame.Bounds(); b != bounds {
			return nil, fmt.Errorf("%w: frame %d has bounds %v, expected %v", functional.ErrInvalidArgument, ti, b, bounds)
		}

		idx := ti * planeSize
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b := extractRGB(frame, x, y)
				data[idx] = r
				data[channelSize+idx] = g
				data[2*channelSize+idx] = b
				idx++
			}
		}
	}

	return tensor.New(tensor.WithShape(3, t, h, w), tensor.WithBacking(data)), nil
}

// extractRGB holt RGB-Werte als float32 im Bereich [0,1]
func extractRGB(img image.Image, x, y int) (float32, float32, float32) {
	r, g, b, _ := img.At(x, y).RGBA()
	// RGBA gibt 16-bit Werte zurueck, auf 8-bit konvertieren
	return float32(r>>8) / 255.0, float32(g>>8) / 255.0, float32(b>>8) / 255.0
}
