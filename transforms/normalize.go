// MODUL: normalize
// ZWECK: Kanalweise Normalisierung und Zeit-in-Kanal-Umformung als Transformationen
// INPUT: Video-Tensoren (C, T, H, W), Normalisierungs-Parameter (mean, std)
// OUTPUT: Normalisierte bzw. umgeformte Tensoren
// NEBENEFFEKTE: NormalizeVideo mit Inplace veraendert den Eingabe-Tensor
// ABHAENGIGKEITEN: transforms/functional
// HINWEISE: ImageNet/CLIP/Kinetics Presets fuer RGB-Videos

package transforms

import (
	"fmt"
	"math"

	"github.com/pdevine/tensor"

	"github.com/magicknight/torchvideo/transforms/functional"
)

// Standard-Normalisierungswerte fuer RGB-Videos mit Werten in [0, 1]
var (
	// ImageNet Default (ResNet, EfficientNet, etc.)
	ImageNetMean = []float64{0.485, 0.456, 0.406}
	ImageNetStd  = []float64{0.229, 0.224, 0.225}

	// ImageNet Standard (normalisiert auf [-1, 1])
	ImageNetStandardMean = []float64{0.5, 0.5, 0.5}
	ImageNetStandardStd  = []float64{0.5, 0.5, 0.5}

	// CLIP Default
	ClipMean = []float64{0.48145466, 0.4578275, 0.40821073}
	ClipStd  = []float64{0.26862954, 0.26130258, 0.27577711}

	// Kinetics-400 (torchvision Video-Modelle)
	KineticsMean = []float64{0.43216, 0.394666, 0.37645}
	KineticsStd  = []float64{0.22803, 0.22145, 0.216989}
)

// NormalizeVideo normalisiert einen Video-Tensor kanalweise mit Mean und Std.
type NormalizeVideo struct {
	Mean    []float64
	Std     []float64
	Inplace bool
}

// NewNormalizeVideo prueft die Statistiken schon beim Erzeugen: std muss
// endlich und ungleich null sein.
// Die Kanalanzahl wird erst in Apply gegen den Tensor geprueft.
func NewNormalizeVideo(mean, std []float64, inplace bool) (*NormalizeVideo, error) {
	if len(mean) != len(std) {
		return nil, fmt.Errorf("%w: expected mean and std to be of the same length, but were %d and %d respectively",
			functional.ErrInvalidArgument, len(mean), len(std))
	}
	for c, s := range std {
		switch {
		case s == 0:
			return nil, fmt.Errorf("%w: std of channel %d is zero", functional.ErrInvalidArgument, c)
		case math.IsNaN(s) || math.IsInf(s, 0):
			return nil, fmt.Errorf("%w: std of channel %d is %v", functional.ErrInvalidArgument, c, s)
		}
	}

	return &NormalizeVideo{
		Mean:    append([]float64(nil), mean...),
		Std:     append([]float64(nil), std...),
		Inplace: inplace,
	}, nil
}

func (n *NormalizeVideo) Apply(t *tensor.Dense) (*tensor.Dense, error) {
	return functional.Normalize(t, n.Mean, n.Std, n.Inplace)
}

func (n *NormalizeVideo) String() string {
	return fmt.Sprintf("NormalizeVideo(mean=%v, std=%v, inplace=%t)", n.Mean, n.Std, n.Inplace)
}

// TimeToChannel faltet die Zeitachse in die Kanalachse: (C, T, H, W) -> (C*T, H, W).
type TimeToChannel struct{}

func (TimeToChannel) Apply(t *tensor.Dense) (*tensor.Dense, error) {
	return functional.TimeToChannel(t)
}

func (TimeToChannel) String() string {
	return "TimeToChannel()"
}
