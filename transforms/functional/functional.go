// MODUL: functional
// ZWECK: Zustandslose Tensor-Funktionen fuer die Video-Vorverarbeitung
// INPUT: Video-Tensoren im Layout (C, T, H, W), Kanal-Statistiken (mean, std)
// OUTPUT: Normalisierte bzw. umgeformte Tensoren
// NEBENEFFEKTE: Normalize mit inplace=true veraendert den uebergebenen Tensor
// ABHAENGIGKEITEN: pdevine/tensor, gorgonia vecf32/vecf64, gonum/stat
// HINWEISE: Fehler werden nicht geloggt, sondern an den Aufrufer zurueckgegeben

package functional

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdevine/tensor"
	"gonum.org/v1/gonum/stat"
	"gorgonia.org/vecf32"
	"gorgonia.org/vecf64"
)

var (
	ErrInvalidArgument  = errors.New("functional: invalid argument")
	ErrUnsupportedDtype = errors.New("functional: unsupported dtype")
	ErrNotContiguous    = errors.New("functional: tensor is not contiguous")
)

// Normalize normalisiert einen Video-Tensor kanalweise:
//
//	out[c, ...] = (t[c, ...] - mean[c]) / std[c]
//
// Die Kanalanzahl C ist die Laenge der ersten Achse, weitere Achsen sind beliebig.
// mean und std werden unabhaengig vom Element-Typ des Tensors auf float32 gerundet.
// Mit inplace=false bleibt t unveraendert und eine unabhaengige Kopie wird
// zurueckgegeben, mit inplace=true wird t selbst veraendert und zurueckgegeben.
func Normalize(t *tensor.Dense, mean, std []float64, inplace bool) (*tensor.Dense, error) {
	if err := checkStatistics(t, mean, std); err != nil {
		return nil, err
	}

	if t.Shape().TotalSize() == 0 {
		// nichts zu rechnen, Data() ist auf leerem Speicher nicht nutzbar
		if inplace {
			return t, nil
		}
		return t.Clone().(*tensor.Dense), nil
	}

	out := t
	if inplace {
		if t.RequiresIterator() {
			return nil, fmt.Errorf("%w: cannot normalize a view or transposed tensor in place", ErrNotContiguous)
		}
	} else {
		out = contiguous(t)
	}

	block := broadcastExtent(StatisticShape(out.Dims()), out.Shape())
	switch data := out.Data().(type) {
	case []float32:
		for c := range mean {
			x := data[c*block : (c+1)*block]
			vecf32.TransInv(x, float32(mean[c]))
			vecf32.ScaleInv(x, float32(std[c]))
		}
	case []float64:
		for c := range mean {
			x := data[c*block : (c+1)*block]
			vecf64.TransInv(x, float64(float32(mean[c])))
			vecf64.ScaleInv(x, float64(float32(std[c])))
		}
	default:
		return nil, fmt.Errorf("%w: backing %T", ErrUnsupportedDtype, data)
	}

	return out, nil
}

// TimeToChannel formt einen Tensor (C, T, H, W) in (C*T, H, W) um.
// Die Zeitachse laeuft dabei schneller als die Kanalachse. Der Eingabe-Tensor
// behaelt seine Form; zusammenhaengende Tensoren teilen sich den Speicher mit
// dem Ergebnis.
func TimeToChannel(t *tensor.Dense) (*tensor.Dense, error) {
	if n := t.Dims(); n != 4 {
		return nil, fmt.Errorf("%w: expected 4D tensor but was %dD", ErrInvalidArgument, n)
	}

	shape := t.Shape()
	channels, frames, height, width := shape[0], shape[1], shape[2], shape[3]

	var out *tensor.Dense
	if t.RequiresIterator() {
		out = contiguous(t)
	} else {
		out = t.ShallowClone()
	}

	if err := out.Reshape(channels*frames, height, width); err != nil {
		return nil, fmt.Errorf("reshape %v to (%d, %d, %d): %w", shape, channels*frames, height, width, err)
	}
	return out, nil
}

// StatisticShape gibt die Broadcast-Form (-1, 1, ..., 1) fuer einen
// Kanal-Statistikvektor gegen einen Tensor vom Rang rank zurueck.
func StatisticShape(rank int) []int {
	if rank <= 0 {
		return nil
	}

	shape := make([]int, rank)
	shape[0] = -1
	for i := 1; i < rank; i++ {
		shape[i] = 1
	}
	return shape
}

// ChannelStatistics berechnet Mittelwert und (erwartungstreue) Standardabweichung
// pro Kanal ueber alle uebrigen Achsen. Das Ergebnis passt direkt zu Normalize.
//
// Der Schaetzer teilt durch n-1: Kanaele mit nur einem Element liefern std=NaN,
// Kanaele ohne Elemente (z.B. T=0) liefern mean=NaN und std=NaN.
func ChannelStatistics(t *tensor.Dense) (mean, std []float64, err error) {
	if err := checkTensor(t); err != nil {
		return nil, nil, err
	}

	channels := t.Shape()[0]
	mean = make([]float64, channels)
	std = make([]float64, channels)

	if t.Shape().TotalSize() == 0 {
		for c := range channels {
			mean[c], std[c] = math.NaN(), math.NaN()
		}
		return mean, std, nil
	}

	src := t
	if t.RequiresIterator() {
		src = contiguous(t)
	}

	block := broadcastExtent(StatisticShape(src.Dims()), src.Shape())
	switch data := src.Data().(type) {
	case []float32:
		values := make([]float64, block)
		for c := range channels {
			for i, v := range data[c*block : (c+1)*block] {
				values[i] = float64(v)
			}
			mean[c], std[c] = stat.MeanStdDev(values, nil)
		}
	case []float64:
		for c := range channels {
			mean[c], std[c] = stat.MeanStdDev(data[c*block:(c+1)*block], nil)
		}
	default:
		return nil, nil, fmt.Errorf("%w: backing %T", ErrUnsupportedDtype, data)
	}

	return mean, std, nil
}

// checkStatistics prueft Tensor und Statistiken, bevor irgendetwas kopiert
// oder veraendert wird.
func checkStatistics(t *tensor.Dense, mean, std []float64) error {
	if err := checkTensor(t); err != nil {
		return err
	}

	channels := t.Shape()[0]
	if len(mean) != len(std) {
		return fmt.Errorf("%w: expected mean and std to be of the same length, but were %d and %d respectively",
			ErrInvalidArgument, len(mean), len(std))
	}
	if len(mean) != channels {
		return fmt.Errorf("%w: expected mean to be the same length, %d, as the number of channels, %d",
			ErrInvalidArgument, len(mean), channels)
	}
	if len(std) != channels {
		return fmt.Errorf("%w: expected std to be the same length, %d, as the number of channels, %d",
			ErrInvalidArgument, len(std), channels)
	}
	return nil
}

func checkTensor(t *tensor.Dense) error {
	if t == nil {
		return fmt.Errorf("%w: tensor is nil", ErrInvalidArgument)
	}
	if t.Dims() == 0 {
		return fmt.Errorf("%w: expected a tensor with a channel dimension but was 0D", ErrInvalidArgument)
	}

	switch dt := t.Dtype(); dt {
	case tensor.Float32, tensor.Float64:
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedDtype, dt)
	}
}

// broadcastExtent loest die Statistik-Form statShape gegen shape auf und gibt
// die Anzahl Elemente zurueck, ueber die ein Statistikwert gebroadcastet wird.
// Das ist das Produkt aller Achsen, auf denen statShape die Ausdehnung 1 hat.
func broadcastExtent(statShape []int, shape tensor.Shape) int {
	n := 1
	for i, d := range statShape {
		if d == 1 {
			n *= shape[i]
		}
	}
	return n
}

// contiguous gibt eine unabhaengige Kopie von t zurueck, deren Speicher in
// logischer Reihenfolge vorliegt.
func contiguous(t *tensor.Dense) *tensor.Dense {
	if t.IsMaterializable() {
		if m, ok := t.Materialize().(*tensor.Dense); ok && m != t {
			return m
		}
	}
	return t.Clone().(*tensor.Dense)
}
