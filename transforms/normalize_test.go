package transforms

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pdevine/tensor"
	"github.com/stretchr/testify/require"

	"github.com/magicknight/torchvideo/logutil"
	"github.com/magicknight/torchvideo/transforms/functional"
)

// newClip erzeugt einen Tensor (C, T, H, W) mit Werten 0, 1, 2, ...
func newClip(c, t, h, w int) *tensor.Dense {
	data := make([]float32, c*t*h*w)
	for i := range data {
		data[i] = float32(i)
	}
	return tensor.New(tensor.WithShape(c, t, h, w), tensor.WithBacking(data))
}

func TestNewNormalizeVideo(t *testing.T) {
	_, err := NewNormalizeVideo([]float64{0, 0}, []float64{1}, false)
	require.ErrorIs(t, err, functional.ErrInvalidArgument)

	_, err = NewNormalizeVideo([]float64{0, 0}, []float64{1, 0}, false)
	require.ErrorIs(t, err, functional.ErrInvalidArgument)
	require.ErrorContains(t, err, "channel 1")

	// ein Element pro Kanal ergibt std=NaN aus ChannelStatistics
	mean, std, err := functional.ChannelStatistics(tensor.New(tensor.WithShape(1), tensor.WithBacking([]float32{0.5})))
	require.NoError(t, err)
	_, err = NewNormalizeVideo(mean, std, false)
	require.ErrorIs(t, err, functional.ErrInvalidArgument)
	require.ErrorContains(t, err, "std of channel 0 is NaN")

	_, err = NewNormalizeVideo([]float64{0}, []float64{math.Inf(1)}, false)
	require.ErrorIs(t, err, functional.ErrInvalidArgument)

	mean = []float64{0.5, 0.5}
	n, err := NewNormalizeVideo(mean, []float64{0.25, 0.25}, true)
	require.NoError(t, err)

	mean[0] = 100
	require.Equal(t, []float64{0.5, 0.5}, n.Mean)
	require.Equal(t, "NormalizeVideo(mean=[0.5 0.5], std=[0.25 0.25], inplace=true)", n.String())
}

func TestNormalizeVideo(t *testing.T) {
	n, err := NewNormalizeVideo(ImageNetStandardMean, ImageNetStandardStd, false)
	require.NoError(t, err)

	clip := tensor.New(tensor.WithShape(3, 2, 1, 1), tensor.WithBacking([]float32{0, 1, 0.5, 0.5, 1, 0}))
	out, err := n.Apply(clip)
	require.NoError(t, err)

	want := []float32{-1, 1, 0, 0, 1, -1}
	if diff := cmp.Diff(want, out.Data().([]float32), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	// Kanalanzahl passt nicht
	_, err = n.Apply(newClip(2, 1, 1, 1))
	require.ErrorIs(t, err, functional.ErrInvalidArgument)
}

func TestTimeToChannelTransform(t *testing.T) {
	out, err := TimeToChannel{}.Apply(newClip(3, 4, 2, 2))
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{12, 2, 2}, out.Shape())
	require.Equal(t, "TimeToChannel()", TimeToChannel{}.String())
}

func TestCompose(t *testing.T) {
	n, err := NewNormalizeVideo([]float64{0, 0}, []float64{2, 2}, false)
	require.NoError(t, err)

	pipeline := Compose{n, TimeToChannel{}}
	require.Equal(t, "Compose(NormalizeVideo(mean=[0 0], std=[2 2], inplace=false), TimeToChannel())", pipeline.String())

	var buf bytes.Buffer
	t.Cleanup(func() { logutil.SetLogger(nil) })
	logutil.SetLogger(logutil.NewLogger(&buf, logutil.LevelTrace))

	out, err := pipeline.Apply(newClip(2, 3, 1, 2))
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{6, 1, 2}, out.Shape())

	want := make([]float32, 12)
	for i := range want {
		want[i] = float32(i) / 2
	}
	if diff := cmp.Diff(want, out.Data().([]float32)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	require.Contains(t, buf.String(), "transform=TimeToChannel()")
}

func TestComposeTraceFromEnvironment(t *testing.T) {
	for _, debug := range []string{"1", "2"} {
		t.Run("TORCHVIDEO_DEBUG="+debug, func(t *testing.T) {
			t.Setenv("TORCHVIDEO_DEBUG", debug)
			t.Cleanup(func() { logutil.SetLogger(nil) })

			var buf bytes.Buffer
			logutil.Init(&buf)
			buf.Reset()

			_, err := Compose{TimeToChannel{}}.Apply(newClip(2, 3, 1, 1))
			require.NoError(t, err)

			if debug == "2" {
				require.Contains(t, buf.String(), "level=TRACE")
				require.Contains(t, buf.String(), `msg="applied transform"`)
			} else {
				require.NotContains(t, buf.String(), "applied transform")
			}
		})
	}
}

func TestComposeError(t *testing.T) {
	pipeline := Compose{TimeToChannel{}, TimeToChannel{}}

	_, err := pipeline.Apply(newClip(2, 3, 4, 4))
	require.ErrorIs(t, err, functional.ErrInvalidArgument)
	require.ErrorContains(t, err, "transform 1 (TimeToChannel())")
	require.ErrorContains(t, err, "but was 3D")
}
