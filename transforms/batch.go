package transforms

import (
	"context"
	"fmt"

	"github.com/pdevine/tensor"
	"golang.org/x/sync/errgroup"

	"github.com/magicknight/torchvideo/envconfig"
	"github.com/magicknight/torchvideo/logutil"
)

// ApplyBatch wendet tr parallel auf unabhaengige Clips an.
// Die Reihenfolge der Ergebnisse entspricht der Eingabe; der erste Fehler
// bricht die restlichen Clips ab. Clips duerfen sich keinen Speicher teilen,
// wenn tr in place arbeitet.
func ApplyBatch(ctx context.Context, tr Transform, clips []*tensor.Dense) ([]*tensor.Dense, error) {
	out := make([]*tensor.Dense, len(clips))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(envconfig.NumWorkers())
	for i, clip := range clips {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			t, err := tr.Apply(clip)
			if err != nil {
				return fmt.Errorf("clip %d: %w", i, err)
			}
			out[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logutil.Logger().Debug("transformed batch", "transform", name(tr), "clips", len(clips))
	return out, nil
}
