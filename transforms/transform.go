// MODUL: transform
// ZWECK: Komponierbare Video-Transformationen
// INPUT: Video-Tensoren (C, T, H, W)
// OUTPUT: Transformierte Tensoren
// NEBENEFFEKTE: TRACE-Logging pro Schritt in Compose
// ABHAENGIGKEITEN: pdevine/tensor, logutil
// HINWEISE: Fehler werden mit Position und Name der Transformation umhuellt

package transforms

import (
	"fmt"
	"strings"

	"github.com/pdevine/tensor"

	"github.com/magicknight/torchvideo/logutil"
)

// Transform ist eine einzelne Video-Transformation.
type Transform interface {
	Apply(t *tensor.Dense) (*tensor.Dense, error)
}

// Compose wendet Transformationen der Reihe nach an und bricht beim ersten Fehler ab.
type Compose []Transform

func (c Compose) Apply(t *tensor.Dense) (*tensor.Dense, error) {
	var err error
	for i, tr := range c {
		t, err = tr.Apply(t)
		if err != nil {
			return nil, fmt.Errorf("transform %d (%s): %w", i, name(tr), err)
		}
		logutil.Trace("applied transform", "index", i, "transform", name(tr), "shape", t.Shape())
	}
	return t, nil
}

func (c Compose) String() string {
	var b strings.Builder
	b.WriteString("Compose(")
	for i, tr := range c {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name(tr))
	}
	b.WriteRune(')')
	return b.String()
}

func name(tr Transform) string {
	if s, ok := tr.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", tr)
}
