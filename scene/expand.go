package scene

import (
	"math/rand/v2"

	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/layout"
)

// Expand turns the catalog into positioned instances. Each type draws Amount
// positions from a single layout stream, in catalog order.
func Expand(catalog element.Catalog, spec layout.Spec, bounds core.Rect, rng *rand.Rand) ([]element.Instance, error) {
	stream, err := layout.NewStream(spec, bounds, rng)
	if err != nil {
		return nil, err
	}

	for i, t := range catalog {
		if t.Amount < 0 {
			return nil, core.NewConfigError("elements", "entry %d has negative amount %d", i, t.Amount)
		}
	}

	instances := make([]element.Instance, 0, catalog.Total())
	for _, t := range catalog {
		for _, p := range stream.Next(t.Amount) {
			instances = append(instances, element.NewInstance(t, len(instances), p))
		}
	}
	return instances, nil
}
