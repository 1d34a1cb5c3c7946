package selection

import (
	"math/rand/v2"

	"github.com/jmylchreest/platepix/internal/catalog"
)

// pick draws uniformly from c. When hasExclude is set and the catalog has
// more than one item, the item with id exclude is never drawn. Filtering
// first keeps the draw to a single random number.
func pick(c *catalog.Catalog, exclude int, hasExclude bool, rng *rand.Rand) catalog.Item {
	n := c.Len()
	if n == 1 {
		return c.First()
	}
	if !hasExclude || !c.Contains(exclude) {
		return c.At(rng.IntN(n))
	}

	// Draw from the n-1 remaining positions, skipping over the excluded one.
	i := rng.IntN(n - 1)
	if c.At(i).ID == exclude {
		return c.At(n - 1)
	}
	return c.At(i)
}
