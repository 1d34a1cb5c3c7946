package catalog

import "embed"

// bundled contains the catalogs shipped with the binary.
//
//go:embed catalogs/*.yaml
var bundled embed.FS

// bundledPath returns the embedded path for a set.
func bundledPath(set Set) string {
	return "catalogs/" + string(set) + ".yaml"
}
