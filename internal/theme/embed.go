package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// bundledThemes contains all bundled palettes.
//
//go:embed themes/*.toml
var bundledThemes embed.FS

// DefaultThemeID is the id of the built-in default theme.
const DefaultThemeID = "default"

// List returns the ids of all bundled themes, sorted, default first.
func List() []string {
	entries, err := fs.ReadDir(bundledThemes, "themes")
	if err != nil {
		return []string{DefaultThemeID}
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		if id := strings.TrimSuffix(name, ".toml"); id != DefaultThemeID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return append([]string{DefaultThemeID}, ids...)
}

// Exists checks if a theme id is bundled.
func Exists(id string) bool {
	_, err := bundledThemes.ReadFile("themes/" + id + ".toml")
	return id != "" && err == nil
}
