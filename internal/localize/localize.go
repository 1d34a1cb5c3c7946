// Package localize resolves catalog text keys to display strings using the
// string tables bundled with the binary.
package localize

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/*/*.toml
var locales embed.FS

// DefaultLanguage is used when nothing better matches. Every table must be
// complete in this language.
const DefaultLanguage = "en"

// Bundle resolves keys for one language with fallback to DefaultLanguage.
type Bundle struct {
	tag      language.Tag
	tables   map[string]map[string]string // table -> key -> text
	fallback map[string]map[string]string
}

// Available returns the bundled languages, DefaultLanguage first.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return []string{DefaultLanguage}
	}

	langs := []string{DefaultLanguage}
	for _, e := range entries {
		if e.IsDir() && e.Name() != DefaultLanguage {
			langs = append(langs, e.Name())
		}
	}
	return langs
}

// Load builds a Bundle for the best bundled match of lang. An empty lang
// is detected from the environment.
func Load(lang string) (*Bundle, error) {
	if lang == "" {
		lang = DetectLanguage()
	}
	lang = posixToBCP47(lang)

	available := Available()
	tags := make([]language.Tag, len(available))
	for i, l := range available {
		tags[i] = language.Make(l)
	}
	_, idx := language.MatchStrings(language.NewMatcher(tags), lang)
	chosen := available[idx]

	fallback, err := loadTables(DefaultLanguage)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		tag:      tags[idx],
		tables:   fallback,
		fallback: fallback,
	}
	if chosen != DefaultLanguage {
		if b.tables, err = loadTables(chosen); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// loadTables parses every table of one language.
func loadTables(lang string) (map[string]map[string]string, error) {
	dir := path.Join("locales", lang)
	entries, err := fs.ReadDir(locales, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s tables: %w", lang, err)
	}

	tables := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".toml" {
			continue
		}
		data, err := locales.ReadFile(path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var table map[string]string
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse %s/%s: %w", lang, e.Name(), err)
		}
		tables[strings.TrimSuffix(e.Name(), ".toml")] = table
	}
	return tables, nil
}

// Language returns the language this bundle resolves to.
func (b *Bundle) Language() language.Tag {
	return b.tag
}

// Lookup resolves key in table. Missing translations fall back to the
// default language, then to the key itself.
func (b *Bundle) Lookup(key, table string) string {
	if s, ok := b.tables[table][key]; ok {
		return s
	}
	if s, ok := b.fallback[table][key]; ok {
		return s
	}
	return key
}

// Has reports whether key resolves in the default language.
func (b *Bundle) Has(key, table string) bool {
	_, ok := b.fallback[table][key]
	return ok
}

// Missing returns, per bundled language, the keys of table that have no
// text in that language. Languages without gaps are omitted.
func Missing(table string, keys []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, lang := range Available() {
		tables, err := loadTables(lang)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			if _, ok := tables[table][key]; !ok {
				out[lang] = append(out[lang], key)
			}
		}
	}
	return out, nil
}

// DetectLanguage reads the POSIX locale variables and returns a BCP 47
// style tag such as "de-DE". Returns DefaultLanguage for C/POSIX locales.
func DetectLanguage() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return posixToBCP47(v)
		}
	}
	return DefaultLanguage
}

// posixToBCP47 turns "de_DE.UTF-8@euro" into "de-DE".
func posixToBCP47(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return DefaultLanguage
	}
	return strings.ReplaceAll(v, "_", "-")
}
