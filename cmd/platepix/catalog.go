package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/localize"
)

var catalogOpts struct {
	format string
	set    string
}

// catalogCmd represents the catalog command group.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect message catalogs",
	Long: `Inspect the message catalogs platepix selects from.

Catalogs are bundled with platepix. A file named <set>.yaml in the
catalog directory from the config replaces the bundled catalog.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list [set...]",
	Short: "List catalog items with their localized text",
	RunE:  catalogListRun,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate catalog files",
	Long: `Validate catalog files without installing them.

The message set is taken from each file name (motivations.yaml) unless
--set is given. Without arguments the active catalogs are checked.`,
	RunE: catalogValidateRun,
}

func init() {
	catalogListCmd.Flags().StringVarP(&catalogOpts.format, "output", "o", "plain",
		"Output format: plain, json, yaml")
	catalogValidateCmd.Flags().StringVar(&catalogOpts.set, "set", "",
		"Message set of the files (default: from file name)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)

	rootCmd.AddCommand(catalogCmd)
}

// catalogListing is the structured form of catalog list.
type catalogListing struct {
	Set   catalog.Set   `json:"set" yaml:"set"`
	Items []listingItem `json:"items" yaml:"items"`
}

type listingItem struct {
	ID   int    `json:"id" yaml:"id"`
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

func catalogListRun(cmd *cobra.Command, args []string) error {
	sets, err := parseSets(args)
	if err != nil {
		return err
	}

	var listings []catalogListing
	for _, set := range sets {
		c, ok := catalogs[set]
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrUnknownSet, set)
		}
		l := catalogListing{Set: set}
		for _, item := range c.Items() {
			l.Items = append(l.Items, listingItem{
				ID:   item.ID,
				Key:  item.Key,
				Text: bundle.Lookup(item.Key, c.Table()),
			})
		}
		listings = append(listings, l)
	}

	switch catalogOpts.format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(listings)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(listings)
	case "plain":
		for _, l := range listings {
			fmt.Printf("%s (%d)\n", l.Set, len(l.Items))
			for _, item := range l.Items {
				fmt.Printf("  %3d  %s\n", item.ID, item.Text)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid format %q, must be one of: plain, json, yaml", catalogOpts.format)
	}
}

func catalogValidateRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, set := range provider.Sets() {
			c := catalogs[set]
			fmt.Printf("%s: ok (%d items)\n", set, c.Len())
			reportMissingTranslations(c)
		}
		return nil
	}

	failed := 0
	for _, path := range args {
		c, err := validateCatalogFile(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: ok (%s, %d items)\n", path, c.Set(), c.Len())
		reportMissingTranslations(c)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d catalog files invalid", failed, len(args))
	}
	return nil
}

func validateCatalogFile(path string) (*catalog.Catalog, error) {
	name := catalogOpts.set
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	set, err := catalog.ParseSet(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.Parse(set, data)
}

// reportMissingTranslations warns about keys a bundled language lacks.
func reportMissingTranslations(c *catalog.Catalog) {
	keys := make([]string, 0, c.Len())
	for _, item := range c.Items() {
		keys = append(keys, item.Key)
	}

	missing, err := localize.Missing(c.Table(), keys)
	if err != nil {
		fmt.Printf("  warning: %v\n", err)
		return
	}
	for _, lang := range localize.Available() {
		for _, key := range missing[lang] {
			fmt.Printf("  warning: %s: no translation for %q\n", lang, key)
		}
	}
}
