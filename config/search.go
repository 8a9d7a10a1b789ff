package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"sjsage522/listingtracker/internal/crawler"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// Search is the optional YAML search file:
//
//	locations: [dublin-city, cork]
//	price_from: 200000
//	price_to: 450000
//	min_beds: 3
//	agents: [Sherry FitzGerald, DNG]
type Search struct {
	crawler.SearchFilter `yaml:",inline"`

	// Agents replaces the built-in estate agent list when non-empty
	Agents []string `yaml:"agents"`
}

// LoadSearch reads a search file. An empty path yields an empty search.
func LoadSearch(path string) (Search, error) {
	var s Search
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, apperrors.NewConfiguration("failed to read search file "+path, err)
	}
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return s, apperrors.NewConfiguration("failed to parse search file "+path, err)
	}
	return s, nil
}
