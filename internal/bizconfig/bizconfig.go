// Package bizconfig reads the per-business markdown documents that drive
// the lead engine: brand voice, service catalogue, audience segments,
// lead targets (thresholds and score tables), and location tiers.
// Each business is a subdirectory of the configured businesses dir.
package bizconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Reader loads business configuration from a directory tree.
type Reader struct {
	dir string
}

// NewReader creates a Reader rooted at the businesses directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Business aggregates every config document for one business.
type Business struct {
	Slug      string
	Brand     Brand
	Services  []Service
	Audiences []Audience
	Targets   Targets
	Locations Locations
}

// ListBusinesses returns the slugs of all configured businesses,
// sorted for deterministic processing order. Hidden directories
// (including the .template scaffold) are skipped.
func (r *Reader) ListBusinesses() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("bizconfig: list businesses: %w", err)
	}

	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		slugs = append(slugs, entry.Name())
	}

	sort.Strings(slugs)
	return slugs, nil
}

// LoadBusiness reads all five config documents for one business.
func (r *Reader) LoadBusiness(slug string) (*Business, error) {
	brand, err := r.ReadBrand(slug)
	if err != nil {
		return nil, err
	}

	services, err := r.ReadServices(slug)
	if err != nil {
		return nil, err
	}

	audiences, err := r.ReadAudiences(slug)
	if err != nil {
		return nil, err
	}

	targets, err := r.ReadTargets(slug)
	if err != nil {
		return nil, err
	}

	locations, err := r.ReadLocations(slug)
	if err != nil {
		return nil, err
	}

	return &Business{
		Slug:      slug,
		Brand:     brand,
		Services:  services,
		Audiences: audiences,
		Targets:   targets,
		Locations: locations,
	}, nil
}

// IsConfigured reports whether the business config is complete enough to
// process leads: a filled-in brand name and at least one service.
func (b *Business) IsConfigured() bool {
	return b.Brand.Identity.BusinessName != "" && len(b.Services) > 0
}

func (r *Reader) readDoc(slug, filename string) ([]string, error) {
	path := filepath.Join(r.dir, slug, filename)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bizconfig: read %s for %s: %w", filename, slug, err)
	}
	return strings.Split(string(content), "\n"), nil
}
