// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package site

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

var (
	// ErrDirectoryRead is returned when the directory file cannot be read.
	ErrDirectoryRead = errors.New("failed to read site directory")
	// ErrDirectoryParse is returned when the directory file cannot be parsed.
	ErrDirectoryParse = errors.New("failed to parse site directory")
	// ErrDuplicateID is returned when a directory file declares the same site id twice.
	ErrDuplicateID = errors.New("duplicate site id in directory")
	// ErrSiteNotFound is returned when a site id is not present in the directory.
	ErrSiteNotFound = errors.New("site not found in directory")
)

// Directory enumerates the sites of a deployment. Implementations supply the
// tenant list consumed by the batch engine; the engine never enumerates sites
// itself.
type Directory interface {
	// List returns all sites in declaration order.
	List(ctx context.Context) ([]Site, error)
	// Get returns the site with the given id, or ErrSiteNotFound.
	Get(ctx context.Context, id ID) (Site, error)
}

// StaticDirectory is a Directory backed by a fixed, ordered list of sites.
type StaticDirectory struct {
	sites []Site
}

var _ Directory = (*StaticDirectory)(nil)

// NewStaticDirectory creates a directory from the given sites.
// The slice is copied; declaration order is preserved.
func NewStaticDirectory(sites []Site) *StaticDirectory {
	s := make([]Site, len(sites))
	copy(s, sites)

	return &StaticDirectory{sites: s}
}

// List implements the Directory interface for StaticDirectory.
func (d *StaticDirectory) List(_ context.Context) ([]Site, error) {
	out := make([]Site, len(d.sites))
	copy(out, d.sites)

	return out, nil
}

// Get implements the Directory interface for StaticDirectory.
func (d *StaticDirectory) Get(_ context.Context, id ID) (Site, error) {
	for _, s := range d.sites {
		if s.ID == id {
			return s, nil
		}
	}

	return Site{}, fmt.Errorf("%w: %s", ErrSiteNotFound, id)
}

// IDs returns the identifiers of all sites in declaration order.
func (d *StaticDirectory) IDs() []ID {
	ids := make([]ID, len(d.sites))
	for i, s := range d.sites {
		ids[i] = s.ID
	}

	return ids
}

// directoryFile is the YAML document structure for a site directory file.
type directoryFile struct {
	Sites []Site `yaml:"sites"`
}

// ParseDirectory builds a StaticDirectory from YAML bytes.
// Entries with a None id or a previously seen id are rejected so that the
// file cannot produce a list the engine would refuse anyway.
func ParseDirectory(data []byte) (*StaticDirectory, error) {
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Join(ErrDirectoryParse, err)
	}

	seen := make(map[ID]struct{}, len(f.Sites))

	for i, s := range f.Sites {
		if s.ID.IsNone() {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrDirectoryParse, i)
		}

		if _, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}

		seen[s.ID] = struct{}{}
	}

	return NewStaticDirectory(f.Sites), nil
}

// LoadDirectory reads a site directory file from the given filesystem.
func LoadDirectory(fs afero.Fs, path string) (*StaticDirectory, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(ErrDirectoryRead, err)
	}

	return ParseDirectory(data)
}
