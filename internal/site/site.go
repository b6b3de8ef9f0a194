// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package site

import (
	"errors"
	"strings"
)

// ID is an opaque site identifier, unique within a directory.
// The zero value is None, the "no active site" sentinel.
type ID string

// None is the sentinel meaning no site is active (the default context).
const None ID = ""

// ErrNoneID is returned when the None sentinel is used where a real site
// identifier is required.
var ErrNoneID = errors.New("site id is the none sentinel")

// String implements the Stringer interface for ID.
func (id ID) String() string {
	if id == None {
		return "<none>"
	}

	return string(id)
}

// IsNone reports whether the identifier is the sentinel value.
// Whitespace-only identifiers are treated as None so that a sloppy
// directory file cannot smuggle an empty id into a batch.
func (id ID) IsNone() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Site is one entry in a site directory.
type Site struct {
	ID     ID     `yaml:"id" json:"id"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Domain string `yaml:"domain,omitempty" json:"domain,omitempty"`
}
