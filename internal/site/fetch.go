// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-getter/v2"
	"github.com/spf13/afero"
)

// ErrFetchDirectory is returned when a remote directory file cannot be fetched.
var ErrFetchDirectory = errors.New("failed to fetch site directory")

// FetchDirectory loads a site directory from a local path or a go-getter URL.
// Paths that exist on the given filesystem are read directly; anything else
// is handed to go-getter, which understands git, HTTP, S3 and friends.
func FetchDirectory(ctx context.Context, fs afero.Fs, url string) (*StaticDirectory, error) {
	if ok, err := afero.Exists(fs, url); err == nil && ok {
		return LoadDirectory(fs, url)
	}

	tmpDir, err := os.MkdirTemp("", "sitebatch-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetchDirectory, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrFetchDirectory, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "sites.yaml"),
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrFetchDirectory, err)
	}

	data, err := os.ReadFile(res.Dst)
	if err != nil {
		return nil, errors.Join(ErrFetchDirectory, err)
	}

	return ParseDirectory(data)
}
