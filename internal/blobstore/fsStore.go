// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ClusterCockpit/pdg-backend/pkg/log"
)

type FsStoreConfig struct {
	Path string `json:"path"`
}

// FsStore keeps every blob as a file below a root directory. Keys use
// '/' separators regardless of the host filesystem.
type FsStore struct {
	path string
}

func (fsa *FsStore) Init(rawConfig json.RawMessage) error {
	var config FsStoreConfig
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		log.Warnf("Init() > Unmarshal error: %#v", err)
		return err
	}
	if config.Path == "" {
		err := fmt.Errorf("Init() : empty config.Path")
		log.Errorf("Init() > config.Path error: %v", err)
		return err
	}

	if err := os.MkdirAll(config.Path, 0o750); err != nil {
		log.Errorf("Init() > MkdirAll error: %v", err)
		return err
	}
	fsa.path = config.Path

	return nil
}

func (fsa *FsStore) filename(key string) string {
	return filepath.Join(fsa.path, filepath.FromSlash(key))
}

func (fsa *FsStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(fsa.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return b, err
}

func (fsa *FsStore) GetRange(ctx context.Context, key string, start, end int64) ([]byte, error) {
	f, err := os.Open(fsa.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if start >= info.Size() || start > end {
		return nil, fmt.Errorf("%w: %s [%d, %d]", ErrRangeNotSatisfiable, key, start, end)
	}
	if end >= info.Size() {
		end = info.Size() - 1
	}

	buf := make([]byte, end-start+1)
	if _, err := io.ReadFull(io.NewSectionReader(f, start, end-start+1), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (fsa *FsStore) Put(ctx context.Context, key string, data []byte) error {
	name := fsa.filename(key)
	if err := os.MkdirAll(filepath.Dir(name), 0o750); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o640)
}

func (fsa *FsStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(fsa.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (fsa *FsStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(fsa.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(fsa.path, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}
