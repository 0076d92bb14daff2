// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
)

// LevelMeta describes one pyramid level inside the file metadata
// document.
type LevelMeta struct {
	Names     []string `json:"names"`
	Frequency float64  `json:"frequency"`
	Number    int64    `json:"number"`
}

// LevelSet is the "levels" object of the file metadata: the ordered
// level names plus one LevelMeta entry per name.
type LevelSet struct {
	Names  []string
	ByName map[string]*LevelMeta
}

func (ls LevelSet) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(ls.Names)+1)
	doc["names"] = ls.Names
	for name, meta := range ls.ByName {
		doc[name] = meta
	}
	return json.Marshal(doc)
}

func (ls *LevelSet) UnmarshalJSON(b []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	if raw, ok := doc["names"]; ok {
		if err := json.Unmarshal(raw, &ls.Names); err != nil {
			return err
		}
	}

	ls.ByName = make(map[string]*LevelMeta, len(ls.Names))
	for _, name := range ls.Names {
		raw, ok := doc[name]
		if !ok {
			return fmt.Errorf("file metadata: level %q listed but missing", name)
		}
		meta := &LevelMeta{}
		if err := json.Unmarshal(raw, meta); err != nil {
			return err
		}
		ls.ByName[name] = meta
	}

	return nil
}

// FileMeta is the per-file metadata document. Its presence under
// <root>/<file>/metadata.json is the commit marker of preprocessing.
type FileMeta struct {
	Start     int64    `json:"start"`
	End       int64    `json:"end"`
	RawNumber int64    `json:"raw_number"`
	RawFile   string   `json:"raw_file"`
	Levels    LevelSet `json:"levels"`
}

// LoadFileMeta returns ok == false when the document does not exist;
// every other store failure propagates.
func LoadFileMeta(ctx context.Context, store blobstore.Store, root, file string) (*FileMeta, bool, error) {
	data, err := store.Get(ctx, fileMetaPath(root, file))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	meta := &FileMeta{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, false, fmt.Errorf("file metadata %s: %w", file, err)
	}
	return meta, true, nil
}

func (m *FileMeta) Save(ctx context.Context, store blobstore.Store, root, file string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return store.Put(ctx, fileMetaPath(root, file), data)
}

// SliceIndex maps slice names of one level to their start timestamps.
type SliceIndex map[string]int64

// LoadSliceIndex returns ok == false when the level metadata document
// does not exist.
func LoadSliceIndex(ctx context.Context, store blobstore.Store, root, file, strategy, level string) (SliceIndex, bool, error) {
	data, err := store.Get(ctx, levelMetaPath(root, file, strategy, level))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	index := SliceIndex{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, false, fmt.Errorf("level metadata %s/%s: %w", file, level, err)
	}
	return index, true, nil
}

func (si SliceIndex) Save(ctx context.Context, store blobstore.Store, root, file, strategy, level string) error {
	data, err := json.Marshal(si)
	if err != nil {
		return err
	}
	return store.Put(ctx, levelMetaPath(root, file, strategy, level), data)
}

// Ordered returns the slice names sorted by slice index together with
// the aligned start timestamps. Slice indices within a level
// correspond to non-decreasing start times.
func (si SliceIndex) Ordered() ([]string, []int64) {
	names := make([]string, 0, len(si))
	for name := range si {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return sliceIndexOf(names[i]) < sliceIndexOf(names[j])
	})

	starts := make([]int64, len(names))
	for i, name := range names {
		starts[i] = si[name]
	}
	return names, starts
}

// sliceIndexOf extracts i from "<level>/s<i>.csv"; malformed names
// sort first.
func sliceIndexOf(name string) int {
	base := name[strings.LastIndex(name, "/")+1:]
	base = strings.TrimPrefix(base, "s")
	base = strings.TrimSuffix(base, ".csv")
	idx, err := strconv.Atoi(base)
	if err != nil {
		return -1
	}
	return idx
}
