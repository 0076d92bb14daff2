// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"context"
	"errors"
	"time"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/ClusterCockpit/pdg-backend/pkg/lrucache"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
	"github.com/ClusterCockpit/pdg-backend/pkg/util"
)

// ErrPreprocessIncomplete marks a fetch against a file whose pyramid
// has not been committed yet.
var ErrPreprocessIncomplete = errors.New("preprocess incomplete")

const metadataTTL = time.Minute

// FetchParams describe one query: the downsampling strategy, the
// point budget per channel and an optional time window. Nil bounds
// default to the file's full timespan.
type FetchParams struct {
	Strategy      schema.Strategy
	NumberRecords int
	Start         *int64
	End           *int64
}

// FetchResult is the HTTP-facing answer: the per-channel series plus
// the precision score.
type FetchResult struct {
	Data      []schema.ChannelSeries `json:"data"`
	Precision float64                `json:"precision"`

	// SlicesRead is instrumentation only and stays out of the payload.
	SlicesRead int `json:"-"`
}

func emptyResult() *FetchResult {
	return &FetchResult{Data: []schema.ChannelSeries{}, Precision: 0}
}

// Fetcher plans and executes time-range queries against committed
// pyramids. Metadata documents are cached between queries; slice
// blobs are read per request.
type Fetcher struct {
	store blobstore.Store
	root  string
	cache *lrucache.Cache
}

func NewFetcher(store blobstore.Store, root string, cache *lrucache.Cache) *Fetcher {
	return &Fetcher{store: store, root: root, cache: cache}
}

// Fetch selects the coarsest level that still satisfies the point
// budget over the requested window, reads only the covering slices
// and reduces each channel to at most NumberRecords records.
func (f *Fetcher) Fetch(ctx context.Context, rawKey string, p FetchParams) (*FetchResult, error) {
	file := FileBaseName(rawKey)

	meta, ok, err := f.fileMeta(ctx, file)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPreprocessIncomplete
	}

	start, end := meta.Start, meta.End
	if p.Start != nil {
		start = *p.Start
	}
	if p.End != nil {
		end = *p.End
	}

	if start > meta.End || end < meta.Start {
		return emptyResult(), nil
	}
	if p.NumberRecords <= 0 || end <= start || meta.RawNumber == 0 {
		return emptyResult(), nil
	}

	level := f.selectLevel(meta, p, start, end)

	strategyDir := p.Strategy.String()
	if level == level0 {
		strategyDir = ""
	}

	index, ok, err := f.sliceIndex(ctx, file, strategyDir, level)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPreprocessIncomplete
	}

	names, starts := index.Ordered()
	if len(names) == 0 {
		return emptyResult(), nil
	}

	first := util.SearchAscending(starts, start)
	last := util.SearchAscending(starts, end)
	// The strict search stops short of slices starting exactly at end.
	for last+1 < len(starts) && starts[last+1] <= end {
		last++
	}

	paths := make([]string, 0, last-first+1)
	for _, name := range names[first : last+1] {
		paths = append(paths, slicePath(f.root, file, p.Strategy.String(), name))
	}

	reader := NewSlicesReader()
	if err := reader.Read(ctx, f.store, paths, &start, &end); err != nil {
		return nil, err
	}

	targetRecords := reader.Count()
	if targetRecords == 0 {
		return emptyResult(), nil
	}

	reader.Downsample(p.Strategy, p.NumberRecords)
	resultRecords := reader.Count()

	levelNumber := meta.Levels.ByName[level].Number
	precision := float64(resultRecords) / float64(targetRecords) *
		float64(levelNumber) / float64(meta.RawNumber)

	log.Debugf("Fetch %s: level=%s slices=%d target=%d result=%d precision=%f",
		file, level, len(paths), targetRecords, resultRecords, precision)

	return &FetchResult{Data: reader.FormatResponse(), Precision: precision, SlicesRead: len(paths)}, nil
}

// selectLevel picks the smallest-frequency level whose frequency still
// reaches the required one. Level frequencies are non-increasing with
// depth, so this is a reverse binary search; LTTB has no persisted
// levels and always reads level 0.
func (f *Fetcher) selectLevel(meta *FileMeta, p FetchParams, start, end int64) string {
	if !p.Strategy.Persisted() {
		return level0
	}

	required := float64(p.NumberRecords) / float64(end-start)

	frequencies := make([]float64, len(meta.Levels.Names))
	for i, name := range meta.Levels.Names {
		frequencies[i] = meta.Levels.ByName[name].Frequency
	}

	idx := util.SearchDescending(frequencies, required)
	if idx < 0 {
		idx = 0
	}
	return meta.Levels.Names[idx]
}

func (f *Fetcher) fileMeta(ctx context.Context, file string) (*FileMeta, bool, error) {
	key := "meta:" + file
	if f.cache != nil {
		if v := f.cache.Get(key, nil); v != nil {
			return v.(*FileMeta), true, nil
		}
	}

	meta, ok, err := LoadFileMeta(ctx, f.store, f.root, file)
	if err != nil || !ok {
		return nil, ok, err
	}

	if f.cache != nil {
		f.cache.Get(key, func() (interface{}, time.Duration, int) {
			return meta, metadataTTL, 256 + 128*len(meta.Levels.Names)
		})
	}
	return meta, true, nil
}

func (f *Fetcher) sliceIndex(ctx context.Context, file, strategyDir, level string) (SliceIndex, bool, error) {
	key := "index:" + file + "/" + strategyDir + "/" + level
	if f.cache != nil {
		if v := f.cache.Get(key, nil); v != nil {
			return v.(SliceIndex), true, nil
		}
	}

	index, ok, err := LoadSliceIndex(ctx, f.store, f.root, file, strategyDir, level)
	if err != nil || !ok {
		return nil, ok, err
	}

	if f.cache != nil {
		f.cache.Get(key, func() (interface{}, time.Duration, int) {
			return index, metadataTTL, 64 * len(index)
		})
	}
	return index, true, nil
}
