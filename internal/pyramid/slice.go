// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/pkg/downsample"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
)

// Slice is the smallest addressable unit of a pyramid level: one CSV
// blob of records grouped by channel. Slices are written once during
// preprocessing and immutable afterwards.
type Slice struct {
	path           string
	records        *schema.ChannelGroup
	startTimestamp int64
}

func NewSlice(path string) *Slice {
	return &Slice{
		path:           path,
		records:        schema.NewChannelGroup(),
		startTimestamp: -1,
	}
}

// Read loads the slice blob and groups its records by channel. Blank
// lines are skipped silently; the start timestamp is the first parsed
// record's time.
func (s *Slice) Read(ctx context.Context, store blobstore.Store) error {
	data, err := store.Get(ctx, s.path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		rec, ok, err := schema.ParseRecord(line)
		if err != nil {
			return fmt.Errorf("slice %s: %w", s.path, err)
		}
		if !ok {
			continue
		}
		if s.startTimestamp < 0 {
			s.startTimestamp = rec.Time
		}
		s.records.Append(rec)
	}

	return nil
}

// Save flattens the channel group, sorts by time ascending and writes
// the blob. Empty slices are not written.
func (s *Slice) Save(ctx context.Context, store blobstore.Store) error {
	if s.records.Total() == 0 {
		return nil
	}
	return store.Put(ctx, s.path, []byte(schema.EncodeRecords(s.records.Flatten())))
}

// SaveRecords writes the given records verbatim, preserving their
// order. Used for level 0, which keeps the raw stream's natural
// channel-interleaved order.
func (s *Slice) SaveRecords(ctx context.Context, store blobstore.Store, records []schema.Record) error {
	if len(records) == 0 {
		return nil
	}
	return store.Put(ctx, s.path, []byte(schema.EncodeRecords(records)))
}

// Add extends the slice by all channels of the given group and
// initializes the start timestamp if unset.
func (s *Slice) Add(group *schema.ChannelGroup) {
	s.records.Merge(group)
	if s.startTimestamp < 0 {
		s.startTimestamp = group.FirstTimestamp()
	}
}

// Downsample applies the strategy per channel in place and returns
// the resulting channel group. When maxRecords is positive it takes
// precedence and the per-channel factor becomes ceil(len /
// maxRecords).
func (s *Slice) Downsample(strategy schema.Strategy, factor, maxRecords int) *schema.ChannelGroup {
	for _, name := range s.records.Channels() {
		recs := s.records.Records(name)
		if maxRecords > 0 {
			recs = downsample.ByTarget(strategy, recs, maxRecords)
		} else {
			recs = downsample.ByFactor(strategy, recs, factor)
		}
		s.records.SetRecords(name, recs)
	}
	return s.records
}

// Count is the total number of records across channels.
func (s *Slice) Count() int {
	return s.records.Total()
}

// FirstTimestamp is the earliest record time, -1 for an empty slice.
func (s *Slice) FirstTimestamp() int64 {
	if s.startTimestamp >= 0 {
		return s.startTimestamp
	}
	return s.records.FirstTimestamp()
}

// FormatResponse renders the slice for the query path.
func (s *Slice) FormatResponse() []schema.ChannelSeries {
	return schema.FormatSeries(s.records)
}
