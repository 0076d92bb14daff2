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

// SlicesReader assembles a private channel group from a set of slice
// blobs, filtered by an optional time window. It lives for one query.
type SlicesReader struct {
	records *schema.ChannelGroup
}

func NewSlicesReader() *SlicesReader {
	return &SlicesReader{records: schema.NewChannelGroup()}
}

// Read loads the given slice blobs in order and keeps the records
// inside [start, end]. A nil bound leaves that side open.
func (r *SlicesReader) Read(ctx context.Context, store blobstore.Store, paths []string, start, end *int64) error {
	for _, path := range paths {
		data, err := store.Get(ctx, path)
		if err != nil {
			return err
		}

		for _, line := range strings.Split(string(data), "\n") {
			rec, ok, err := schema.ParseRecord(line)
			if err != nil {
				return fmt.Errorf("slice %s: %w", path, err)
			}
			if !ok {
				continue
			}
			if start != nil && rec.Time < *start {
				continue
			}
			if end != nil && rec.Time > *end {
				continue
			}
			r.records.Append(rec)
		}
	}

	return nil
}

// Count is the total number of records across channels.
func (r *SlicesReader) Count() int {
	return r.records.Total()
}

// Downsample reduces each channel to at most maxRecords records using
// the given strategy.
func (r *SlicesReader) Downsample(strategy schema.Strategy, maxRecords int) {
	for _, name := range r.records.Channels() {
		r.records.SetRecords(name, downsample.ByTarget(strategy, r.records.Records(name), maxRecords))
	}
}

// FormatResponse renders the assembled channels for the HTTP payload.
func (r *SlicesReader) FormatResponse() []schema.ChannelSeries {
	return schema.FormatSeries(r.records)
}
