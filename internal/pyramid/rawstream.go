// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
)

// sizeOneLine is the byte-size heuristic used to pick range-read
// windows: one fetch aims at roughly numberPerSlice lines.
const sizeOneLine = 50

// RawStreamer pulls an unbounded raw CSV blob through successive
// byte-range reads and emits it in slices of numberPerSlice records
// (the last one may be shorter). A record bisected by a range
// boundary is stitched from the carry of the previous fetch.
type RawStreamer struct {
	store          blobstore.Store
	key            string
	numberPerSlice int

	filePointer int64
	carry       []string
	eof         bool
}

func NewRawStreamer(store blobstore.Store, key string, numberPerSlice int) *RawStreamer {
	return &RawStreamer{
		store:          store,
		key:            key,
		numberPerSlice: numberPerSlice,
	}
}

// ReadNextSlice returns the next numberPerSlice records of the raw
// blob. It fails with blobstore.ErrNotFound if the blob is absent and
// with schema.ErrBadRecord on unparseable lines; range exhaustion is
// handled internally as the end-of-stream signal.
func (rs *RawStreamer) ReadNextSlice(ctx context.Context) ([]schema.Record, error) {
	lines := rs.carry
	rs.carry = nil

	for !rs.eof && len(lines) <= rs.numberPerSlice {
		window := int64(rs.numberPerSlice * sizeOneLine)
		data, err := rs.store.GetRange(ctx, rs.key, rs.filePointer, rs.filePointer+window)
		if errors.Is(err, blobstore.ErrRangeNotSatisfiable) {
			rs.eof = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("raw stream %s: %w", rs.key, err)
		}

		raw := strings.Split(string(data), "\n")
		// The range boundary may have bisected the previous fetch's
		// last line; glue it onto the first line of this one.
		if len(lines) > 0 {
			raw[0] = lines[len(lines)-1] + raw[0]
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, raw...)
		rs.filePointer += int64(len(data))
	}

	records := make([]schema.Record, 0, rs.numberPerSlice)
	for i, line := range lines {
		if len(records) == rs.numberPerSlice {
			rs.carry = lines[i:]
			break
		}
		rec, ok, err := schema.ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("raw stream %s: %w", rs.key, err)
		}
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// Readable reports whether another ReadNextSlice call can still yield
// records.
func (rs *RawStreamer) Readable() bool {
	return !rs.eof || len(rs.carry) > 0
}
