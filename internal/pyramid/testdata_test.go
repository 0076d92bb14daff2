// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"context"
	"testing"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
)

func init() {
	log.Init("err", true)
}

const testRoot = "mld-preprocess"
const testRawKey = "power-data-raw/ppx.csv"

// syntheticRecords builds n ascending single-channel records with the
// given time step. Values equal the record index.
func syntheticRecords(n int, step int64) []schema.Record {
	records := make([]schema.Record, n)
	for i := range records {
		records[i] = schema.Record{Time: int64(i) * step, Value: float64(i), Channel: "PPX_ASYS"}
	}
	return records
}

// seedRaw writes records as the raw CSV blob and returns the store.
func seedRaw(t *testing.T, records []schema.Record) *blobstore.MemStore {
	t.Helper()
	store := blobstore.NewMemStore()
	if err := store.Put(context.Background(), testRawKey, []byte(schema.EncodeRecords(records))); err != nil {
		t.Fatal(err)
	}
	return store
}

// buildPyramid runs a full preprocess over records.
func buildPyramid(t *testing.T, records []schema.Record, params PreprocessParams) *blobstore.MemStore {
	t.Helper()
	store := seedRaw(t, records)
	p := NewPreprocessor(store, testRoot, testRawKey, params)
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	return store
}
