// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"context"
	"testing"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
)

func TestSlicesReaderWindow(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemStore()
	store.Put(ctx, "s0.csv", []byte("100,1,A\n200,2,A\n300,3,B"))
	store.Put(ctx, "s1.csv", []byte("400,4,A\n500,5,B"))

	start, end := int64(200), int64(400)
	reader := NewSlicesReader()
	if err := reader.Read(ctx, store, []string{"s0.csv", "s1.csv"}, &start, &end); err != nil {
		t.Fatal(err)
	}

	if reader.Count() != 3 {
		t.Fatalf("expected 3 records inside [200, 400], got %d", reader.Count())
	}

	payload := reader.FormatResponse()
	if len(payload) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(payload))
	}
}

func TestSlicesReaderOpenBounds(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemStore()
	store.Put(ctx, "s0.csv", []byte("100,1,A\n200,2,A\n300,3,A"))

	reader := NewSlicesReader()
	if err := reader.Read(ctx, store, []string{"s0.csv"}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if reader.Count() != 3 {
		t.Fatalf("open bounds must keep everything, got %d", reader.Count())
	}
}

func TestSlicesReaderDownsample(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemStore()
	store.Put(ctx, "s0.csv", []byte(schema.EncodeRecords(syntheticRecords(10, 100))))

	reader := NewSlicesReader()
	if err := reader.Read(ctx, store, []string{"s0.csv"}, nil, nil); err != nil {
		t.Fatal(err)
	}

	reader.Downsample(schema.StrategyMax, 4)
	if reader.Count() > 4 {
		t.Fatalf("expected at most 4 records, got %d", reader.Count())
	}
}

func TestSlicesReaderMissingSlice(t *testing.T) {
	reader := NewSlicesReader()
	err := reader.Read(context.Background(), blobstore.NewMemStore(), []string{"absent.csv"}, nil, nil)
	if err == nil {
		t.Fatal("expected an error for a missing slice blob")
	}
}
