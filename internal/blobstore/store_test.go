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
	"testing"

	"github.com/ClusterCockpit/pdg-backend/pkg/log"
)

func init() {
	log.Init("err", true)
}

// Both backends must satisfy the same contract.
func stores(t *testing.T) map[string]Store {
	fsa := &FsStore{}
	cfg := fmt.Sprintf(`{"path": %q}`, t.TempDir())
	if err := fsa.Init(json.RawMessage(cfg)); err != nil {
		t.Fatal(err)
	}

	return map[string]Store{
		"fs":     fsa,
		"memory": NewMemStore(),
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "dir/blob.csv", []byte("hello")); err != nil {
				t.Fatal(err)
			}

			data, err := store.Get(ctx, "dir/blob.csv")
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "hello" {
				t.Errorf("got %q", data)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if _, err := store.GetRange(ctx, "nope", 0, 10); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestGetRange(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "blob", []byte("0123456789")); err != nil {
				t.Fatal(err)
			}

			data, err := store.GetRange(ctx, "blob", 2, 5)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "2345" {
				t.Errorf("inclusive range: got %q", data)
			}

			// Ranges past the end are truncated.
			data, err = store.GetRange(ctx, "blob", 8, 100)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "89" {
				t.Errorf("truncated range: got %q", data)
			}

			// A range starting at or past the end is the stream's
			// termination signal.
			if _, err := store.GetRange(ctx, "blob", 10, 20); !errors.Is(err, ErrRangeNotSatisfiable) {
				t.Errorf("expected ErrRangeNotSatisfiable, got %v", err)
			}
		})
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := store.Exists(ctx, "blob")
			if err != nil || ok {
				t.Errorf("expected false, got %v/%v", ok, err)
			}

			store.Put(ctx, "blob", []byte("x"))
			ok, err = store.Exists(ctx, "blob")
			if err != nil || !ok {
				t.Errorf("expected true, got %v/%v", ok, err)
			}
		})
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store.Put(ctx, "raw/b.csv", []byte("x"))
			store.Put(ctx, "raw/a.csv", []byte("x"))
			store.Put(ctx, "other/c.csv", []byte("x"))

			keys, err := store.List(ctx, "raw/")
			if err != nil {
				t.Fatal(err)
			}
			if len(keys) != 2 || keys[0] != "raw/a.csv" || keys[1] != "raw/b.csv" {
				t.Errorf("got %v", keys)
			}
		})
	}
}
