// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package blobstore abstracts the object store holding raw traces and
// pyramid slices. Backends: local filesystem, S3-compatible stores and
// an in-memory store for tests and dev mode.
package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ClusterCockpit/pdg-backend/pkg/log"
)

var (
	// ErrNotFound marks a missing object.
	ErrNotFound = errors.New("blob not found")

	// ErrRangeNotSatisfiable marks a byte range starting past the end
	// of the object. It is the raw streamer's normal end-of-stream
	// signal, not a failure.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

// Store is the object-store contract. Byte ranges are inclusive on
// both ends; a shorter object truncates the result.
type Store interface {
	Init(rawConfig json.RawMessage) error

	Get(ctx context.Context, key string) ([]byte, error)

	GetRange(ctx context.Context, key string, start, end int64) ([]byte, error)

	Put(ctx context.Context, key string, data []byte) error

	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys under prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)
}

var store Store

// Init selects and initializes the process-wide store backend from
// the raw config document.
func Init(rawConfig json.RawMessage) error {
	var cfg struct {
		Kind string `json:"kind"`
	}

	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		log.Warn("Error while unmarshaling raw store config json")
		return err
	}

	switch cfg.Kind {
	case "file":
		store = &FsStore{}
	case "s3":
		store = &S3Store{}
	case "memory":
		store = NewMemStore()
	default:
		return fmt.Errorf("BLOBSTORE/BLOBSTORE > unknown store backend '%s'", cfg.Kind)
	}

	if err := store.Init(rawConfig); err != nil {
		log.Error("Error while initializing store backend")
		return err
	}
	log.Infof("Initialized '%s' store backend", cfg.Kind)

	return nil
}

func GetHandle() Store {
	return store
}
