// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package preprocessor orchestrates pyramid builds: it runs the core
// builder against the configured store, updates the file registry and
// feeds the instrumentation. Both the REST trigger and the background
// services go through here.
package preprocessor

import (
	"context"
	"time"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/internal/config"
	"github.com/ClusterCockpit/pdg-backend/internal/metrics"
	"github.com/ClusterCockpit/pdg-backend/internal/pyramid"
	"github.com/ClusterCockpit/pdg-backend/internal/repository"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
)

// DefaultParams are the configured preprocessing knobs.
func DefaultParams() pyramid.PreprocessParams {
	return pyramid.PreprocessParams{
		NumberPerSlice:     config.Keys.NumberPerSlice,
		DownsampleFactor:   config.Keys.DownsampleFactor,
		MinimumNumberLevel: config.Keys.MinimumNumberLevel,
	}
}

// Run builds the pyramid of one raw blob and records the result in
// the file registry. At-most-one concurrent run per file is assumed
// to be enforced by the caller.
func Run(ctx context.Context, rawKey string, params pyramid.PreprocessParams) error {
	begin := time.Now()
	store := blobstore.GetHandle()

	err := pyramid.NewPreprocessor(store, config.Keys.PreprocessRoot, rawKey, params).Run(ctx)
	metrics.ObservePreprocess(begin, err)
	if err != nil {
		log.Errorf("Preprocess of '%s' failed: %v", rawKey, err)
		return err
	}

	file := pyramid.FileBaseName(rawKey)
	meta, ok, err := pyramid.LoadFileMeta(ctx, store, config.Keys.PreprocessRoot, file)
	if err != nil || !ok {
		log.Warnf("Preprocess of '%s': committed metadata not readable back: %v", rawKey, err)
		return nil
	}

	repository.GetFileRepository().MarkPreprocessed(file, meta.RawNumber, len(meta.Levels.Names))
	return nil
}

// IsPreprocessed checks the commit marker of one raw blob.
func IsPreprocessed(ctx context.Context, rawKey string) (bool, error) {
	file := pyramid.FileBaseName(rawKey)
	_, ok, err := pyramid.LoadFileMeta(ctx, blobstore.GetHandle(), config.Keys.PreprocessRoot, file)
	return ok, err
}
