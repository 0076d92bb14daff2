// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/internal/config"
	"github.com/ClusterCockpit/pdg-backend/internal/metrics"
	"github.com/ClusterCockpit/pdg-backend/internal/preprocessor"
	"github.com/ClusterCockpit/pdg-backend/internal/pyramid"
	"github.com/ClusterCockpit/pdg-backend/internal/repository"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/ClusterCockpit/pdg-backend/pkg/lrucache"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
	"github.com/gorilla/mux"
)

// ErrEmptyName marks a request without a file name.
var ErrEmptyName = errors.New("empty file name")

type RestApi struct {
	Fetcher  *pyramid.Fetcher
	FileRepo *repository.FileRepository
}

func New() *RestApi {
	return &RestApi{
		Fetcher: pyramid.NewFetcher(
			blobstore.GetHandle(),
			config.Keys.PreprocessRoot,
			lrucache.New(16*1024*1024)),
		FileRepo: repository.GetFileRepository(),
	}
}

func (api *RestApi) MountRoutes(r *mux.Router) {
	r = r.PathPrefix("/api").Subrouter()
	r.StrictSlash(true)

	r.HandleFunc("/data", api.getData).Methods(http.MethodGet)
	r.HandleFunc("/data", api.preprocess).Methods(http.MethodPost)
	r.HandleFunc("/files", api.getFiles).Methods(http.MethodGet)
}

// ErrorResponse model
type ErrorResponse struct {
	// Statustext of Errorcode
	Status string `json:"status"`
	Error  string `json:"error"` // Error Message
}

// PreprocessApiResponse model
type PreprocessApiResponse struct {
	Message string `json:"msg"`
}

// FileApiEntry model
type FileApiEntry struct {
	Name         string `json:"name"`
	Preprocessed bool   `json:"preprocessed"`
}

func handleError(err error, statusCode int, rw http.ResponseWriter) {
	log.Warnf("REST ERROR : %s", err.Error())
	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(ErrorResponse{
		Status: http.StatusText(statusCode),
		Error:  err.Error(),
	})
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s': %w", key, err)
	}
	return v, nil
}

func int64Query(r *http.Request, key string) (*int64, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parameter '%s': %w", key, err)
	}
	return &v, nil
}

// getData answers a time-range query: at most 'number' records per
// channel, downsampled with the requested strategy.
func (api *RestApi) getData(rw http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		handleError(ErrEmptyName, http.StatusBadRequest, rw)
		return
	}

	strategyName := r.URL.Query().Get("strategy")
	if strategyName == "" {
		strategyName = "max"
	}
	strategy, err := schema.ParseStrategy(strategyName)
	if err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}

	number, err := intQuery(r, "number", config.Keys.DefaultNumberRecords)
	if err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}
	start, err := int64Query(r, "start")
	if err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}
	end, err := int64Query(r, "end")
	if err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}

	result, err := api.Fetcher.Fetch(r.Context(), name, pyramid.FetchParams{
		Strategy:      strategy,
		NumberRecords: number,
		Start:         start,
		End:           end,
	})
	if err != nil {
		metrics.ObserveFetchError(strategy.String())
		if errors.Is(err, pyramid.ErrPreprocessIncomplete) {
			handleError(err, http.StatusNotFound, rw)
		} else {
			handleError(err, http.StatusInternalServerError, rw)
		}
		return
	}

	metrics.ObserveFetch(strategy.String(), result.SlicesRead, result.Precision)

	rw.Header().Add("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(result)
}

// preprocess builds the pyramid of one raw trace. The scan service and
// the NATS subscriber call preprocessor.Run directly instead.
func (api *RestApi) preprocess(rw http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		handleError(ErrEmptyName, http.StatusBadRequest, rw)
		return
	}

	params := preprocessor.DefaultParams()
	var err error
	if params.NumberPerSlice, err = intQuery(r, "slice_size", params.NumberPerSlice); err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}
	if params.DownsampleFactor, err = intQuery(r, "downsample_factor", params.DownsampleFactor); err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}
	if params.MinimumNumberLevel, err = intQuery(r, "min_number", params.MinimumNumberLevel); err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}
	if params.NumberPerSlice < 1 || params.DownsampleFactor < 2 || params.MinimumNumberLevel < 1 {
		handleError(fmt.Errorf("invalid preprocess parameters: slice_size=%d downsample_factor=%d min_number=%d",
			params.NumberPerSlice, params.DownsampleFactor, params.MinimumNumberLevel), http.StatusBadRequest, rw)
		return
	}

	if err := preprocessor.Run(r.Context(), name, params); err != nil {
		handleError(err, http.StatusInternalServerError, rw)
		return
	}

	rw.Header().Add("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(PreprocessApiResponse{Message: "preprocess complete"})
}

// getFiles lists the raw traces under the configured prefix together
// with their preprocess state.
func (api *RestApi) getFiles(rw http.ResponseWriter, r *http.Request) {
	keys, err := blobstore.GetHandle().List(r.Context(), config.Keys.RawPrefix)
	if err != nil {
		handleError(err, http.StatusInternalServerError, rw)
		return
	}

	files := make([]FileApiEntry, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".csv") {
			continue
		}

		// The registry row is a fast path; the committed metadata blob
		// stays authoritative for files the registry has not seen.
		row, err := api.FileRepo.Find(pyramid.FileBaseName(key))
		if err != nil {
			handleError(err, http.StatusInternalServerError, rw)
			return
		}
		done := row != nil
		if !done {
			if done, err = preprocessor.IsPreprocessed(r.Context(), key); err != nil {
				handleError(err, http.StatusInternalServerError, rw)
				return
			}
		}
		files = append(files, FileApiEntry{Name: key, Preprocessed: done})
	}

	rw.Header().Add("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(files)
}
