// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/internal/config"
	"github.com/ClusterCockpit/pdg-backend/internal/repository"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var setupOnce sync.Once

func setup(t *testing.T) *mux.Router {
	t.Helper()
	setupOnce.Do(func() {
		log.Init("err", true)

		config.Keys.Store = json.RawMessage(`{"kind":"memory"}`)
		config.Keys.RawPrefix = "power-data-raw"
		config.Keys.PreprocessRoot = "mld-preprocess"

		require.NoError(t, blobstore.Init(config.Keys.Store))
		repository.Connect(filepath.Join(t.TempDir(), "files.db"))
	})

	router := mux.NewRouter()
	New().MountRoutes(router)
	return router
}

func seedRawTrace(t *testing.T, key string, n int) {
	t.Helper()
	records := make([]schema.Record, n)
	for i := range records {
		records[i] = schema.Record{Time: int64(i) * 95, Value: float64(i), Channel: "PPX_ASYS"}
	}
	err := blobstore.GetHandle().Put(context.Background(), key, []byte(schema.EncodeRecords(records)))
	require.NoError(t, err)
}

func doRequest(router *mux.Router, method, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestGetDataBeforePreprocess(t *testing.T) {
	router := setup(t)
	seedRawTrace(t, "power-data-raw/pending.csv", 20)

	rec := doRequest(router, http.MethodGet, "/api/data?name=power-data-raw/pending.csv&strategy=max")
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestGetDataEmptyName(t *testing.T) {
	router := setup(t)

	rec := doRequest(router, http.MethodGet, "/api/data?strategy=max")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDataUnknownStrategy(t *testing.T) {
	router := setup(t)

	rec := doRequest(router, http.MethodGet, "/api/data?name=x.csv&strategy=median")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "median", "error message should name the strategy")
}

func TestPreprocessAndFetch(t *testing.T) {
	router := setup(t)
	seedRawTrace(t, "power-data-raw/trace.csv", 20)

	rec := doRequest(router, http.MethodPost,
		"/api/data?name=power-data-raw/trace.csv&slice_size=5&downsample_factor=2&min_number=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(router, http.MethodGet,
		"/api/data?name=power-data-raw/trace.csv&strategy=max&number=4")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Data []struct {
			Name string       `json:"name"`
			Data [][2]float64 `json:"data"`
		} `json:"data"`
		Precision float64 `json:"precision"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	require.Len(t, result.Data, 1)
	assert.Equal(t, "PPX_ASYS", result.Data[0].Name)
	assert.NotEmpty(t, result.Data[0].Data)
	assert.LessOrEqual(t, len(result.Data[0].Data), 4, "at most 4 samples")
	assert.Greater(t, result.Precision, 0.0)
	assert.LessOrEqual(t, result.Precision, 1.0)
}

func TestPreprocessEmptyName(t *testing.T) {
	router := setup(t)

	rec := doRequest(router, http.MethodPost, "/api/data?slice_size=5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreprocessInvalidFactor(t *testing.T) {
	router := setup(t)
	seedRawTrace(t, "power-data-raw/badfactor.csv", 20)

	rec := doRequest(router, http.MethodPost,
		"/api/data?name=power-data-raw/badfactor.csv&downsample_factor=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestPreprocessRawMissing(t *testing.T) {
	router := setup(t)

	rec := doRequest(router, http.MethodPost, "/api/data?name=power-data-raw/ghost.csv")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetFiles(t *testing.T) {
	router := setup(t)
	seedRawTrace(t, "power-data-raw/listed.csv", 20)

	rec := doRequest(router, http.MethodPost,
		"/api/data?name=power-data-raw/listed.csv&slice_size=5&downsample_factor=2&min_number=3")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/files")
	require.Equal(t, http.StatusOK, rec.Code)

	var files []FileApiEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))

	var listed *FileApiEntry
	for i := range files {
		if files[i].Name == "power-data-raw/listed.csv" {
			listed = &files[i]
		}
	}
	require.NotNil(t, listed, "listed.csv missing from %v", files)
	assert.True(t, listed.Preprocessed, "listed.csv must be reported as preprocessed")
}
