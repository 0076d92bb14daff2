// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemStore holds blobs in a map. It backs tests and the dev-mode
// store kind "memory".
type MemStore struct {
	mutex sync.RWMutex
	blobs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: map[string][]byte{}}
}

func (ms *MemStore) Init(rawConfig json.RawMessage) error {
	if ms.blobs == nil {
		ms.blobs = map[string][]byte{}
	}
	return nil
}

func (ms *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	data, ok := ms.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (ms *MemStore) GetRange(ctx context.Context, key string, start, end int64) ([]byte, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	data, ok := ms.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if start >= int64(len(data)) || start > end {
		return nil, fmt.Errorf("%w: %s [%d, %d]", ErrRangeNotSatisfiable, key, start, end)
	}
	if end >= int64(len(data)) {
		end = int64(len(data)) - 1
	}

	out := make([]byte, end-start+1)
	copy(out, data[start:end+1])
	return out, nil
}

func (ms *MemStore) Put(ctx context.Context, key string, data []byte) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	ms.blobs[key] = stored
	return nil
}

func (ms *MemStore) Exists(ctx context.Context, key string) (bool, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	_, ok := ms.blobs[key]
	return ok, nil
}

func (ms *MemStore) List(ctx context.Context, prefix string) ([]string, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	var keys []string
	for key := range ms.blobs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
