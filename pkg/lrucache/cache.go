// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package lrucache

import (
	"sync"
	"time"
)

// ComputeValue is the closure passed to Get to compute a value on a
// cache miss. It returns the value, the duration until it expires and
// a size estimate counted against the cache's memory budget.
type ComputeValue func() (value interface{}, ttl time.Duration, size int)

type cacheEntry struct {
	key        string
	value      interface{}
	expiration time.Time
	size       int

	next, prev *cacheEntry
}

// Cache is an in-memory LRU cache with per-entry TTL and a rough
// memory budget. All methods are safe for concurrent use.
type Cache struct {
	mutex                 sync.Mutex
	maxmemory, usedmemory int
	entries               map[string]*cacheEntry
	head, tail            *cacheEntry
}

func New(maxmemory int) *Cache {
	return &Cache{
		maxmemory: maxmemory,
		entries:   map[string]*cacheEntry{},
	}
}

// Get returns the cached value for key or calls computeValue and
// stores its result. A nil computeValue turns Get into a pure lookup.
func (c *Cache) Get(key string, computeValue ComputeValue) interface{} {
	now := time.Now()

	c.mutex.Lock()
	if entry, ok := c.entries[key]; ok {
		if now.After(entry.expiration) {
			c.evictEntry(entry)
		} else {
			if entry != c.head {
				c.unlinkEntry(entry)
				c.insertFront(entry)
			}
			c.mutex.Unlock()
			return entry.value
		}
	}

	if computeValue == nil {
		c.mutex.Unlock()
		return nil
	}
	c.mutex.Unlock()

	value, ttl, size := computeValue()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Another goroutine may have raced the computation; its entry wins.
	if entry, ok := c.entries[key]; ok && !now.After(entry.expiration) {
		return entry.value
	}

	entry := &cacheEntry{
		key:        key,
		value:      value,
		expiration: now.Add(ttl),
		size:       size,
	}
	c.entries[key] = entry
	c.insertFront(entry)
	c.usedmemory += size

	for c.usedmemory > c.maxmemory && c.tail != nil {
		c.evictEntry(c.tail)
	}

	return value
}

// Del drops the entry for key if it is present.
func (c *Cache) Del(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if entry, ok := c.entries[key]; ok {
		c.evictEntry(entry)
	}
}

func (c *Cache) insertFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) unlinkEntry(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.next, e.prev = nil, nil
}

func (c *Cache) evictEntry(e *cacheEntry) {
	c.unlinkEntry(e)
	delete(c.entries, e.key)
	c.usedmemory -= e.size
}
