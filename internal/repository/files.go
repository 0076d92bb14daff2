// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/jmoiron/sqlx"
)

const filesSchema = `
CREATE TABLE IF NOT EXISTS files (
    name TEXT PRIMARY KEY,
    raw_number INTEGER NOT NULL,
    levels INTEGER NOT NULL,
    preprocessed_at INTEGER NOT NULL
);
`

// FileRow is one registry entry. The registry is bookkeeping only;
// the committed metadata blob stays the authoritative signal that a
// file was preprocessed.
type FileRow struct {
	Name           string `db:"name" json:"name"`
	RawNumber      int64  `db:"raw_number" json:"rawNumber"`
	Levels         int    `db:"levels" json:"levels"`
	PreprocessedAt int64  `db:"preprocessed_at" json:"preprocessedAt"`
}

type FileRepository struct {
	DB *sqlx.DB
}

var (
	fileRepoOnce     sync.Once
	fileRepoInstance *FileRepository
)

func GetFileRepository() *FileRepository {
	fileRepoOnce.Do(func() {
		fileRepoInstance = &FileRepository{DB: GetConnection().DB}
	})
	return fileRepoInstance
}

// MarkPreprocessed upserts the registry row after a pyramid commit.
func (r *FileRepository) MarkPreprocessed(name string, rawNumber int64, levels int) error {
	_, err := r.DB.Exec(
		`INSERT INTO files (name, raw_number, levels, preprocessed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET raw_number=excluded.raw_number,
		 levels=excluded.levels, preprocessed_at=excluded.preprocessed_at`,
		name, rawNumber, levels, time.Now().Unix())
	if err != nil {
		log.Warnf("Error while marking file '%s' preprocessed: %v", name, err)
	}
	return err
}

// Find returns the registry row of one file, nil if absent.
func (r *FileRepository) Find(name string) (*FileRow, error) {
	row := &FileRow{}
	err := r.DB.Get(row, `SELECT name, raw_number, levels, preprocessed_at FROM files WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// All returns every registry row ordered by name.
func (r *FileRepository) All() ([]FileRow, error) {
	rows := []FileRow{}
	if err := r.DB.Select(&rows, `SELECT name, raw_number, levels, preprocessed_at FROM files ORDER BY name`); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete drops one registry row, e.g. when its pyramid was removed
// from the store.
func (r *FileRepository) Delete(name string) error {
	_, err := r.DB.Exec(`DELETE FROM files WHERE name = ?`, name)
	return err
}
