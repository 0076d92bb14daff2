// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/qustavo/sqlhooks/v2"
)

var (
	dbConnOnce     sync.Once
	dbConnInstance *DBConnection
)

type DBConnection struct {
	DB *sqlx.DB
}

type ctxKey string

const ctxKeyQueryBegin ctxKey = "queryBegin"

// queryHooks satisfies the sqlhooks.Hooks interface and logs every
// registry statement together with its duration on debug level.
type queryHooks struct{}

func (h *queryHooks) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	return context.WithValue(ctx, ctxKeyQueryBegin, time.Now()), nil
}

func (h *queryHooks) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	if begin, ok := ctx.Value(ctxKeyQueryBegin).(time.Time); ok {
		log.Debugf("registry query %s %q took %s", query, args, time.Since(begin))
	}
	return ctx, nil
}

// Connect opens the sqlite database holding the preprocessed-files
// registry and bootstraps its schema.
func Connect(db string) {
	dbConnOnce.Do(func() {
		sql.Register("sqlite3WithHooks", sqlhooks.Wrap(&sqlite3.SQLiteDriver{}, &queryHooks{}))
		dbHandle, err := sqlx.Open("sqlite3WithHooks", fmt.Sprintf("%s?_foreign_keys=on", db))
		if err != nil {
			log.Fatalf("sqlx.Open() error: %v", err)
		}

		// sqlite does not multithread. Having more than one connection
		// open would just mean waiting for locks.
		dbHandle.SetMaxOpenConns(1)

		if _, err := dbHandle.Exec(filesSchema); err != nil {
			log.Fatalf("files schema error: %v", err)
		}

		dbConnInstance = &DBConnection{DB: dbHandle}
	})
}

func GetConnection() *DBConnection {
	if dbConnInstance == nil {
		log.Fatalf("Database connection not initialized!")
	}

	return dbConnInstance
}
