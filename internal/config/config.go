// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/ClusterCockpit/pdg-backend/pkg/log"
)

// NatsConfig holds the connection settings of the optional
// upload-event subscriber.
type NatsConfig struct {
	Address string `json:"address"`
	Subject string `json:"subject"`
}

// ProgramConfig is the global configuration document. Defaults below
// can be overridden by a JSON config file.
type ProgramConfig struct {
	// Address where the http (or https) server will listen on (for example: 'localhost:80').
	Addr string `json:"addr"`

	// Drop root permissions once .env was read and the port was taken.
	User  string `json:"user"`
	Group string `json:"group"`

	// Object store backend, e.g. {"kind":"file","path":"./var/store"}
	// or {"kind":"s3","bucket":...}.
	Store json.RawMessage `json:"store"`

	// Root directory of preprocessed pyramids inside the store.
	PreprocessRoot string `json:"preprocess-root"`

	// Prefix under which raw CSV traces are uploaded.
	RawPrefix string `json:"raw-prefix"`

	// Sqlite file holding the preprocessed-files registry.
	DB string `json:"db"`

	// Records per slice (S).
	NumberPerSlice int `json:"number-per-slice"`

	// Reduction factor between adjacent levels (F).
	DownsampleFactor int `json:"downsample-factor"`

	// Minimum record count a level must keep to exist (M).
	MinimumNumberLevel int `json:"minimum-number-level"`

	// Default per-channel point budget of a fetch.
	DefaultNumberRecords int `json:"default-number-records"`

	// Interval of the raw-bucket scan service; empty disables it.
	ScanInterval string `json:"scan-interval"`

	// Optional NATS upload-event subscriber.
	Nats *NatsConfig `json:"nats"`

	// If both are set, serve HTTPS using those certificates.
	HttpsCertFile string `json:"https-cert-file"`
	HttpsKeyFile  string `json:"https-key-file"`
}

var Keys ProgramConfig = ProgramConfig{
	Addr:                 ":8080",
	Store:                json.RawMessage(`{"kind":"file","path":"./var/store"}`),
	PreprocessRoot:       "mld-preprocess",
	RawPrefix:            "power-data-raw",
	DB:                   "./var/files.db",
	NumberPerSlice:       100000,
	DownsampleFactor:     100,
	MinimumNumberLevel:   600,
	DefaultNumberRecords: 600,
}

// Init loads the config file if it exists, validates it against the
// embedded schema and merges it over the defaults.
func Init(flagConfigFile string) {
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Config file '%s': %v", flagConfigFile, err)
		}
		return
	}

	Validate(configSchema, raw)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		log.Fatalf("Config file '%s': %v", flagConfigFile, err)
	}
}
