// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitMissingFileKeepsDefaults(t *testing.T) {
	Init(filepath.Join(t.TempDir(), "nope.json"))

	if Keys.Addr != ":8080" {
		t.Errorf("addr default: got %q", Keys.Addr)
	}
	if Keys.NumberPerSlice != 100000 || Keys.DownsampleFactor != 100 {
		t.Errorf("slice defaults: %d/%d", Keys.NumberPerSlice, Keys.DownsampleFactor)
	}
	if Keys.PreprocessRoot != "mld-preprocess" {
		t.Errorf("root default: got %q", Keys.PreprocessRoot)
	}
}

func TestInitOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"addr": ":7777",
		"store": {"kind": "file", "path": "./teststore"},
		"number-per-slice": 500,
		"scan-interval": "5m"
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	Init(path)

	if Keys.Addr != ":7777" {
		t.Errorf("addr: got %q", Keys.Addr)
	}
	if Keys.NumberPerSlice != 500 {
		t.Errorf("number-per-slice: got %d", Keys.NumberPerSlice)
	}
	if Keys.ScanInterval != "5m" {
		t.Errorf("scan-interval: got %q", Keys.ScanInterval)
	}
	// Untouched keys keep their defaults.
	if Keys.DownsampleFactor != 100 {
		t.Errorf("downsample-factor: got %d", Keys.DownsampleFactor)
	}
}
