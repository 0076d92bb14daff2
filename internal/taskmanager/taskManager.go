// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package taskmanager runs the background services that replace the
// original bucket-upload trigger: a periodic scan of the raw prefix
// and an optional NATS upload-event subscriber.
package taskmanager

import (
	"github.com/ClusterCockpit/pdg-backend/internal/config"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/go-co-op/gocron/v2"
)

var s gocron.Scheduler

func Start() {
	var err error
	s, err = gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Taskmanager Start: Could not create gocron scheduler.\nError: %s\n", err.Error())
	}

	if config.Keys.ScanInterval != "" {
		RegisterScanService(config.Keys.ScanInterval)
	}

	if config.Keys.Nats != nil {
		RegisterNatsService(config.Keys.Nats)
	}

	s.Start()
}

func Shutdown() {
	ShutdownNatsService()
	if s != nil {
		s.Shutdown()
	}
}
