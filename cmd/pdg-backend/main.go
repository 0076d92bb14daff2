// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/internal/config"
	"github.com/ClusterCockpit/pdg-backend/internal/repository"
	"github.com/ClusterCockpit/pdg-backend/internal/runtimeEnv"
	"github.com/ClusterCockpit/pdg-backend/internal/taskmanager"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
)

func main() {
	var flagConfigFile, flagLogLevel string
	var flagLogDateTime bool
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Overwrite the global config options by those specified in `config.json`")
	flag.StringVar(&flagLogLevel, "loglevel", "info", "Sets the logging level: `[debug, info, warn, err, fatal, crit]`")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "Set this flag to add date and time to log messages")
	flag.Parse()

	log.Init(flagLogLevel, flagLogDateTime)

	if err := runtimeEnv.LoadEnv("./.env"); err != nil && !os.IsNotExist(err) {
		log.Fatalf("parsing './.env' file failed: %s", err.Error())
	}

	config.Init(flagConfigFile)

	repository.Connect(config.Keys.DB)

	if err := blobstore.Init(config.Keys.Store); err != nil {
		log.Fatalf("Object store init failed: %s", err.Error())
	}

	taskmanager.Start()

	var wg sync.WaitGroup

	wg.Add(1)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer wg.Done()
		<-sigs
		runtimeEnv.SystemdNotifiy(false, "Shutting down ...")

		serverShutdown()
		taskmanager.Shutdown()
	}()

	serverInit()

	wg.Add(1)
	go func() {
		defer wg.Done()
		serverStart()
	}()

	runtimeEnv.SystemdNotifiy(true, "running")
	wg.Wait()
	log.Print("Graceful shutdown completed!")
}
