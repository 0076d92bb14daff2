// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package taskmanager

import (
	"context"
	"strings"
	"time"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/internal/config"
	"github.com/ClusterCockpit/pdg-backend/internal/preprocessor"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/go-co-op/gocron/v2"
)

// RegisterScanService periodically lists the raw prefix and builds
// the pyramid of every trace that has no commit marker yet. It is the
// safety net behind the event-driven triggers.
func RegisterScanService(interval string) {
	d, err := time.ParseDuration(interval)
	if err != nil {
		log.Warnf("Config 'scan-interval' (%q) is not a duration, scan service disabled: %v", interval, err)
		return
	}
	if d <= 0 {
		log.Warnf("Config 'scan-interval' (%q) must be positive, scan service disabled", interval)
		return
	}

	log.Info("Register raw-bucket scan service")

	s.NewJob(gocron.DurationJob(d),
		gocron.NewTask(
			func() {
				ctx := context.Background()
				keys, err := blobstore.GetHandle().List(ctx, config.Keys.RawPrefix)
				if err != nil {
					log.Warnf("Scan: listing raw prefix failed: %v", err)
					return
				}

				for _, key := range keys {
					if !strings.HasSuffix(key, ".csv") {
						continue
					}

					done, err := preprocessor.IsPreprocessed(ctx, key)
					if err != nil {
						log.Warnf("Scan: checking '%s' failed: %v", key, err)
						continue
					}
					if done {
						continue
					}

					log.Infof("Scan: preprocessing new raw file '%s'", key)
					preprocessor.Run(ctx, key, preprocessor.DefaultParams())
				}
			}))
}
