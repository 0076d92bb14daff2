// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package taskmanager

import (
	"context"
	"strings"

	"github.com/ClusterCockpit/pdg-backend/internal/config"
	"github.com/ClusterCockpit/pdg-backend/internal/preprocessor"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/nats-io/nats.go"
)

var natsConn *nats.Conn

// RegisterNatsService subscribes to upload events. The message payload
// is the raw blob key, mirroring the name field of the original bucket
// notification.
func RegisterNatsService(cfg *config.NatsConfig) {
	subject := cfg.Subject
	if subject == "" {
		subject = "raw.uploaded"
	}

	nc, err := nats.Connect(cfg.Address)
	if err != nil {
		log.Errorf("NATS connect to '%s' failed: %v", cfg.Address, err)
		return
	}
	natsConn = nc

	_, err = nc.Subscribe(subject, func(m *nats.Msg) {
		key := strings.TrimSpace(string(m.Data))
		if key == "" {
			return
		}

		log.Infof("Upload event: preprocessing '%s'", key)
		preprocessor.Run(context.Background(), key, preprocessor.DefaultParams())
	})
	if err != nil {
		log.Errorf("NATS subscribe to '%s' failed: %v", subject, err)
		return
	}

	log.Infof("Subscribed to NATS subject '%s'", subject)
}

func ShutdownNatsService() {
	if natsConn != nil {
		natsConn.Drain()
		natsConn = nil
	}
}
