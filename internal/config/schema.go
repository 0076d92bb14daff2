// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

const configSchema = `{
    "type": "object",
    "properties": {
        "addr": {
            "description": "Address where the http (or https) server will listen on.",
            "type": "string"
        },
        "user": {
            "description": "Drop root permissions to this user once the port was taken.",
            "type": "string"
        },
        "group": {
            "description": "Drop root permissions to this group once the port was taken.",
            "type": "string"
        },
        "store": {
            "description": "Object store backend configuration.",
            "type": "object",
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": ["file", "s3", "memory"]
                },
                "path": { "type": "string" },
                "endpoint": { "type": "string" },
                "bucket": { "type": "string" },
                "access-key": { "type": "string" },
                "secret-key": { "type": "string" },
                "region": { "type": "string" },
                "use-path-style": { "type": "boolean" }
            },
            "required": ["kind"]
        },
        "preprocess-root": {
            "description": "Root directory of preprocessed pyramids inside the store.",
            "type": "string"
        },
        "raw-prefix": {
            "description": "Prefix under which raw CSV traces are uploaded.",
            "type": "string"
        },
        "db": {
            "description": "Sqlite file holding the preprocessed-files registry.",
            "type": "string"
        },
        "number-per-slice": {
            "description": "Records per slice.",
            "type": "integer",
            "minimum": 1
        },
        "downsample-factor": {
            "description": "Reduction factor between adjacent pyramid levels.",
            "type": "integer",
            "minimum": 2
        },
        "minimum-number-level": {
            "description": "Minimum record count a level must keep to exist.",
            "type": "integer",
            "minimum": 1
        },
        "default-number-records": {
            "description": "Default per-channel point budget of a fetch.",
            "type": "integer",
            "minimum": 1
        },
        "scan-interval": {
            "description": "Interval of the raw-bucket scan service; empty disables it.",
            "type": "string"
        },
        "nats": {
            "description": "Optional NATS upload-event subscriber.",
            "type": "object",
            "properties": {
                "address": { "type": "string" },
                "subject": { "type": "string" }
            },
            "required": ["address"]
        },
        "https-cert-file": { "type": "string" },
        "https-key-file": { "type": "string" }
    }
}`
