package config

// Schema is the embedded JSON Schema the manager and connector
// configuration is validated against before being decoded into Keys,
// matching the teacher's embedded-schema-string convention
// (internal/config/schema.go, pkg/nats/config.go's ConfigSchema).
const Schema = `{
    "type": "object",
    "description": "Configuration for the pipeline manager and its connectors.",
    "properties": {
        "manager-depth": {
            "description": "Management channel depth at the manager (spec default: 64).",
            "type": "integer",
            "minimum": 1
        },
        "pipeline-depth": {
            "description": "Default per-pipeline channel depth.",
            "type": "integer",
            "minimum": 1
        },
        "tick-interval-ms": {
            "description": "Tick cadence in milliseconds (spec default: 1000).",
            "type": "integer",
            "minimum": 1
        },
        "create-rate-per-sec": {
            "description": "Maximum Create acceptances per second at the manager.",
            "type": "number",
            "minimum": 0
        },
        "create-burst": {
            "description": "Burst allowance for Create acceptance.",
            "type": "integer",
            "minimum": 0
        },
        "metrics-addr": {
            "description": "Listen address for the /metrics HTTP endpoint.",
            "type": "string"
        },
        "nats": {
            "type": "object",
            "properties": {
                "address": { "type": "string" },
                "username": { "type": "string" },
                "password": { "type": "string" },
                "creds-file-path": { "type": "string" },
                "subscriptions": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "subscribe-to": { "type": "string" },
                            "cluster-tag": { "type": "string" }
                        },
                        "required": ["subscribe-to"]
                    }
                }
            }
        },
        "warehouse": {
            "type": "object",
            "properties": {
                "schema-file": { "type": "string" },
                "checkpoint-dir": { "type": "string" },
                "checkpoint-interval": { "type": "string" }
            }
        }
    }
}`
