// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Package config loads server configuration with koanf.

Sources, lowest precedence first:

 1. Defaults from defaultConfig()
 2. A YAML file from CONFIG_PATH, or the first of DefaultConfigPaths that exists
 3. Environment variables listed in envMappings (HTTP_PORT, DB_DRIVER, ...)

Example config.yaml:

	server:
	  port: 8080
	  max_body_bytes: 65536
	database:
	  driver: sqlite
	  path: /data/sitepulse.db
	eventbus:
	  backend: nats
	  embedded: true
	ratelimit:
	  per_site_rps: 20
	  per_site_burst: 100

Validate runs after unmarshalling; any error aborts startup.
*/
package config
