// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Command sitepulse sends events to a SitePulse server and reads them back.
//
//	sitepulse track pageview /pricing --site my-site
//	sitepulse track event signup --data '{"plan":"pro"}' --site my-site
//	sitepulse track webvital LCP 1820.5 --id v3-1 --label web-vital --site my-site
//	sitepulse events my-site --limit 20
//
// Track commands go through the tracker SDK and wait for delivery up to
// --timeout before exiting. Defaults for --endpoint, --site and --server are
// read from SITEPULSE_ENDPOINT, SITEPULSE_SITE_ID and SITEPULSE_SERVER.
package main
