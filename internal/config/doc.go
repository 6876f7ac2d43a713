// Package config loads and watches the exporter configuration file.
//
// Top-level types:
//   - Config{Exporter, API} — full config tree parsed from YAML
//   - ExporterConfig — port, scrape_interval, request_delay, per-cycle lookup
//     caps, cadences, cache sizes, failed-lookup policy
//   - APIConfig — base_url, user_agent, auth
//   - AuthConfig — cookie_env, username, password_env; Cookie() and
//     Password() resolve from environment variables
//
// Load(path) reads the YAML file, applies defaults (port 9101, 2m cycles,
// 1.5s request delay, 40/20 lookup caps, cadences 5/3, cache sizes
// 1000/500), then validates ranges and enums. An empty file is a valid
// configuration — every field has a default and credentials come from the
// environment at authentication time.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after a rename.
package config
