// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// The realtime feed registry (endpoints, auth policy, static schedule and
// protobuf schema sources) is compiled in; the yaml file carries the
// deployment-specific parts: server port, reference store path, proto
// directory and the station watch list.
package config
