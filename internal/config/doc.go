// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the LinguaTax TUI.
//
// Configuration is read from ~/.linguatax/config.toml with built-in
// defaults and LINGUATAX_* environment variable overrides. The loaded
// struct is passed into components by parameter; there is no package
// global. A fsnotify-based watcher delivers live reloads when the file
// changes on disk.
package config
