// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps a local history of chat sessions in SQLite.
//
// The backend owns the canonical transcript; this store is a local
// mirror so previously opened documents reattach to their conversation
// without a network round trip, and so sessions can be browsed and
// exported offline. Writes happen as turns finish, never on the
// streaming path.
package storage
