// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the vault command-line application.
//
// [App] wires the local key store, the vault state machine, the
// zero-knowledge codec and the sync transport for one process. The cobra
// command tree built by [NewRootCommand] drives it. Every command that
// needs the session key unlocks the vault itself and locks it again on exit.
package client
