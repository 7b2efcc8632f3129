// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

// Prompter reads secrets from the user. The caller zeroes the returned
// slice.
type Prompter interface {
	ReadSecret(prompt string) ([]byte, error)
}
