// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	errNoAddress = errors.New("no http address configured")
	errNoHandler = errors.New("no http handler provided")
)
