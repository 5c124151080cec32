// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the secret-memory
// packages: reflection walks that mimic what a debugger or naive
// serializer would see, and assertions that buffers were zeroed.
//
// Helpers take a minimal testing interface rather than *testing.T so
// they work with *testing.B and fuzz targets as well.
package testutil
