// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"reflect"
	"strings"
)

// Words returns every structurally visible integer field of v,
// recursively, the way a reflection-based dumper would see them.
// Pointers are followed; slices, maps, and channels are not, since a
// naive field dumper stops at reference types it cannot interpret.
func Words(v any) []uint64 {
	var out []uint64
	collectWords(reflect.ValueOf(v), &out)
	return out
}

func collectWords(v reflect.Value, out *[]uint64) {
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			collectWords(v.Field(i), out)
		}
	case reflect.Pointer:
		if !v.IsNil() {
			collectWords(v.Elem(), out)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		*out = append(*out, v.Uint())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		*out = append(*out, uint64(v.Int()))
	}
}

// RequireOpaqueFormatting renders v with the fmt verbs a log statement
// or debugger printout would use (%v, %+v, %#v) and fails the test if
// any rendering contains one of the forbidden substrings.
//
//	testutil.RequireOpaqueFormatting(t, handle, address, plaintext)
func RequireOpaqueFormatting(t interface {
	Helper()
	Errorf(format string, args ...any)
}, v any, forbidden ...string) {
	t.Helper()
	for _, verb := range []string{"%v", "%+v", "%#v"} {
		rendered := fmt.Sprintf(verb, v)
		for _, substring := range forbidden {
			if substring != "" && strings.Contains(rendered, substring) {
				t.Errorf("formatting with %s discloses %q: %s", verb, substring, rendered)
			}
		}
	}
}

// RequireZeroed fails the test unless every element of data is the
// zero value. Used to verify that scratch buffers and released regions
// were wiped.
func RequireZeroed[T comparable](t interface {
	Helper()
	Errorf(format string, args ...any)
}, data []T, what string) {
	t.Helper()
	var zero T
	for i, v := range data {
		if v != zero {
			t.Errorf("%s not zeroed: index %d holds %v", what, i, v)
			return
		}
	}
}
