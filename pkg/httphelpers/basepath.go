// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package httphelpers provides small HTTP utilities shared by clients
// and the server.
package httphelpers

import "strings"

// NormalizeBasePath canonicalizes a configured base path: trimmed, a
// single leading slash, no trailing slash. Root and empty both yield "".
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// JoinBasePath joins a base path and a suffix into an absolute path.
func JoinBasePath(basePath, suffix string) string {
	base := NormalizeBasePath(basePath)
	suffix = strings.TrimPrefix(suffix, "/")

	if suffix == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + suffix
}
