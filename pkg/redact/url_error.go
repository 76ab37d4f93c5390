// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact strips credentials from values that end up in logs.
package redact

import (
	"errors"
	"net/url"
	"strings"
)

var sensitiveParams = []string{
	"apikey",
	"api_key",
	"passkey",
	"password",
	"token",
	"secret",
}

// URLError returns err with any embedded url.Error URL scrubbed of
// sensitive query parameters. Non-URL errors pass through unchanged.
func URLError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErr.Op,
		URL: URLString(urlErr.URL),
		Err: urlErr.Err,
	}
}

// URLString scrubs sensitive query parameters from a raw URL string.
// Unparseable input is returned as-is.
func URLString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	changed := false
	for key := range q {
		if isSensitive(key) {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, p := range sensitiveParams {
		if key == p {
			return true
		}
	}
	return false
}
