// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided identifiers before they reach
// storage keys.
//
// Plan store keys are built by string concatenation and deleted by prefix
// scan, so an identifier with a separator or an empty one could address
// other records.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// fingerprintPattern matches a problem fingerprint: 16 lowercase hex digits.
var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// ValidateFingerprint validates a problem fingerprint.
//
// Example:
//
//	if err := validation.ValidateFingerprint(fp); err != nil {
//	    return fmt.Errorf("invalid fingerprint: %w", err)
//	}
func ValidateFingerprint(fp string) error {
	if fp == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}
	if !fingerprintPattern.MatchString(fp) {
		return fmt.Errorf("invalid fingerprint format: %q (must be 16 lowercase hex digits)", fp)
	}
	return nil
}

// SanitizeFingerprint trims and lowercases fp, then validates it.
func SanitizeFingerprint(fp string) (string, error) {
	fp = strings.ToLower(strings.TrimSpace(fp))
	if err := ValidateFingerprint(fp); err != nil {
		return "", err
	}
	return fp, nil
}
