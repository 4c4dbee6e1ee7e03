// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"testing"
)

func TestValidateFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		fp      string
		wantErr bool
	}{
		{"valid", "0123456789abcdef", false},
		{"all digits", "1234567890123456", false},

		{"empty", "", true},
		{"uppercase", "0123456789ABCDEF", true},
		{"too short", "0123456789abcde", true},
		{"too long", "0123456789abcdef0", true},
		{"separator", "0123456789abcde:", true},
		{"prefix wildcard", "plan:", true},
		{"non hex", "0123456789abcdeg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFingerprint(tt.fp)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFingerprint(%q) error = %v, wantErr %v", tt.fp, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFingerprint(t *testing.T) {
	got, err := SanitizeFingerprint("  0123456789ABCDEF\n")
	if err != nil {
		t.Fatalf("SanitizeFingerprint() error = %v", err)
	}
	if got != "0123456789abcdef" {
		t.Errorf("SanitizeFingerprint() = %q", got)
	}

	if _, err := SanitizeFingerprint("nope"); err == nil {
		t.Error("expected an error for an invalid fingerprint")
	}
}
