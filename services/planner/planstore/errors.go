// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planstore

import "errors"

var (
	// ErrPlanNotFound is returned when no record exists for a key.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrStoreClosed is returned by every operation after Close.
	ErrStoreClosed = errors.New("plan store is closed")

	// ErrCorruptRecord is returned when a stored record fails its checksum
	// or cannot be decoded.
	ErrCorruptRecord = errors.New("plan record corrupted")

	// ErrInvalidRecord is returned by Put for a record without a
	// fingerprint.
	ErrInvalidRecord = errors.New("plan record has no fingerprint")
)
