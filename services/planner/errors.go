// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import "errors"

var (
	// ErrNilProblem is returned when a nil problem is passed to the service.
	ErrNilProblem = errors.New("problem must not be nil")

	// ErrStoreDisabled is returned by cache operations when the service has
	// no plan store.
	ErrStoreDisabled = errors.New("plan store is not enabled")

	// ErrSourceTooLarge is returned when request sources exceed
	// ServiceConfig.MaxSourceBytes.
	ErrSourceTooLarge = errors.New("pddl source too large")

	// ErrInvalidConfig is returned by NewService for a config failing
	// validation.
	ErrInvalidConfig = errors.New("invalid service config")
)
