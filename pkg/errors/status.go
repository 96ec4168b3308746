/*
 * Copyright 2025 The Tether Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import "fmt"

// StatusCode classifies an error. The numbering follows the Connect
// protocol codes so the values stay meaningful if an RPC surface is
// added later.
type StatusCode int

const (
	// ErrCodeInvalidArgument indicates that the caller specified an
	// invalid argument regardless of the state of the system.
	ErrCodeInvalidArgument StatusCode = 3

	// ErrCodeNotFound indicates that a requested entity was not found.
	ErrCodeNotFound StatusCode = 5

	// ErrCodeAlreadyExists indicates that an entity the caller attempted
	// to create already exists.
	ErrCodeAlreadyExists StatusCode = 6

	// ErrCodeResourceExhausted indicates that a quota or retry budget
	// has been exhausted.
	ErrCodeResourceExhausted StatusCode = 8

	// ErrCodeFailedPrecondition indicates that the system is not in a
	// state required for the operation's execution.
	ErrCodeFailedPrecondition StatusCode = 9

	// ErrCodeInternal indicates that an invariant expected by the
	// underlying system has been broken.
	ErrCodeInternal StatusCode = 13

	// ErrCodeUnavailable indicates that a dependency is currently
	// unreachable. Callers can back off and retry.
	ErrCodeUnavailable StatusCode = 14

	// ErrCodeUnauthenticated indicates that the request does not have a
	// valid identity attached.
	ErrCodeUnauthenticated StatusCode = 16
)

// String returns the string representation of the status code.
func (c StatusCode) String() string {
	switch c {
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeAlreadyExists:
		return "already_exists"
	case ErrCodeResourceExhausted:
		return "resource_exhausted"
	case ErrCodeFailedPrecondition:
		return "failed_precondition"
	case ErrCodeInternal:
		return "internal"
	case ErrCodeUnavailable:
		return "unavailable"
	case ErrCodeUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// IsRetryable reports whether the failure class is worth retrying
// without caller intervention.
func (c StatusCode) IsRetryable() bool {
	switch c {
	case ErrCodeUnavailable, ErrCodeInternal:
		return true
	default:
		return false
	}
}
