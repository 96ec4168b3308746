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

// Package errors provides structured errors with status codes so that
// callers can react to the class of a failure without matching on
// message strings.
package errors

import (
	"errors"
)

// StatusError is an error that carries a status code and an optional
// machine-readable code string.
type StatusError interface {
	error
	Status() StatusCode
	Code() string
	WithCode(code string) StatusError
}

type statusError struct {
	err    error
	status StatusCode
	code   string
}

// Error returns the error message.
func (e statusError) Error() string {
	return e.err.Error()
}

// Status returns the status code of the error.
func (e statusError) Status() StatusCode {
	return e.status
}

// Code returns the machine-readable code of the error.
func (e statusError) Code() string {
	return e.code
}

// Unwrap returns the underlying error.
func (e statusError) Unwrap() error {
	return e.err
}

// WithCode returns a copy of the error with the given code.
func (e statusError) WithCode(code string) StatusError {
	return statusError{
		err:    e.err,
		status: e.status,
		code:   code,
	}
}

func newStatusError(message string, status StatusCode) StatusError {
	return statusError{
		err:    errors.New(message),
		status: status,
	}
}

// NotFound creates an error for a resource that does not exist.
func NotFound(message string) StatusError {
	return newStatusError(message, ErrCodeNotFound)
}

// InvalidArgument creates an error for malformed caller input.
func InvalidArgument(message string) StatusError {
	return newStatusError(message, ErrCodeInvalidArgument)
}

// AlreadyExists creates an error for a resource that already exists.
func AlreadyExists(message string) StatusError {
	return newStatusError(message, ErrCodeAlreadyExists)
}

// FailedPrecond creates an error for an operation rejected because the
// system is not in the required state.
func FailedPrecond(message string) StatusError {
	return newStatusError(message, ErrCodeFailedPrecondition)
}

// ResourceExhausted creates an error for an exceeded quota or retry budget.
func ResourceExhausted(message string) StatusError {
	return newStatusError(message, ErrCodeResourceExhausted)
}

// Unauthenticated creates an error for missing or invalid identity.
func Unauthenticated(message string) StatusError {
	return newStatusError(message, ErrCodeUnauthenticated)
}

// Unavailable creates an error for a temporarily unreachable dependency.
func Unavailable(message string) StatusError {
	return newStatusError(message, ErrCodeUnavailable)
}

// Internal creates an error for a broken invariant.
func Internal(message string) StatusError {
	return newStatusError(message, ErrCodeInternal)
}

// StatusOf extracts the status code from err, unwrapping as needed.
// It returns 0 when err carries no status.
func StatusOf(err error) StatusCode {
	if err == nil {
		return 0
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status()
	}

	return 0
}

// IsStatus reports whether err carries the given status code.
func IsStatus(err error, code StatusCode) bool {
	return StatusOf(err) == code
}

// CodeOf extracts the machine-readable code from err, unwrapping as
// needed. It returns "" when err carries no code.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code()
	}

	return ""
}
