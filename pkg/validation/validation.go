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

// Package validation provides struct and value validation with
// human-readable messages.
package validation

import (
	"fmt"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

var (
	defaultValidator = validator.New()
	defaultEn        = en.New()
	uni              = ut.New(defaultEn, defaultEn)

	trans, _ = uni.GetTranslator(defaultEn.Locale())
)

// StructError is returned when a struct fails validation. It keeps the
// failed tag so callers can branch on it.
type StructError struct {
	Field   string
	Tag     string
	Message string
}

// Error returns the translated message of the failure.
func (e StructError) Error() string {
	return e.Message
}

// RegisterValidation registers a custom validation with the given tag.
// It is intended to be called from init functions and panics on
// registration failure.
func RegisterValidation(tag string, fn validator.Func) {
	if err := defaultValidator.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// RegisterTranslation registers the message template for the given tag.
// It is intended to be called from init functions and panics on
// registration failure.
func RegisterTranslation(tag, msg string) {
	if err := defaultValidator.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
		if err := ut.Add(tag, msg, true); err != nil {
			return fmt.Errorf("add translation: %w", err)
		}
		return nil
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, fe.Field())
		return t
	}); err != nil {
		panic(err)
	}
}

// ValidateStruct validates the given struct against its `validate`
// tags and returns the first failure.
func ValidateStruct(s interface{}) error {
	if err := defaultValidator.Struct(s); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			return StructError{
				Field:   fieldErr.Field(),
				Tag:     fieldErr.Tag(),
				Message: fieldErr.Translate(trans),
			}
		}
	}

	return nil
}

// ValidateValue validates a single value against the given tag.
func ValidateValue(v interface{}, tag string) error {
	if err := defaultValidator.Var(v, tag); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			return StructError{
				Field:   fieldErr.Field(),
				Tag:     fieldErr.Tag(),
				Message: fieldErr.Translate(trans),
			}
		}
	}

	return nil
}
