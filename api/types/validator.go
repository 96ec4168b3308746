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

package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/tether-app/tether/pkg/validation"
)

func init() {
	validation.RegisterValidation("collection", func(fl validator.FieldLevel) bool {
		return Collection(fl.Field().String()).IsKnown()
	})
	validation.RegisterTranslation("collection", "{0} is not a known collection")
}

// ValidateEntity checks that the entity carries the required identity
// fields.
func ValidateEntity(entity Entity) error {
	return validation.ValidateStruct(entity)
}

// ValidateOperation checks that a queued operation is well formed.
func ValidateOperation(op *QueuedOperation) error {
	if err := validation.ValidateStruct(op); err != nil {
		return err
	}
	return validation.ValidateValue(op.Collection.String(), "collection")
}

// ValidateOptions checks that the sync options are well formed.
func ValidateOptions(opts SyncOptions) error {
	if err := validation.ValidateStruct(opts); err != nil {
		return err
	}
	for _, collection := range opts.Collections {
		if err := validation.ValidateValue(collection.String(), "collection"); err != nil {
			return err
		}
	}
	return nil
}
