/*
Copyright 2024 Inlet Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package inlet

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/inlethq/inlet/model"
)

// Rule checks one logical column of an input row. Rules are evaluated in
// order and validation stops at the first failure, so a row reports exactly
// one error.
type Rule struct {
	Field   string
	Check   func(value string) error
	Message string
}

// Validate runs the rules against a row and returns a tagged outcome. It is
// side-effect free and never panics; one bad row must never stop a batch.
func Validate(row model.InputRow, rules []Rule) model.ValidationOutcome {
	for _, rule := range rules {
		if err := rule.Check(row.Get(rule.Field)); err != nil {
			reason := rule.Message
			if reason == "" {
				reason = fmt.Sprintf("%s: %v", rule.Field, err)
			}
			return model.ValidationOutcome{
				Valid:     false,
				RowNumber: row.RowNumber,
				Reason:    reason,
			}
		}
	}
	return model.ValidationOutcome{Valid: true, RowNumber: row.RowNumber}
}

// Required fails on empty or whitespace-only values.
func Required() func(string) error {
	return func(value string) error {
		return validation.Validate(strings.TrimSpace(value), validation.Required)
	}
}

// OneOf fails unless the trimmed value is a member of the allowed set.
// Comparison is case-insensitive so status enums survive spreadsheet
// editing. Empty values pass; combine with Required when the column is
// mandatory.
func OneOf(allowed ...string) func(string) error {
	lowered := make([]interface{}, len(allowed))
	for i, a := range allowed {
		lowered[i] = strings.ToLower(a)
	}
	return func(value string) error {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			return nil
		}
		return validation.Validate(trimmed, validation.In(lowered...))
	}
}

// Email fails unless the value parses as an e-mail address.
func Email() func(string) error {
	return func(value string) error {
		return validation.Validate(strings.TrimSpace(value), validation.Required, is.EmailFormat)
	}
}

// Integer fails unless the value parses as a whole number. When min is
// non-nil the parsed value must also be at least min. Empty values pass;
// combine with Required when the column is mandatory.
func Integer(min *int) func(string) error {
	return func(value string) error {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return fmt.Errorf("must be a whole number")
		}
		if min != nil && n < *min {
			return fmt.Errorf("must be at least %d", *min)
		}
		return nil
	}
}

// Numeric fails unless the value parses as a number. When min is non-nil the
// parsed value must also be at least min. Empty values pass; combine with
// Required when the column is mandatory.
func Numeric(min *float64) func(string) error {
	return func(value string) error {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if min != nil && f < *min {
			return fmt.Errorf("must be at least %v", *min)
		}
		return nil
	}
}
