/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestChain(t *testing.T) {
	t.Run("With all errors", func(t *testing.T) {
		err := New().
			AddAssertion(false, "first").
			AddValidator(NewPositiveValidator("workers", 0)).
			AddValidator(NewRangeValidator("zoom", 25, 0, 24)).
			Validate()
		require.Error(t, err)
		violations := multierr.Errors(err)
		require.Len(t, violations, 3)
		assert.EqualError(t, violations[0], "first")
		assert.EqualError(t, violations[1], "workers must be positive, got 0")
		assert.EqualError(t, violations[2], "zoom must be within [0, 24], got 25")
	})
	t.Run("With a validator func", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := New().
			AddValidator(ValidatorFunc(func() error { return sentinel })).
			AddAssertion(true, "unused").
			Validate()
		assert.ErrorIs(t, err, sentinel)
		assert.Len(t, multierr.Errors(err), 1)
	})
	t.Run("With no violations", func(t *testing.T) {
		err := New().
			AddAssertion(true, "unused").
			AddValidator(NewPositiveValidator("timeout", time.Second)).
			AddValidator(NewRangeValidator("ratio", 0.5, 0.0, 1.0)).
			Validate()
		assert.NoError(t, err)
	})
	t.Run("With an empty chain", func(t *testing.T) {
		assert.NoError(t, New().Validate())
	})
}
