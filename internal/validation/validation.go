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

// Package validation checks configuration values and reports every
// violation found at once.
package validation

import (
	"errors"

	"go.uber.org/multierr"
)

// Validator reports a violated constraint, if any
type Validator interface {
	Validate() error
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func() error

// Validate calls f
func (f ValidatorFunc) Validate() error {
	return f()
}

// Chain runs a list of validators
type Chain struct {
	validators []Validator
}

// New creates an empty chain
func New() *Chain {
	return &Chain{}
}

// AddValidator appends v to the chain
func (c *Chain) AddValidator(v Validator) *Chain {
	c.validators = append(c.validators, v)
	return c
}

// AddAssertion appends a check that fails with message when ok is false
func (c *Chain) AddAssertion(ok bool, message string) *Chain {
	return c.AddValidator(ValidatorFunc(func() error {
		if ok {
			return nil
		}
		return errors.New(message)
	}))
}

// Validate runs the whole chain and combines the violations.
// It returns nil when every validator passes.
func (c *Chain) Validate() error {
	var violations error
	for _, v := range c.validators {
		violations = multierr.Append(violations, v.Validate())
	}
	return violations
}
