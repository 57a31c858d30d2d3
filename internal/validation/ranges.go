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
	"cmp"
	"fmt"
)

type rangeValidator[T cmp.Ordered] struct {
	name     string
	value    T
	min, max T
}

// NewRangeValidator checks that min <= value <= max.
func NewRangeValidator[T cmp.Ordered](name string, value, min, max T) Validator {
	return rangeValidator[T]{name: name, value: value, min: min, max: max}
}

func (v rangeValidator[T]) Validate() error {
	if v.value < v.min || v.value > v.max {
		return fmt.Errorf("%s must be within [%v, %v], got %v", v.name, v.min, v.max, v.value)
	}
	return nil
}

type positiveValidator[T cmp.Ordered] struct {
	name  string
	value T
}

// NewPositiveValidator checks that value is strictly greater than its zero value.
func NewPositiveValidator[T cmp.Ordered](name string, value T) Validator {
	return positiveValidator[T]{name: name, value: value}
}

func (v positiveValidator[T]) Validate() error {
	var zero T
	if v.value <= zero {
		return fmt.Errorf("%s must be positive, got %v", v.name, v.value)
	}
	return nil
}
