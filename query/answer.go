/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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
 *
 *
 */

package query

import prlterm "github/sabouaram/prologmqi/term"

// AnswerKind discriminates the three Answer shapes from the data model:
// the boolean true, a non-empty sequence of bindings, or the distinct
// "no more solutions" value.
type AnswerKind uint8

const (
	AnswerTrue AnswerKind = iota
	AnswerBindings
	AnswerNone
)

// Binding maps a free-variable name (already canonicalized) to its Term,
// unique within one solution.
type Binding map[string]prlterm.Term

// Answer is either the boolean true, a non-empty ordered sequence of
// Bindings, or AnswerNone ("no more solutions") — distinct from both and
// from an error.
type Answer struct {
	Kind     AnswerKind
	Bindings []Binding
}

// True is the boolean-success Answer: a query that succeeded with no free
// variables.
func True() Answer { return Answer{Kind: AnswerTrue} }

// None is the "no more solutions" Answer.
func None() Answer { return Answer{Kind: AnswerNone} }

// WithBindings is the bindings-sequence Answer. Per the data model the
// sequence must be non-empty; an empty slice of bindings collapses to True,
// matching the wire convention that a solution with no free variables is
// carried as one empty binding, not zero bindings.
func WithBindings(bindings []Binding) Answer {
	if len(bindings) == 0 {
		return True()
	}
	allEmpty := true
	for _, b := range bindings {
		if len(b) > 0 {
			allEmpty = false
			break
		}
	}
	if allEmpty && len(bindings) == 1 {
		return True()
	}
	return Answer{Kind: AnswerBindings, Bindings: bindings}
}
