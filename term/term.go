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

// Package term models the logic-term values exchanged with the query
// evaluation server: atoms, numbers, strings, variables, compounds and
// lists, plus the JSON decoder and canonical-source-form encoder that
// convert between this shape and the wire representation.
package term

import (
	"fmt"
	"regexp"
)

// Kind discriminates the Term sum type.
type Kind uint8

const (
	KindAtom Kind = iota
	KindInteger
	KindFloat
	KindString
	KindVariable
	KindList
	KindCompound
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVariable:
		return "variable"
	case KindList:
		return "list"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// variablePattern matches the two legal shapes of a variable name:
// underscore-prefixed (anonymous-derived) or upper-case leading (named).
var variablePattern = regexp.MustCompile(`^_[A-Za-z0-9_]*$|^[A-Z][A-Za-z0-9_]*$`)

// unquotedAtomPattern matches atoms that never need quoting in source form.
var unquotedAtomPattern = regexp.MustCompile(`^[a-z][A-Za-z0-9_]*$`)

// Term is a tagged sum over the logic-term value shapes the server can
// send back in an answer, or that a caller can ask to be rendered to
// source form. The zero value is not a valid Term; use the constructors.
type Term struct {
	kind Kind

	atom string
	i    int64
	f    float64
	str  string
	vr   string

	list []Term

	functor string
	args    []Term
}

// Atom constructs an atom term.
func Atom(name string) Term { return Term{kind: KindAtom, atom: name} }

// Integer constructs an integer term.
func Integer(v int64) Term { return Term{kind: KindInteger, i: v} }

// Float constructs a float term.
func Float(v float64) Term { return Term{kind: KindFloat, f: v} }

// String constructs a Prolog string term (double-quoted text, distinct
// from an atom).
func String(v string) Term { return Term{kind: KindString, str: v} }

// Variable constructs a variable term. Panics if name does not match the
// variable grammar — callers that build terms from untrusted input should
// validate with IsValidVariableName first.
func Variable(name string) Term {
	if !IsValidVariableName(name) {
		panic(fmt.Sprintf("term: invalid variable name %q", name))
	}
	return Term{kind: KindVariable, vr: name}
}

// IsValidVariableName reports whether name matches the variable grammar
// from the data model: `^_[A-Za-z0-9_]*$|^[A-Z][A-Za-z0-9_]*$`.
func IsValidVariableName(name string) bool {
	return variablePattern.MatchString(name)
}

// List constructs a list term from its elements.
func List(elems ...Term) Term {
	if elems == nil {
		elems = []Term{}
	}
	return Term{kind: KindList, list: elems}
}

// Compound constructs a compound term. A 0-arity compound collapses to an
// Atom per the data model invariant that compound args are non-empty.
func Compound(functor string, args ...Term) Term {
	if len(args) == 0 {
		return Atom(functor)
	}
	return Term{kind: KindCompound, functor: functor, args: args}
}

func (t Term) Kind() Kind { return t.kind }

func (t Term) AtomValue() string { return t.atom }

func (t Term) IntValue() int64 { return t.i }

func (t Term) FloatValue() float64 { return t.f }

func (t Term) StringValue() string { return t.str }

func (t Term) VariableName() string { return t.vr }

func (t Term) ListElems() []Term { return t.list }

// Functor returns the functor name. For an Atom it is the atom name itself
// (a 0-arity compound), matching the invariant in the data model.
func (t Term) Functor() string {
	switch t.kind {
	case KindCompound:
		return t.functor
	case KindAtom:
		return t.atom
	default:
		return ""
	}
}

func (t Term) Args() []Term { return t.args }

// Arity returns the number of compound arguments, 0 for every other kind.
func (t Term) Arity() int {
	if t.kind != KindCompound {
		return 0
	}
	return len(t.args)
}
