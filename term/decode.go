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

package term

import (
	"encoding/json"
	"fmt"
)

// Scope assigns canonical variable names (A, B, ..., Z, AA, AB, ...) in
// first-occurrence order. It is NOT a global table across messages: one
// Scope covers exactly one top-level decoded value (one binding result,
// or one term handed to the source-form renderer) per the design notes.
// Most callers want the package-level DecodeValue/Decode, which open and
// discard a Scope per call; NewScope is for callers (such as a binding
// object, which is a map of several Terms that must canonicalize against
// each other) that need one Scope shared across several decodeWith calls.
type Scope struct {
	seen  map[string]string
	order []string
}

// NewScope starts a fresh canonicalization scope.
func NewScope() *Scope {
	return &Scope{seen: make(map[string]string)}
}

// Decode converts v under this Scope, sharing canonical variable names
// with any prior Decode call on the same Scope.
func (s *Scope) Decode(v interface{}) (Term, error) {
	return decodeWith(v, s)
}

func (c *Scope) canonicalize(name string) string {
	if canon, ok := c.seen[name]; ok {
		return canon
	}
	canon := indexToLetters(len(c.order))
	c.seen[name] = canon
	c.order = append(c.order, name)
	return canon
}

// indexToLetters renders 0, 1, ..., 25, 26, 27 as A, B, ..., Z, AA, AB, ...
func indexToLetters(idx int) string {
	var buf []byte
	for {
		buf = append([]byte{byte('A' + idx%26)}, buf...)
		idx = idx/26 - 1
		if idx < 0 {
			break
		}
	}
	return string(buf)
}

// Decode converts one top-level JSON value received from the server into
// a Term, canonicalizing variable names within that value. Each call to
// Decode starts a fresh canonicalization scope.
func Decode(data []byte) (Term, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return Term{}, fmt.Errorf("term: invalid JSON: %w", err)
	}
	return DecodeValue(v)
}

// DecodeValue converts an already-unmarshaled JSON value (string, float64,
// []interface{}, or map[string]interface{} with "functor"/"args") into a
// Term, with a fresh canonicalization scope.
func DecodeValue(v interface{}) (Term, error) {
	return NewScope().Decode(v)
}

func decodeWith(v interface{}, c *Scope) (Term, error) {
	switch val := v.(type) {
	case nil:
		return Atom("null"), nil
	case string:
		if IsValidVariableName(val) {
			return Variable(c.canonicalize(val)), nil
		}
		return Atom(val), nil
	case float64:
		if val == float64(int64(val)) {
			return Integer(int64(val)), nil
		}
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return Term{}, fmt.Errorf("term: invalid number %q: %w", val.String(), err)
		}
		return Float(f), nil
	case bool:
		if val {
			return Atom("true"), nil
		}
		return Atom("false"), nil
	case []interface{}:
		elems := make([]Term, 0, len(val))
		for _, e := range val {
			dt, err := decodeWith(e, c)
			if err != nil {
				return Term{}, err
			}
			elems = append(elems, dt)
		}
		return List(elems...), nil
	case map[string]interface{}:
		return decodeCompound(val, c)
	default:
		return Term{}, fmt.Errorf("term: unsupported JSON value of type %T", v)
	}
}

func decodeCompound(obj map[string]interface{}, c *Scope) (Term, error) {
	rawFunctor, ok := obj["functor"]
	if !ok {
		return Term{}, fmt.Errorf("term: compound object missing \"functor\"")
	}
	functor, ok := rawFunctor.(string)
	if !ok {
		return Term{}, fmt.Errorf("term: compound \"functor\" is not a string")
	}

	rawArgs, ok := obj["args"]
	if !ok {
		return Atom(functor), nil
	}
	argList, ok := rawArgs.([]interface{})
	if !ok {
		return Term{}, fmt.Errorf("term: compound \"args\" is not an array")
	}

	args := make([]Term, 0, len(argList))
	for _, a := range argList {
		dt, err := decodeWith(a, c)
		if err != nil {
			return Term{}, err
		}
		args = append(args, dt)
	}
	return Compound(functor, args...), nil
}
