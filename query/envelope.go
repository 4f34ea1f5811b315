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

import (
	"encoding/json"
	"fmt"

	prlerr "github/sabouaram/prologmqi/errors"
	prlterm "github/sabouaram/prologmqi/term"
)

// envelopeKind discriminates the terminal reply shapes from spec.md §4.4.
type envelopeKind uint8

const (
	envelopeTrue envelopeKind = iota
	envelopeFalse
	envelopeException
)

// envelope is one parsed, non-heartbeat server reply.
type envelope struct {
	kind     envelopeKind
	bindings []Binding   // envelopeTrue
	inner    prlterm.Term // envelopeException
}

// decodeEnvelope parses one frame payload into an envelope. A binding
// list element is a JSON array of [name, value] pairs — an empty array
// is a solution with no free variables — so the whole solution shares one
// term.Scope and canonicalizes together, per spec.md §9's "one binding
// result" scoping rule.
func decodeEnvelope(payload []byte) (envelope, error) {
	var raw interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return envelope{}, prlerr.NewConnectionFailedError(fmt.Errorf("query: invalid envelope JSON: %w", err))
	}

	switch v := raw.(type) {
	case bool:
		if !v {
			return envelope{kind: envelopeFalse}, nil
		}
	case string:
		if v == "false" {
			return envelope{kind: envelopeFalse}, nil
		}
	case map[string]interface{}:
		functor, _ := v["functor"].(string)
		switch functor {
		case "true":
			bindings, err := decodeBindingsArg(v["args"])
			if err != nil {
				return envelope{}, err
			}
			return envelope{kind: envelopeTrue, bindings: bindings}, nil
		case "false":
			return envelope{kind: envelopeFalse}, nil
		case "exception":
			inner, err := decodeExceptionArg(v["args"])
			if err != nil {
				return envelope{}, err
			}
			return envelope{kind: envelopeException, inner: inner}, nil
		}
	}

	return envelope{}, prlerr.NewConnectionFailedError(fmt.Errorf("query: unrecognized envelope shape"))
}

func decodeBindingsArg(args interface{}) ([]Binding, error) {
	argList, ok := args.([]interface{})
	if !ok || len(argList) != 1 {
		return nil, prlerr.NewConnectionFailedError(fmt.Errorf("query: true/1 envelope missing its bindings list"))
	}
	solutions, ok := argList[0].([]interface{})
	if !ok {
		return nil, prlerr.NewConnectionFailedError(fmt.Errorf("query: true/1 bindings argument is not a list"))
	}

	bindings := make([]Binding, 0, len(solutions))
	for _, sol := range solutions {
		b, err := decodeSolution(sol)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func decodeSolution(sol interface{}) (Binding, error) {
	pairs, ok := sol.([]interface{})
	if !ok {
		return nil, prlerr.NewConnectionFailedError(fmt.Errorf("query: solution is not a list of [name, value] pairs"))
	}

	scope := prlterm.NewScope()
	binding := make(Binding, len(pairs))
	for _, p := range pairs {
		pair, ok := p.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, prlerr.NewConnectionFailedError(fmt.Errorf("query: binding entry is not a [name, value] pair"))
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, prlerr.NewConnectionFailedError(fmt.Errorf("query: binding name is not a string"))
		}
		value, err := scope.Decode(pair[1])
		if err != nil {
			return nil, prlerr.NewConnectionFailedError(err)
		}
		binding[name] = value
	}
	return binding, nil
}

func decodeExceptionArg(args interface{}) (prlterm.Term, error) {
	argList, ok := args.([]interface{})
	if !ok || len(argList) != 1 {
		return prlterm.Term{}, prlerr.NewConnectionFailedError(fmt.Errorf("query: exception/1 envelope missing its term"))
	}
	t, err := prlterm.DecodeValue(argList[0])
	if err != nil {
		return prlterm.Term{}, prlerr.NewConnectionFailedError(err)
	}
	return t, nil
}
