// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cparse

import (
	"github.com/pkg/errors"

	"github.com/kernscope/kernscope/cast"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  cast.Pos
}

// twoCharOps are matched before their single-character prefixes.
var twoCharOps = []string{"++", "--", "+=", "-=", "*="}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lex(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1
	i := 0
	pos := func() cast.Pos { return cast.Pos{Line: line, Col: col} }
	advance := func(n int) {
		for k := 0; k < n; k++ {
			if src[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			advance(1)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				advance(1)
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			start := pos()
			advance(2)
			for {
				if i+1 >= len(src) {
					return nil, errors.Errorf("%s: unterminated comment", start)
				}
				if src[i] == '*' && src[i+1] == '/' {
					advance(2)
					break
				}
				advance(1)
			}
		case isDigit(c):
			p := pos()
			start := i
			kind := tokInt
			for i < len(src) && isDigit(src[i]) {
				advance(1)
			}
			if i < len(src) && src[i] == '.' {
				kind = tokFloat
				advance(1)
				for i < len(src) && isDigit(src[i]) {
					advance(1)
				}
			}
			toks = append(toks, token{kind: kind, text: src[start:i], pos: p})
		case isIdentStart(c):
			p := pos()
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				advance(1)
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: p})
		default:
			p := pos()
			matched := false
			if i+1 < len(src) {
				two := src[i : i+2]
				for _, op := range twoCharOps {
					if two == op {
						toks = append(toks, token{kind: tokPunct, text: op, pos: p})
						advance(2)
						matched = true
						break
					}
				}
			}
			if matched {
				break
			}
			switch c {
			case '+', '-', '*', '<', '>', '=', '&', ';', ',', '(', ')', '[', ']', '{', '}':
				toks = append(toks, token{kind: tokPunct, text: string(c), pos: p})
				advance(1)
			default:
				return nil, errors.Errorf("%s: unexpected character %q", p, string(c))
			}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: cast.Pos{Line: line, Col: col}})
	return toks, nil
}
