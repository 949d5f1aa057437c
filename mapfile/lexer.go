// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type itemType int

const (
	itemError itemType = iota
	itemEOF
	itemString // quoted string includes quotes
	itemChar   // '{','}','(',')'
	itemWord
)

const eof = -1

type item struct {
	typ  itemType
	val  string
	line int
}

func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return i.val
	}
	if len(i.val) > 10 {
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

type stateFn func(*lexer) stateFn

type lexer struct {
	input string
	start int
	pos   int
	width int
	line  int
	items chan item
	state stateFn
}

func lex(input string) *lexer {
	l := &lexer{
		input: input,
		line:  1,
		items: make(chan item, 2),
		state: lexAction,
	}
	return l
}

func (l *lexer) nextItem() item {
	for {
		select {
		case item := <-l.items:
			return item
		default:
			if l.state == nil {
				return item{itemEOF, "", l.line}
			}
			l.state = l.state(l)
		}
	}
}

func (l *lexer) emit(t itemType) {
	l.items <- item{t, l.input[l.start:l.pos], l.line}
	l.start = l.pos
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += l.width
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *lexer) ignore() {
	l.start = l.pos
}

func (l *lexer) backup() {
	l.pos -= l.width
	if l.width == 1 && l.input[l.pos] == '\n' {
		l.line--
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items <- item{
		itemError,
		fmt.Sprintf(format, args...),
		l.line,
	}
	return nil
}

func lexWord(l *lexer) stateFn {
	for isWordRune(l.next()) {
	}
	l.backup()
	l.emit(itemWord)
	return lexAction
}

func lexAction(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		l.emit(itemEOF)
		return nil
	case isSpace(r):
		l.ignore()
		return lexAction
	case r == '"':
		return lexQuote
	case r == '/' && l.peek() == '/':
		return lexComment
	case strings.ContainsRune("{}()", r):
		l.emit(itemChar)
		return lexAction
	case isWordRune(r):
		l.backup()
		return lexWord
	default:
		return l.errorf("line %d: unhandled char: %#U", l.line, r)
	}
}

func lexComment(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			break
		}
	}
	l.ignore()
	return lexAction
}

func lexQuote(l *lexer) stateFn {
Loop:
	for {
		switch l.next() {
		case '"':
			break Loop
		case eof, '\n':
			return l.errorf("line %d: unterminated string", l.line)
		}
	}
	l.emit(itemString)
	return lexAction
}

func isWordRune(r rune) bool {
	// this is an ugly ascii workaround
	return r > ' ' && !strings.ContainsRune("{}()\"", r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
