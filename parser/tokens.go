package parser

import (
	"github.com/tarn-lang/tarn/lexer"
	"github.com/tarn-lang/tarn/loc"
)

// The token stream: a buffer of lexed tokens with a lookahead cursor
// over it. peek examines and advances the cursor without committing;
// rewind resets the cursor; take commits the first buffered token.

// start resets the stream to the beginning of a new source.
func (p *parser) start(src *loc.Source) {
	p.source = src
	p.pos = 0
	p.la = 0
	p.previous = lexer.Token{}
	p.lookahead = p.lookahead[:0]
}

// loc returns the location of the first unconsumed token, or of the
// last consumed token if nothing is buffered.
func (p *parser) loc() loc.Loc {
	if len(p.lookahead) > 0 {
		return p.lookahead[0].Loc
	}
	return p.previous.Loc
}

// peek reports whether the token at the lookahead cursor has the given
// kind (and text, if given), advancing the cursor on a match.
func (p *parser) peek(kind lexer.Kind, text ...string) bool {
	if p.la >= len(p.lookahead) {
		p.lookahead = append(p.lookahead, lexer.Lex(p.source, &p.pos))
	}
	if p.lookahead[p.la].Kind != kind {
		return false
	}
	if len(text) > 0 && p.lookahead[p.la].Text() != text[0] {
		return false
	}
	p.next()
	return true
}

func (p *parser) next() {
	p.la++
}

func (p *parser) rewind() {
	p.la = 0
}

// take commits and returns the first buffered token.
// The lookahead cursor must be at the commit point.
func (p *parser) take() lexer.Token {
	if p.la != 0 {
		panic("take with outstanding lookahead")
	}
	if len(p.lookahead) == 0 {
		p.previous = lexer.Lex(p.source, &p.pos)
		return p.previous
	}
	p.previous = p.lookahead[0]
	p.lookahead = p.lookahead[:copy(p.lookahead, p.lookahead[1:])]
	return p.previous
}

// has is peek-and-commit: on a match the token is consumed.
func (p *parser) has(kind lexer.Kind, text ...string) bool {
	if p.peek(kind, text...) {
		p.rewind()
		p.take()
		return true
	}
	return false
}

// peekDelimited reports whether kind appears before terminator at the
// current bracket depth, skipping balanced (), [] and {} groups. It
// only moves the lookahead cursor; the caller must rewind.
func (p *parser) peekDelimited(kind, terminator lexer.Kind) bool {
	for !p.peek(lexer.End) {
		if p.peek(kind) {
			return true
		}
		if p.peek(terminator) {
			return false
		}
		switch {
		case p.peek(lexer.LParen):
			p.peekDelimited(lexer.RParen, lexer.End)
		case p.peek(lexer.LSquare):
			p.peekDelimited(lexer.RSquare, lexer.End)
		case p.peek(lexer.LBrace):
			p.peekDelimited(lexer.RBrace, lexer.End)
		default:
			p.next()
		}
	}
	return false
}

// restartBefore consumes tokens, skipping balanced bracket groups,
// until the next token at the current depth is one of kinds or End.
// It is the resynchronization step after a reported error.
func (p *parser) restartBefore(kinds ...lexer.Kind) {
	for !p.has(lexer.End) {
		for _, kind := range kinds {
			if p.peek(kind) {
				p.rewind()
				return
			}
		}
		switch {
		case p.has(lexer.LParen):
			p.restartBefore(lexer.RParen)
		case p.has(lexer.LSquare):
			p.restartBefore(lexer.RSquare)
		case p.has(lexer.LBrace):
			p.restartBefore(lexer.RBrace)
		default:
			p.take()
		}
	}
}

// restartAfter is restartBefore followed by consuming the found token.
func (p *parser) restartAfter(kinds ...lexer.Kind) {
	p.restartBefore(kinds...)
	p.take()
}
