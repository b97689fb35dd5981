// Package repl turns REPL input lines into derivation trees. Plain lines go
// to a Rewriter; lines starting with ':' are meta commands handled by the
// Evaluator.
package repl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vanderheijden86/eva/pkg/model"
)

// maxNesting bounds parenthesis depth in a single line.
const maxNesting = 10000

// ParseError reports where a term literal stopped making sense.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// Parse reads a term literal such as f(a, g(b), "str").
//
// An application becomes a node labelled with its head whose children are
// the arguments. Quoted strings become string atoms. A line that starts
// with // is a single comment node; a trailing // comment is attached as the
// last child of the parsed term.
func Parse(line string) (*model.Term, error) {
	p := &parser{src: line}
	p.skipSpace()
	if p.done() {
		return nil, &ParseError{Offset: p.pos, Msg: "empty input"}
	}
	if p.peekComment() {
		return commentTerm(strings.TrimSpace(p.src[p.pos:])), nil
	}

	term, err := p.term(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peekComment() {
		term.Children = append(term.Children, commentTerm(strings.TrimSpace(p.src[p.pos:])))
		p.pos = len(p.src)
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q after term", p.src[p.pos:])
	}
	return term, nil
}

func commentTerm(text string) *model.Term {
	return &model.Term{Label: text, IsComment: true, Properties: "comment"}
}

type parser struct {
	src string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) peekComment() bool {
	return strings.HasPrefix(p.src[p.pos:], "//")
}

func (p *parser) skipSpace() {
	for !p.done() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) term(depth int) (*model.Term, error) {
	if depth > maxNesting {
		return nil, p.errorf("nesting deeper than %d", maxNesting)
	}
	p.skipSpace()
	if p.done() {
		return nil, p.errorf("expected term, got end of input")
	}
	if p.peek() == '"' {
		return p.stringAtom()
	}

	start := p.pos
	head := p.atom()
	if head == "" {
		return nil, p.errorf("expected term, got %q", p.peek())
	}
	p.skipSpace()
	if p.done() || p.peek() != '(' {
		return &model.Term{Label: head, Properties: "atom"}, nil
	}
	p.pos++ // (

	term := &model.Term{Label: head}
	p.skipSpace()
	if !p.done() && p.peek() == ')' {
		p.pos++
	} else {
		for {
			arg, err := p.term(depth + 1)
			if err != nil {
				return nil, err
			}
			term.Children = append(term.Children, arg)
			p.skipSpace()
			if p.done() {
				return nil, p.errorf("unclosed ( opened at offset %d", start+len(head))
			}
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case ')':
				p.pos++
			default:
				return nil, p.errorf("expected , or ) but got %q", p.peek())
			}
			break
		}
	}
	term.Properties = fmt.Sprintf("apply %s/%d", head, len(term.Children))
	return term, nil
}

// atom consumes a run of characters that are not delimiters.
func (p *parser) atom() string {
	start := p.pos
	for !p.done() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if unicode.IsSpace(r) || strings.ContainsRune("(),\"", r) || p.peekComment() {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *parser) stringAtom() (*model.Term, error) {
	start := p.pos
	p.pos++ // opening quote
	for !p.done() {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			lit := p.src[start:p.pos]
			if _, err := strconv.Unquote(lit); err != nil {
				return nil, &ParseError{Offset: start, Msg: "invalid string literal " + lit}
			}
			return &model.Term{Label: lit, IsStringAtom: true, Properties: "string"}, nil
		}
		p.pos++
	}
	return nil, &ParseError{Offset: start, Msg: "unterminated string"}
}

// Format renders a term back into literal syntax. Comment children are
// dropped.
func Format(t *model.Term) string {
	var b strings.Builder
	format(&b, t)
	return b.String()
}

func format(b *strings.Builder, t *model.Term) {
	b.WriteString(t.Label)
	args := make([]*model.Term, 0, len(t.Children))
	for _, c := range t.Children {
		if c != nil && !c.IsComment {
			args = append(args, c)
		}
	}
	if len(args) == 0 && (t.IsStringAtom || t.IsComment || !strings.HasPrefix(t.Properties, "apply")) {
		return
	}
	b.WriteByte('(')
	for i, c := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		format(b, c)
	}
	b.WriteByte(')')
}
