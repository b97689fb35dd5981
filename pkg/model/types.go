package model

import (
	"errors"
	"fmt"
)

// MaxDepth bounds how deep a term may nest before Validate rejects it.
const MaxDepth = 100000

// ErrNilChild is returned by Validate when a child slot is empty.
var ErrNilChild = errors.New("nil child term")

// ErrTooDeep is returned by Validate when nesting exceeds MaxDepth.
var ErrTooDeep = errors.New("term nesting too deep")

// Term is one node of a rewrite-derivation tree as produced by the rewriter.
type Term struct {
	Label        string  `json:"label" yaml:"label"`
	IsComment    bool    `json:"is_comment,omitempty" yaml:"is_comment,omitempty"`
	IsStringAtom bool    `json:"is_string_atom,omitempty" yaml:"is_string_atom,omitempty"`
	Properties   string  `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children     []*Term `json:"children,omitempty" yaml:"children,omitempty"`
}

// Clone creates a deep copy of the term.
func (t *Term) Clone() *Term {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Children != nil {
		clone.Children = make([]*Term, len(t.Children))
		for i, c := range t.Children {
			clone.Children[i] = c.Clone()
		}
	}
	return &clone
}

// Count returns the number of terms in the tree rooted at t.
func (t *Term) Count() int {
	if t == nil {
		return 0
	}
	count := 0
	stack := []*Term{t}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, top.Children...)
	}
	return count
}

// Validate checks that the tree is finite, has no empty child slots and is
// not nested deeper than MaxDepth.
func (t *Term) Validate() error {
	if t == nil {
		return fmt.Errorf("root: %w", ErrNilChild)
	}
	type frame struct {
		term  *Term
		depth int
	}
	stack := []frame{{t, 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.depth > MaxDepth {
			return fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
		}
		for i, c := range top.term.Children {
			if c == nil {
				return fmt.Errorf("child %d of %q: %w", i, top.term.Label, ErrNilChild)
			}
			stack = append(stack, frame{c, top.depth + 1})
		}
	}
	return nil
}

// Kind names the term's flavour for display.
func (t *Term) Kind() string {
	switch {
	case t.IsComment:
		return "comment"
	case t.IsStringAtom:
		return "string"
	case len(t.Children) == 0:
		return "atom"
	default:
		return "apply"
	}
}

// FlatTerm is the line-oriented form of a Term: one record per node with an
// explicit parent reference. Rewriters that stream their output emit JSONL
// records of this shape.
type FlatTerm struct {
	ID           string `json:"id" yaml:"id"`
	Parent       string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Label        string `json:"label" yaml:"label"`
	IsComment    bool   `json:"is_comment,omitempty" yaml:"is_comment,omitempty"`
	IsStringAtom bool   `json:"is_string_atom,omitempty" yaml:"is_string_atom,omitempty"`
	Properties   string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// IsRoot reports whether the record has no parent.
func (f FlatTerm) IsRoot() bool {
	return f.Parent == ""
}

// Term converts the record into a childless Term.
func (f FlatTerm) Term() *Term {
	return &Term{
		Label:        f.Label,
		IsComment:    f.IsComment,
		IsStringAtom: f.IsStringAtom,
		Properties:   f.Properties,
	}
}

// Flatten converts t into records in pre-order. IDs are "n0", "n1", ... in
// visit order, so flattening is deterministic.
func Flatten(t *Term) []FlatTerm {
	if t == nil {
		return nil
	}
	type frame struct {
		term   *Term
		parent string
	}
	var out []FlatTerm
	stack := []frame{{t, ""}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		id := fmt.Sprintf("n%d", len(out))
		out = append(out, FlatTerm{
			ID:           id,
			Parent:       top.parent,
			Label:        top.term.Label,
			IsComment:    top.term.IsComment,
			IsStringAtom: top.term.IsStringAtom,
			Properties:   top.term.Properties,
		})
		for i := len(top.term.Children) - 1; i >= 0; i-- {
			if c := top.term.Children[i]; c != nil {
				stack = append(stack, frame{c, id})
			}
		}
	}
	return out
}
