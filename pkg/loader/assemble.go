package loader

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/eva/pkg/model"
)

// Structural errors reported while assembling flat records into a tree.
var (
	ErrMissingID     = errors.New("record has no id")
	ErrDuplicateID   = errors.New("duplicate record id")
	ErrSelfParent    = errors.New("record is its own parent")
	ErrMissingParent = errors.New("parent not found")
	ErrNoRoot        = errors.New("no root record")
	ErrMultipleRoots = errors.New("more than one root record")
	ErrCycle         = errors.New("parent references form a cycle")
)

// Assemble turns flat records into a tree. Each record becomes one term;
// children keep the order their records appear in. The parent references
// are checked as a directed graph, so a malformed stream is rejected rather
// than silently truncated.
func Assemble(records []model.FlatTerm) (*model.Term, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	index := make(map[string]int64, len(records))
	g := simple.NewDirectedGraph()
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingID)
		}
		if _, dup := index[rec.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
		}
		index[rec.ID] = int64(i)
		g.AddNode(simple.Node(i))
	}

	root := int64(-1)
	for i, rec := range records {
		if rec.IsRoot() {
			if root >= 0 {
				return nil, fmt.Errorf("%w: %q and %q", ErrMultipleRoots, records[root].ID, rec.ID)
			}
			root = int64(i)
			continue
		}
		// SetEdge panics on self loops, so they are caught here first.
		if rec.Parent == rec.ID {
			return nil, fmt.Errorf("%w: %q", ErrSelfParent, rec.ID)
		}
		parent, ok := index[rec.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: %q (referenced by %q)", ErrMissingParent, rec.Parent, rec.ID)
		}
		g.SetEdge(g.NewEdge(simple.Node(parent), simple.Node(i)))
	}
	if root < 0 {
		return nil, ErrNoRoot
	}

	if _, err := topo.Sort(g); err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) && len(cycles) > 0 && len(cycles[0]) > 0 {
			return nil, fmt.Errorf("%w: involving %q", ErrCycle, records[cycles[0][0].ID()].ID)
		}
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}

	terms := make([]*model.Term, len(records))
	for i, rec := range records {
		terms[i] = rec.Term()
	}
	for i, rec := range records {
		if !rec.IsRoot() {
			p := terms[index[rec.Parent]]
			p.Children = append(p.Children, terms[i])
		}
	}
	return terms[root], nil
}
