package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/eva/pkg/model"
)

// TreeInfo describes an archived tree without its document.
type TreeInfo struct {
	ID      int64
	Source  string
	Nodes   int
	Created time.Time
}

// SaveTree archives t under source (the REPL line or file that produced it)
// and returns its id.
func (s *Store) SaveTree(source string, t *model.Term) (int64, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return 0, fmt.Errorf("encoding tree: %w", err)
	}
	res, err := s.db.Exec(`INSERT INTO trees (source, nodes, created_at, doc) VALUES (?, ?, ?, ?)`,
		source, t.Count(), s.now().UnixNano(), doc)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TrimTrees deletes all but the newest keep archived trees. A keep of 0
// leaves the archive unbounded.
func (s *Store) TrimTrees(keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM trees WHERE id NOT IN (
		SELECT id FROM trees ORDER BY id DESC LIMIT ?
	)`, keep)
	return err
}

// LoadTree returns the archived tree with the given id.
func (s *Store) LoadTree(id int64) (*model.Term, error) {
	var doc []byte
	err := s.db.QueryRow(`SELECT doc FROM trees WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNoTree, id)
	}
	if err != nil {
		return nil, err
	}
	var t *model.Term
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("decoding tree %d: %w", id, err)
	}
	return t, nil
}

// ListTrees returns the newest n archived trees, newest first.
func (s *Store) ListTrees(n int) ([]TreeInfo, error) {
	rows, err := s.db.Query(`SELECT id, source, nodes, created_at FROM trees
		ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TreeInfo
	for rows.Next() {
		var (
			info TreeInfo
			ns   int64
		)
		if err := rows.Scan(&info.ID, &info.Source, &info.Nodes, &ns); err != nil {
			return nil, err
		}
		info.Created = time.Unix(0, ns)
		out = append(out, info)
	}
	return out, rows.Err()
}
