package store

import (
	"database/sql"
	"errors"
	"time"
)

// Cmd is one history entry.
type Cmd struct {
	Seq  int
	Text string
	Time time.Time
}

// NextCmdSeq returns the next sequence number of the command history.
func (s *Store) NextCmdSeq() (int, error) {
	var last sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(seq) FROM history`).Scan(&last)
	return int(last.Int64) + 1, err
}

// AddCmd adds a new command to the command history.
func (s *Store) AddCmd(cmd string) (int, error) {
	res, err := s.db.Exec(`INSERT INTO history (line, created_at) VALUES (?, ?)`,
		cmd, s.now().UnixNano())
	if err != nil {
		return 0, err
	}
	seq, err := res.LastInsertId()
	return int(seq), err
}

// Cmd queries the command history item with the specified sequence number.
func (s *Store) Cmd(seq int) (string, error) {
	var cmd string
	err := s.db.QueryRow(`SELECT line FROM history WHERE seq = ?`, seq).Scan(&cmd)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoMatchingCmd
	}
	return cmd, err
}

// Cmds returns all commands within the specified range [from, upto).
func (s *Store) Cmds(from, upto int) ([]Cmd, error) {
	return s.queryCmds(`SELECT seq, line, created_at FROM history
		WHERE seq >= ? AND seq < ? ORDER BY seq`, from, upto)
}

// LastCmds returns the newest n commands, oldest first.
func (s *Store) LastCmds(n int) ([]Cmd, error) {
	return s.queryCmds(`SELECT seq, line, created_at FROM (
		SELECT seq, line, created_at FROM history ORDER BY seq DESC LIMIT ?
	) ORDER BY seq`, n)
}

// NextCmd finds the first command after the given sequence number (inclusive)
// with the given prefix.
func (s *Store) NextCmd(from int, prefix string) (Cmd, error) {
	return s.findCmd(`SELECT seq, line, created_at FROM history
		WHERE seq >= ? AND substr(line, 1, ?) = ? ORDER BY seq LIMIT 1`,
		from, len([]rune(prefix)), prefix)
}

// PrevCmd finds the last command before the given sequence number (exclusive)
// with the given prefix.
func (s *Store) PrevCmd(upto int, prefix string) (Cmd, error) {
	return s.findCmd(`SELECT seq, line, created_at FROM history
		WHERE seq < ? AND substr(line, 1, ?) = ? ORDER BY seq DESC LIMIT 1`,
		upto, len([]rune(prefix)), prefix)
}

// TrimCmds deletes all but the newest keep entries. A keep of 0 leaves the
// history unbounded.
func (s *Store) TrimCmds(keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM history WHERE seq NOT IN (
		SELECT seq FROM history ORDER BY seq DESC LIMIT ?
	)`, keep)
	return err
}

func (s *Store) findCmd(query string, args ...any) (Cmd, error) {
	cmds, err := s.queryCmds(query, args...)
	if err != nil {
		return Cmd{}, err
	}
	if len(cmds) == 0 {
		return Cmd{}, ErrNoMatchingCmd
	}
	return cmds[0], nil
}

func (s *Store) queryCmds(query string, args ...any) ([]Cmd, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []Cmd
	for rows.Next() {
		var (
			c  Cmd
			ns int64
		)
		if err := rows.Scan(&c.Seq, &c.Text, &ns); err != nil {
			return nil, err
		}
		c.Time = time.Unix(0, ns)
		cmds = append(cmds, c)
	}
	return cmds, rows.Err()
}
