package ui

import (
	"errors"

	"github.com/vanderheijden86/eva/pkg/store"
)

// HistoryStore is the part of the store the prompt walks. *store.Store
// implements it.
type HistoryStore interface {
	NextCmdSeq() (int, error)
	PrevCmd(upto int, prefix string) (store.Cmd, error)
	NextCmd(from int, prefix string) (store.Cmd, error)
}

// historyWalker steps through earlier input lines that start with the text
// typed before the walk began.
type historyWalker struct {
	store   HistoryStore
	walking bool
	prefix  string
	cursor  int // seq of the line shown, or the next seq when back at the prefix
}

// older returns the previous matching line. ok is false when there is none
// and the caller should keep its current text.
func (h *historyWalker) older(current string) (line string, ok bool, err error) {
	if h.store == nil {
		return "", false, nil
	}
	if !h.walking {
		next, err := h.store.NextCmdSeq()
		if err != nil {
			return "", false, err
		}
		h.walking, h.prefix, h.cursor = true, current, next
	}
	cmd, err := h.store.PrevCmd(h.cursor, h.prefix)
	if errors.Is(err, store.ErrNoMatchingCmd) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	h.cursor = cmd.Seq
	return cmd.Text, true, nil
}

// newer returns the next matching line, or the original prefix once the
// walk runs past the newest entry.
func (h *historyWalker) newer() (line string, ok bool, err error) {
	if h.store == nil || !h.walking {
		return "", false, nil
	}
	cmd, err := h.store.NextCmd(h.cursor+1, h.prefix)
	if errors.Is(err, store.ErrNoMatchingCmd) {
		prefix := h.prefix
		h.reset()
		return prefix, true, nil
	}
	if err != nil {
		return "", false, err
	}
	h.cursor = cmd.Seq
	return cmd.Text, true, nil
}

func (h *historyWalker) reset() {
	h.walking, h.prefix, h.cursor = false, "", 0
}
