package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/eva/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return st
}

var (
	cmds     = []string{"add(1, 2)", ":depth 2", ":depth 3", "add(x, y)"}
	searches = []struct {
		next      bool
		seq       int
		prefix    string
		wantedSeq int
		wantedCmd string
		wantedErr error
	}{
		{false, 5, "add", 4, "add(x, y)", nil},
		{false, 5, ":depth", 3, ":depth 3", nil},
		{false, 4, "add", 1, "add(1, 2)", nil},
		{false, 3, "f", 0, "", ErrNoMatchingCmd},
		{false, 5, "", 4, "add(x, y)", nil},

		{true, 1, "add", 1, "add(1, 2)", nil},
		{true, 1, ":depth", 2, ":depth 2", nil},
		{true, 2, "add", 4, "add(x, y)", nil},
		{true, 4, ":depth", 0, "", ErrNoMatchingCmd},
	}
)

func TestCmd(t *testing.T) {
	st := newTestStore(t)

	startSeq, err := st.NextCmdSeq()
	require.NoError(t, err)
	assert.Equal(t, 1, startSeq)

	for i, cmd := range cmds {
		seq, err := st.AddCmd(cmd)
		require.NoError(t, err)
		assert.Equal(t, startSeq+i, seq)
	}
	endSeq, err := st.NextCmdSeq()
	require.NoError(t, err)
	assert.Equal(t, startSeq+len(cmds), endSeq)

	for i, want := range cmds {
		got, err := st.Cmd(startSeq + i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = st.Cmd(99)
	assert.ErrorIs(t, err, ErrNoMatchingCmd)

	for _, tt := range searches {
		f, fname := st.PrevCmd, "PrevCmd"
		if tt.next {
			f, fname = st.NextCmd, "NextCmd"
		}
		cmd, err := f(tt.seq, tt.prefix)
		if tt.wantedErr != nil {
			assert.ErrorIs(t, err, tt.wantedErr, "%s(%d, %q)", fname, tt.seq, tt.prefix)
			continue
		}
		require.NoError(t, err, "%s(%d, %q)", fname, tt.seq, tt.prefix)
		assert.Equal(t, tt.wantedSeq, cmd.Seq, "%s(%d, %q)", fname, tt.seq, tt.prefix)
		assert.Equal(t, tt.wantedCmd, cmd.Text, "%s(%d, %q)", fname, tt.seq, tt.prefix)
	}
}

func TestCmdsRanges(t *testing.T) {
	st := newTestStore(t)
	for _, cmd := range cmds {
		_, err := st.AddCmd(cmd)
		require.NoError(t, err)
	}

	got, err := st.Cmds(2, 4)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ":depth 2", got[0].Text)
	assert.Equal(t, ":depth 3", got[1].Text)
	assert.True(t, got[0].Time.Before(got[1].Time))

	last, err := st.LastCmds(2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, 3, last[0].Seq)
	assert.Equal(t, 4, last[1].Seq)
}

func TestTrimCmds(t *testing.T) {
	st := newTestStore(t)
	for _, cmd := range cmds {
		_, err := st.AddCmd(cmd)
		require.NoError(t, err)
	}

	require.NoError(t, st.TrimCmds(0))
	all, err := st.LastCmds(10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, st.TrimCmds(2))
	all, err = st.LastCmds(10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ":depth 3", all[0].Text)
	assert.Equal(t, "add(x, y)", all[1].Text)
}

func TestTrees(t *testing.T) {
	st := newTestStore(t)

	first := &model.Term{Label: "f(x)", Children: []*model.Term{{Label: "x"}}}
	second := &model.Term{Label: "\"s\"", IsStringAtom: true, Properties: "string"}

	id1, err := st.SaveTree("f(x)", first)
	require.NoError(t, err)
	id2, err := st.SaveTree("examples/s.json", second)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	got, err := st.LoadTree(id1)
	require.NoError(t, err)
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("loaded tree mismatch (-want +got):\n%s", diff)
	}

	list, err := st.ListTrees(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id2, list[0].ID)
	assert.Equal(t, "examples/s.json", list[0].Source)
	assert.Equal(t, 1, list[0].Nodes)
	assert.Equal(t, 2, list[1].Nodes)

	_, err = st.LoadTree(12345)
	assert.ErrorIs(t, err, ErrNoTree)
}

func TestTrimTrees(t *testing.T) {
	st := newTestStore(t)
	var ids []int64
	for _, label := range []string{"a", "b", "c", "d"} {
		id, err := st.SaveTree(label, &model.Term{Label: label})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, st.TrimTrees(0))
	list, err := st.ListTrees(10)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	require.NoError(t, st.TrimTrees(2))
	list, err = st.ListTrees(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d", list[0].Source)
	assert.Equal(t, "c", list[1].Source)

	_, err = st.LoadTree(ids[0])
	assert.ErrorIs(t, err, ErrNoTree)
}

func TestReopenKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)
	_, err = st.AddCmd("persist(me)")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(dir)
	require.NoError(t, err)
	defer st.Close()
	cmd, err := st.Cmd(1)
	require.NoError(t, err)
	assert.Equal(t, "persist(me)", cmd)
}
