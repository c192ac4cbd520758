package msglog

import (
	"testing"

	"github.com/flashbots/shuffleround/group"
	"github.com/stretchr/testify/require"
)

func TestAppendAndEntries(t *testing.T) {
	l := New()
	l.Append([]byte("msg-1"), group.ID("peer-a"))
	l.Append([]byte("msg-2"), group.ID("peer-b"))

	require.Equal(t, 2, l.Len())

	entries := l.Entries()
	require.Equal(t, group.ID("peer-a"), entries[0].From)
	require.Equal(t, []byte("msg-1"), entries[0].Data)
	require.Equal(t, group.ID("peer-b"), entries[1].From)
	require.Equal(t, []byte("msg-2"), entries[1].Data)
}

func TestAppendDoesNotAliasCaller(t *testing.T) {
	l := New()
	data := []byte("original")
	l.Append(data, group.ID("peer-a"))
	data[0] = 'X'

	require.Equal(t, []byte("original"), l.Entries()[0].Data)
}

func TestPopRemovesLastEntry(t *testing.T) {
	l := New()
	l.Append([]byte("msg-1"), group.ID("peer-a"))
	l.Append([]byte("msg-2"), group.ID("peer-b"))

	l.Pop()
	require.Equal(t, 1, l.Len())
	require.Equal(t, []byte("msg-1"), l.Entries()[0].Data)
}

func TestPopOnEmptyLogIsNoop(t *testing.T) {
	l := New()
	l.Pop()
	require.Equal(t, 0, l.Len())
}

func TestSerializeIsDeterministic(t *testing.T) {
	l1 := New()
	l1.Append([]byte("msg-1"), group.ID("peer-a"))
	l1.Append([]byte("msg-2"), group.ID("peer-b"))

	l2 := New()
	l2.Append([]byte("msg-1"), group.ID("peer-a"))
	l2.Append([]byte("msg-2"), group.ID("peer-b"))

	require.Equal(t, l1.Serialize(), l2.Serialize())
}

func TestSerializeDiffersOnDivergence(t *testing.T) {
	l1 := New()
	l1.Append([]byte("msg-1"), group.ID("peer-a"))

	l2 := New()
	l2.Append([]byte("msg-1-tampered"), group.ID("peer-a"))

	require.NotEqual(t, l1.Serialize(), l2.Serialize())
}

func TestSerializeSensitiveToOrder(t *testing.T) {
	l1 := New()
	l1.Append([]byte("msg-1"), group.ID("peer-a"))
	l1.Append([]byte("msg-2"), group.ID("peer-b"))

	l2 := New()
	l2.Append([]byte("msg-2"), group.ID("peer-b"))
	l2.Append([]byte("msg-1"), group.ID("peer-a"))

	require.NotEqual(t, l1.Serialize(), l2.Serialize())
}
