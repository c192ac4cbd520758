package group

import (
	"fmt"
	"testing"

	"github.com/flashbots/shuffleround/crypto"
	"github.com/stretchr/testify/require"
)

func newTestGroup(t *testing.T, n int) (*StaticGroup, []ID) {
	t.Helper()

	ids := make([]ID, n)
	members := make([]Member, n)
	for i := 0; i < n; i++ {
		pub, _, err := crypto.GenerateSigningKeyPair()
		require.NoError(t, err)
		ids[i] = ID(fmt.Sprintf("peer-%d", i))
		members[i] = Member{ID: ids[i], Key: pub}
	}

	g, err := NewStaticGroup(members)
	require.NoError(t, err)
	return g, ids
}

func TestStaticGroupRejectsTooFewMembers(t *testing.T) {
	pub, _, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	_, err = NewStaticGroup([]Member{{ID: "only", Key: pub}})
	require.Error(t, err)
}

func TestStaticGroupRejectsDuplicateID(t *testing.T) {
	pub, _, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	_, err = NewStaticGroup([]Member{
		{ID: "a", Key: pub},
		{ID: "a", Key: pub},
	})
	require.Error(t, err)
}

func TestStaticGroupRejectsReservedZeroID(t *testing.T) {
	pub, _, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	_, err = NewStaticGroup([]Member{
		{ID: Zero, Key: pub},
		{ID: "b", Key: pub},
	})
	require.Error(t, err)
}

func TestStaticGroupIndexAndID(t *testing.T) {
	g, ids := newTestGroup(t, 4)

	for i, id := range ids {
		require.Equal(t, i, g.Index(id))
		require.Equal(t, id, g.ID(i))
	}

	require.Equal(t, -1, g.Index("not-a-member"))
	require.Equal(t, Zero, g.ID(-1))
	require.Equal(t, Zero, g.ID(len(ids)))
}

func TestStaticGroupRingOrder(t *testing.T) {
	g, ids := newTestGroup(t, 3)

	require.Equal(t, Zero, g.Previous(ids[0]))
	require.Equal(t, ids[0], g.Previous(ids[1]))
	require.Equal(t, ids[1], g.Previous(ids[2]))

	require.Equal(t, ids[1], g.Next(ids[0]))
	require.Equal(t, ids[2], g.Next(ids[1]))
	require.Equal(t, Zero, g.Next(ids[2]))

	require.Equal(t, Zero, g.Next("unknown"))
	require.Equal(t, Zero, g.Previous("unknown"))
}

func TestStaticGroupKey(t *testing.T) {
	g, ids := newTestGroup(t, 2)

	key, ok := g.Key(ids[0])
	require.True(t, ok)
	require.True(t, key.Valid())

	_, ok = g.Key("unknown")
	require.False(t, ok)
}

func TestStaticGroupCount(t *testing.T) {
	g, _ := newTestGroup(t, 5)
	require.Equal(t, 5, g.Count())
}
