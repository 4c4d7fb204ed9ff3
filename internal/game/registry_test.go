package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPlayer(id, name string) *Player {
	return NewPlayer(id, name, stubSocket{}, nil)
}

func TestRegistry_AddGetRemove(t *testing.T) {
	r := newRegistry()

	alice := testPlayer("id-a", "alice")
	bob := testPlayer("id-b", "bob")

	r.add(alice)
	r.add(bob)

	assert.Equal(t, 2, r.count())
	assert.Equal(t, alice, r.get("id-a"))
	assert.Equal(t, bob, r.get("id-b"))

	removed := r.remove("id-a")
	assert.Equal(t, alice, removed)
	assert.Equal(t, 1, r.count())
	assert.Nil(t, r.get("id-a"))

	// Removing twice is a no-op, not a panic.
	assert.Nil(t, r.remove("id-a"))
	assert.Equal(t, 1, r.count())
}

func TestRegistry_Award(t *testing.T) {
	r := newRegistry()
	alice := testPlayer("id-a", "alice")
	r.add(alice)

	r.award("id-a", 5)
	r.award("id-a", 5)
	assert.Equal(t, 10, alice.score)

	// Unknown id is ignored.
	r.award("id-z", 5)
}

func TestRegistry_ScoreboardSortedWithContiguousRanks(t *testing.T) {
	r := newRegistry()

	alice := testPlayer("id-a", "alice")
	bob := testPlayer("id-b", "bob")
	carol := testPlayer("id-c", "carol")
	r.add(alice)
	r.add(bob)
	r.add(carol)

	r.award("id-b", 15)
	r.award("id-c", 5)

	entries := r.scoreboard()

	assert.Equal(t, []ScoreboardEntry{
		{Rank: 1, Name: "bob", Points: 15},
		{Rank: 2, Name: "carol", Points: 5},
		{Rank: 3, Name: "alice", Points: 0},
	}, entries)
}

func TestRegistry_ScoreboardTiesKeepJoinOrder(t *testing.T) {
	r := newRegistry()

	first := testPlayer("id-1", "first")
	second := testPlayer("id-2", "second")
	third := testPlayer("id-3", "third")
	r.add(first)
	r.add(second)
	r.add(third)

	r.award("id-1", 5)
	r.award("id-2", 5)
	r.award("id-3", 5)

	entries := r.scoreboard()

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, "first", entries[0].Name)
	assert.Equal(t, "second", entries[1].Name)
	assert.Equal(t, "third", entries[2].Name)
}
