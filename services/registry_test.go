package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbingo/bingo-server/protocol"
)

func TestRegistryAssociation(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}

	// Unknown connections have no association.
	_, _, ok := r.Association(c)
	assert.False(t, ok)

	r.Add(c)
	_, _, ok = r.Association(c)
	assert.False(t, ok, "fresh connections start unassociated")

	r.Associate(c, 7, 3)
	userID, gameID, ok := r.Association(c)
	require.True(t, ok)
	assert.Equal(t, uint(7), userID)
	assert.Equal(t, uint(3), gameID)

	r.Clear(c)
	_, _, ok = r.Association(c)
	assert.False(t, ok)
}

func TestRegistryAssociateUnknownConnIsNoop(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}

	r.Associate(c, 7, 3)
	_, _, ok := r.Association(c)
	assert.False(t, ok)
}

func TestRegistryBroadcastToGame(t *testing.T) {
	r := NewRegistry()
	inGame1 := &fakeConn{}
	alsoInGame1 := &fakeConn{}
	inGame2 := &fakeConn{}
	idle := &fakeConn{}
	for _, c := range []*fakeConn{inGame1, alsoInGame1, inGame2, idle} {
		r.Add(c)
	}
	r.Associate(inGame1, 1, 1)
	r.Associate(alsoInGame1, 2, 1)
	r.Associate(inGame2, 3, 2)

	msg := protocol.ErrorMessage("ping")
	r.BroadcastToGame(1, msg)

	assert.Len(t, inGame1.msgs, 1)
	assert.Len(t, alsoInGame1.msgs, 1)
	assert.Empty(t, inGame2.msgs)
	assert.Empty(t, idle.msgs)
}

func TestRegistryBroadcastExcludes(t *testing.T) {
	r := NewRegistry()
	winner := &fakeConn{}
	loser := &fakeConn{}
	r.Add(winner)
	r.Add(loser)
	r.Associate(winner, 1, 1)
	r.Associate(loser, 2, 1)

	r.BroadcastToGame(1, protocol.ErrorMessage("ping"), winner)

	assert.Empty(t, winner.msgs)
	assert.Len(t, loser.msgs, 1)
}

func TestRegistryBroadcastAll(t *testing.T) {
	r := NewRegistry()
	conns := []*fakeConn{{}, {}, {}}
	for _, c := range conns {
		r.Add(c)
	}
	r.Associate(conns[0], 1, 1)

	r.BroadcastAll(protocol.ErrorMessage("ping"))

	for _, c := range conns {
		assert.Len(t, c.msgs, 1)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	r.Add(c)
	r.Associate(c, 1, 1)

	r.Remove(c)

	r.BroadcastToGame(1, protocol.ErrorMessage("ping"))
	assert.Empty(t, c.msgs)
}
