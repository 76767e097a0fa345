package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	alice := NewBasic("alice", "Alice")
	assert.NoError(t, r.Join(alice))
	assert.Error(t, r.Join(NewBasic("", "")))

	assert.True(t, r.Online("alice"))
	assert.True(t, r.Online(""))
	assert.False(t, r.Online("bob"))

	alice.Disconnect()
	assert.False(t, r.Online("alice"))

	left := []string{}
	r.OnLeave(func(id string) { left = append(left, id) })
	assert.True(t, r.Leave("alice"))
	assert.False(t, r.Leave("alice"))
	assert.Equal(t, []string{"alice"}, left)
	assert.Empty(t, r.List())
}

func TestBasic(t *testing.T) {
	a := NewBasic("steve", "")
	assert.Equal(t, "steve", a.Name())
	assert.NoError(t, a.SendMessage("hi"))
	assert.Equal(t, []string{"hi"}, a.Messages())
}
