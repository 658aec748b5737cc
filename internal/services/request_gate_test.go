package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestGate_LatestWins(t *testing.T) {
	gate := NewRequestGate()

	first := gate.Begin("client-a")
	second := gate.Begin("client-a")
	other := gate.Begin("client-b")

	assert.NotEqual(t, first, second)
	assert.False(t, gate.IsLatest("client-a", first))
	assert.True(t, gate.IsLatest("client-a", second))
	assert.Equal(t, 2, gate.Pending())

	// The slow first request finishes after the second started
	assert.False(t, gate.Finish("client-a", first))
	assert.True(t, gate.Finish("client-a", second))
	assert.True(t, gate.Finish("client-b", other))
	assert.Equal(t, 0, gate.Pending())
}

func TestRequestGate_FinishAfterNewerFinished(t *testing.T) {
	gate := NewRequestGate()

	first := gate.Begin("client")
	second := gate.Begin("client")
	assert.True(t, gate.Finish("client", second))
	assert.False(t, gate.Finish("client", first))
}
