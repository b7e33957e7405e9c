package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/track"
)

func TestTurn(t *testing.T) {
	tee := track.BranchDescriptor{CanGoLeft: true, CanGoRight: true}
	tests := []struct {
		turn  Turn
		want  r3.Vec
		opens bool
	}{
		{TurnForward, track.Forward, false},
		{TurnLeft, track.Left(track.Forward), true},
		{TurnRight, track.Right(track.Forward), true},
	}
	for _, tt := range tests {
		t.Run(tt.turn.String(), func(t *testing.T) {
			vecNear(t, tt.want, tt.turn.Apply(track.Forward))
			assert.Equal(t, tt.opens, tt.turn.Opens(tee))
		})
	}
	assert.Equal(t, "unknown", Turn(9).String())
}

func TestRunnerAccelerates(t *testing.T) {
	r := NewRunner(r3.Vec{}, track.Forward)
	r.Update(0.5, 40, nil)
	assert.InDelta(t, 30, r.Speed, 1e-9)
	assert.InDelta(t, 15, r.Distance, 1e-9)
	vecNear(t, r3.Vec{Z: 15}, r.Position)

	r.Update(0.5, 40, nil)
	assert.InDelta(t, 40, r.Speed, 1e-9)
	assert.InDelta(t, 35, r.Distance, 1e-9)
}

func TestRunnerStopsOnPendingBranch(t *testing.T) {
	r := NewRunner(r3.Vec{}, track.Forward)
	r.Speed = 40
	p := &track.PendingBranch{Handle: 3, Position: r3.Vec{Z: 10}, Direction: track.Forward}

	r.Update(0.2, 40, p)
	assert.False(t, r.Waiting)
	vecNear(t, r3.Vec{Z: 8}, r.Position)

	r.Update(0.2, 40, p)
	require.True(t, r.Waiting)
	vecNear(t, p.Position, r.Position)
	assert.InDelta(t, 10, r.Distance, 1e-9)
	assert.Zero(t, r.Speed)

	r.Update(0.5, 40, p)
	assert.InDelta(t, 10, r.Distance, 1e-9, "waiting runners do not move")
	assert.InDelta(t, 0.5, r.WaitTime, 1e-9)

	left := track.Left(track.Forward)
	r.Turn(left)
	r.Update(0.5, 40, nil)
	assert.False(t, r.Waiting)
	vecNear(t, track.Advance(p.Position, left, 15), r.Position)
	vecNear(t, r3.Vec{Z: 10}, r.Trail().At(10))
}

func TestRunnerIgnoresBranchBehind(t *testing.T) {
	r := NewRunner(r3.Vec{Z: 20}, track.Forward)
	r.Speed = 40
	r.Update(0.1, 40, &track.PendingBranch{Position: r3.Vec{Z: 10}, Direction: track.Forward})
	assert.False(t, r.Waiting)
	vecNear(t, r3.Vec{Z: 24}, r.Position)
}

func TestPursuerCatches(t *testing.T) {
	r := NewRunner(r3.Vec{}, track.Forward)
	p := NewPursuer(20)
	for i := 0; i < 10; i++ {
		r.Update(0.1, 10, nil)
		r.Speed = 10
		p.Update(0.1, 10, r.Trail())
	}
	assert.False(t, p.Caught(r))
	assert.InDelta(t, 20, p.Gap(r), 1.5)

	r.Waiting = true
	for i := 0; i < 20 && !p.Caught(r); i++ {
		r.Update(0.1, 10, nil)
		p.Update(0.1, 10, r.Trail())
	}
	assert.True(t, p.Caught(r))
	assert.LessOrEqual(t, p.Gap(r), CatchDistance)
}
