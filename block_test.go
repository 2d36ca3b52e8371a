package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSwapTransitionsToFloat(t *testing.T) {
	block := NewBlock(ColorRed)
	block.StartSwap(SwapLeft)
	assert.Equal(t, BlockSwappingLeft, block.State)
	assert.Equal(t, swapTicks, block.SwapTimer)
	assert.False(t, block.CanMatch())

	for i := 0; i < swapTicks-1; i++ {
		block.Tick()
		assert.Equal(t, BlockSwappingLeft, block.State)
	}
	block.Tick()
	assert.Equal(t, BlockFloating, block.State)
	assert.Equal(t, floatTicks, block.FloatTimer)
	assert.True(t, block.Falling)
}

func TestBlockFloatTimerElapses(t *testing.T) {
	block := NewBlock(ColorGreen)
	block.StartFloat()
	require.Equal(t, BlockFloating, block.State)
	require.True(t, block.Falling)

	for i := 0; i < floatTicks; i++ {
		assert.False(t, block.FloatElapsed())
		block.Tick()
	}
	assert.True(t, block.FloatElapsed())
}

func TestBlockLandChainEligibility(t *testing.T) {
	block := NewBlock(ColorCyan)
	block.StartFloat()
	block.Land(true)
	assert.Equal(t, BlockNormal, block.State)
	assert.False(t, block.Falling)
	assert.True(t, block.JustLanded())
	assert.True(t, block.CanMatch())

	// The landed flag is a one-tick signal.
	block.Tick()
	assert.False(t, block.JustLanded())
}

func TestBlockLandInPlaceIsNotChainEligible(t *testing.T) {
	block := NewBlock(ColorCyan)
	block.StartFloat()
	block.Land(false)
	assert.False(t, block.JustLanded())
}

func TestBlockExplosionTiming(t *testing.T) {
	cases := []struct {
		order int
		ticks int
	}{
		{0, 61},
		{1, 70},
		{2, 79},
		{5, 106},
	}
	for _, tc := range cases {
		block := NewBlock(ColorPurple)
		block.MarkMatched()
		block.StartExplosion(tc.order)
		require.Equal(t, tc.ticks, block.ExplosionTicks)
		require.Equal(t, BlockExploding, block.State)

		for i := 0; i < tc.ticks-1; i++ {
			block.Tick()
			assert.False(t, block.ExplosionDone())
		}
		block.Tick()
		assert.True(t, block.ExplosionDone())

		// Timer saturates instead of overflowing.
		block.Tick()
		assert.Equal(t, tc.ticks, block.ExplosionTimer)
	}
}

func TestBlockCanMatchOnlyWhenStable(t *testing.T) {
	block := NewBlock(ColorYellow)
	assert.True(t, block.CanMatch())
	assert.True(t, block.IsStable())
	assert.False(t, block.IsAnimating())

	block.Falling = true
	assert.False(t, block.CanMatch())
	block.Falling = false

	block.MarkMatched()
	assert.False(t, block.CanMatch())
	assert.True(t, block.IsAnimating())
}
