package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyRunningBoard() *Board {
	b := NewBoardFromSeed(1)
	b.grid = [boardHeight][boardWidth]Tile{}
	b.state = BoardRunning
	b.graceTimer = 0
	b.autoRaise = false
	return b
}

func placeBlock(b *Board, row, col int, color BlockColor) *Block {
	block := NewBlock(color)
	b.grid[row][col] = Tile{Type: TileBlock, Block: block}
	return block
}

type audioRecorder struct {
	thumps []bool
	chains [][2]int
	panics []bool
}

func (a *audioRecorder) GarbageLanded(big bool) { a.thumps = append(a.thumps, big) }
func (a *audioRecorder) PlayChain(chainLength, blockCount int) {
	a.chains = append(a.chains, [2]int{chainLength, blockCount})
}
func (a *audioRecorder) PanicChanged(panic bool) { a.panics = append(a.panics, panic) }

func TestResetForNewGame(t *testing.T) {
	b := NewBoardFromSeed(42)
	assert.Equal(t, 0, b.Score())
	assert.Equal(t, 1, b.ChainCounter())
	assert.Equal(t, BoardCountdown, b.State())

	// Bottom rows populated, the rest air.
	for row := 0; row < bottomFillRows; row++ {
		for col := 0; col < boardWidth; col++ {
			tile := b.Tile(row, col)
			require.Equal(t, TileBlock, tile.Type)
			require.NotNil(t, tile.Block)
		}
	}
	for row := bottomFillRows; row <= topRow; row++ {
		for col := 0; col < boardWidth; col++ {
			assert.Equal(t, TileAir, b.Tile(row, col).Type)
		}
	}
	for col := 0; col < boardWidth; col++ {
		require.Equal(t, TileBlock, b.BufferRowTile(col).Type)
	}

	// No immediate 3-in-a-row anywhere in the fill.
	for row := 0; row < bottomFillRows; row++ {
		for col := 0; col < boardWidth; col++ {
			color := b.colorAt(row, col)
			if col >= 2 {
				assert.False(t, color == b.colorAt(row, col-1) && color == b.colorAt(row, col-2),
					"horizontal run at %d,%d", row, col)
			}
			if row >= 2 {
				assert.False(t, color == b.colorAt(row-1, col) && color == b.colorAt(row-2, col),
					"vertical run at %d,%d", row, col)
			}
		}
	}
}

func TestTileQueries(t *testing.T) {
	b := NewBoardFromSeed(7)
	assert.Nil(t, b.Tile(-1, 0))
	assert.Nil(t, b.Tile(0, -1))
	assert.Nil(t, b.Tile(boardHeight, 0))
	assert.Nil(t, b.Tile(0, boardWidth))
	assert.Nil(t, b.BufferRowTile(-1))
	assert.Nil(t, b.BufferRowTile(boardWidth))

	first := b.Tile(2, 3)
	second := b.Tile(2, 3)
	assert.Same(t, first, second)
	assert.Equal(t, *first, *second)
}

func TestCountdownPhases(t *testing.T) {
	b := NewBoardFromSeed(3)
	seen := map[int]bool{}
	for i := 0; i < countdownTicks; i++ {
		report := b.Tick()
		require.GreaterOrEqual(t, report.Countdown, 0)
		require.LessOrEqual(t, report.Countdown, 3)
		seen[report.Countdown] = true
	}
	assert.Equal(t, map[int]bool{3: true, 2: true, 1: true, 0: true}, seen)
	assert.Equal(t, BoardRunning, b.State())
}

func TestSimpleMatchScoresAndExplodes(t *testing.T) {
	b := emptyRunningBoard()
	placeBlock(b, 0, 1, ColorRed)
	placeBlock(b, 0, 2, ColorRed)
	placeBlock(b, 0, 3, ColorRed)

	report := b.Tick()
	assert.True(t, report.Matched)
	assert.Equal(t, 3, report.MatchedCells)
	assert.Equal(t, 1, report.ComboSize)
	assert.False(t, report.ChainActive)
	assert.Equal(t, 90, report.ScoreDelta)

	for i := 0; i < 80; i++ {
		b.Tick()
	}
	for col := 1; col <= 3; col++ {
		assert.Equal(t, TileAir, b.Tile(0, col).Type, "col %d", col)
	}
	assert.GreaterOrEqual(t, b.Score(), 90)
}

func TestExplosionOrderStaggersRemoval(t *testing.T) {
	b := emptyRunningBoard()
	placeBlock(b, 0, 1, ColorRed)
	placeBlock(b, 0, 2, ColorRed)
	placeBlock(b, 0, 3, ColorRed)
	b.Tick()

	// Orders 0,1,2 finish at 61, 70 and 79 ticks after the match.
	for i := 0; i < 61; i++ {
		b.Tick()
	}
	assert.Equal(t, TileAir, b.Tile(0, 1).Type)
	assert.Equal(t, TileBlock, b.Tile(0, 2).Type)
	assert.Equal(t, TileBlock, b.Tile(0, 3).Type)
	for i := 0; i < 9; i++ {
		b.Tick()
	}
	assert.Equal(t, TileAir, b.Tile(0, 2).Type)
	assert.Equal(t, TileBlock, b.Tile(0, 3).Type)
}

func TestChainFlaggedMatchScore(t *testing.T) {
	b := emptyRunningBoard()
	b.chainCounter = 2
	placeBlock(b, 0, 1, ColorGreen)
	placeBlock(b, 0, 2, ColorGreen)
	placeBlock(b, 0, 3, ColorGreen)
	b.grid[0][1].Chain = true

	report := b.Tick()
	assert.True(t, report.ChainActive)
	assert.Equal(t, 90+50, report.ScoreDelta)
	assert.Equal(t, 3, b.ChainCounter())
}

func TestLongChainScoreExtrapolation(t *testing.T) {
	b := emptyRunningBoard()
	b.chainCounter = 12
	placeBlock(b, 0, 1, ColorYellow)
	placeBlock(b, 0, 2, ColorYellow)
	placeBlock(b, 0, 3, ColorYellow)
	b.grid[0][2].Chain = true

	report := b.Tick()
	assert.True(t, report.ChainActive)
	assert.Equal(t, 90+1500, report.ScoreDelta)
}

func TestChainScoreTable(t *testing.T) {
	assert.Equal(t, 0, chainScoreFor(1))
	assert.Equal(t, 50, chainScoreFor(2))
	assert.Equal(t, 80, chainScoreFor(3))
	assert.Equal(t, 150, chainScoreFor(4))
	assert.Equal(t, 300, chainScoreFor(5))
	assert.Equal(t, 400, chainScoreFor(6))
	assert.Equal(t, 500, chainScoreFor(7))
	assert.Equal(t, 700, chainScoreFor(8))
	assert.Equal(t, 900, chainScoreFor(9))
	assert.Equal(t, 1100, chainScoreFor(10))
	assert.Equal(t, 1300, chainScoreFor(11))
	assert.Equal(t, 1500, chainScoreFor(12))
	assert.Equal(t, 1700, chainScoreFor(13))
}

func TestComboGroupsMultiplyScore(t *testing.T) {
	b := emptyRunningBoard()
	placeBlock(b, 0, 0, ColorRed)
	placeBlock(b, 0, 1, ColorRed)
	placeBlock(b, 0, 2, ColorRed)
	placeBlock(b, 0, 3, ColorGreen)
	placeBlock(b, 0, 4, ColorGreen)
	placeBlock(b, 0, 5, ColorGreen)

	report := b.Tick()
	assert.Equal(t, 6, report.MatchedCells)
	assert.Equal(t, 2, report.ComboSize)
	// 10*36 = 360, times 1.5 for the double combo.
	assert.Equal(t, 540, report.ScoreDelta)
}

func TestChainEndsAfterTwoQuietTicks(t *testing.T) {
	b := emptyRunningBoard()
	b.chainCounter = 3

	report := b.Tick()
	assert.False(t, report.ChainEnded)
	assert.Equal(t, 3, b.ChainCounter())

	report = b.Tick()
	assert.True(t, report.ChainEnded)
	assert.Equal(t, 3, report.LastChain)
	assert.Equal(t, 1, b.ChainCounter())
	assert.Equal(t, 3, b.LastChain())
}

func TestPlainMatchBreaksChain(t *testing.T) {
	b := emptyRunningBoard()
	b.chainCounter = 4
	placeBlock(b, 0, 1, ColorCyan)
	placeBlock(b, 0, 2, ColorCyan)
	placeBlock(b, 0, 3, ColorCyan)

	report := b.Tick()
	assert.True(t, report.Matched)
	assert.False(t, report.ChainActive)
	assert.Equal(t, 90, report.ScoreDelta)
	assert.Equal(t, 1, b.ChainCounter())
}

func TestUnsupportedBlockFloatsAndFalls(t *testing.T) {
	b := emptyRunningBoard()
	block := placeBlock(b, 5, 2, ColorPurple)

	b.Tick()
	assert.Equal(t, BlockFloating, block.State)
	assert.Equal(t, floatTicks, block.FloatTimer)
	assert.True(t, block.Falling)

	for i := 0; i < floatTicks; i++ {
		b.Tick()
	}
	assert.Equal(t, TileAir, b.Tile(5, 2).Type)
	landed := b.Tile(0, 2)
	require.Equal(t, TileBlock, landed.Type)
	assert.Same(t, block, landed.Block)
	assert.Equal(t, BlockNormal, block.State)
	assert.False(t, block.Falling)
}

func TestFloatPropagatesThroughColumnInOneTick(t *testing.T) {
	b := emptyRunningBoard()
	lower := placeBlock(b, 1, 4, ColorRed)
	middle := placeBlock(b, 2, 4, ColorGreen)
	upper := placeBlock(b, 3, 4, ColorYellow)

	b.Tick()
	assert.Equal(t, BlockFloating, lower.State)
	assert.Equal(t, BlockFloating, middle.State)
	assert.Equal(t, BlockFloating, upper.State)

	for i := 0; i < floatTicks; i++ {
		b.Tick()
	}
	assert.Same(t, lower, b.Tile(0, 4).Block)
	assert.Same(t, middle, b.Tile(1, 4).Block)
	assert.Same(t, upper, b.Tile(2, 4).Block)
}

func TestExplosionFlagsStackAboveAsChain(t *testing.T) {
	b := emptyRunningBoard()
	placeBlock(b, 0, 0, ColorRed)
	placeBlock(b, 0, 1, ColorRed)
	placeBlock(b, 0, 2, ColorRed)
	above := placeBlock(b, 1, 0, ColorGreen)

	b.Tick()
	// Ride out the first explosion (order 0 at column 0).
	for i := 0; i < 61; i++ {
		b.Tick()
	}
	require.Equal(t, TileAir, b.Tile(0, 0).Type)
	// The block above was flagged and floated within the same tick.
	assert.Equal(t, BlockFloating, above.State)
	found := false
	for row := 0; row <= topRow; row++ {
		tile := b.Tile(row, 0)
		if tile.Type == TileBlock && tile.Block == above {
			assert.True(t, tile.Chain)
			found = true
		}
	}
	assert.True(t, found)
}

func TestChainFlagSurvivesFall(t *testing.T) {
	b := emptyRunningBoard()
	block := placeBlock(b, 4, 3, ColorCyan)
	b.grid[4][3].Chain = true

	for i := 0; i <= floatTicks; i++ {
		b.Tick()
	}
	landed := b.Tile(0, 3)
	require.Same(t, block, landed.Block)
	assert.True(t, landed.Chain)
	assert.False(t, b.Tile(4, 3).Chain)
}

func TestLandedMatchIsChainEligible(t *testing.T) {
	b := emptyRunningBoard()
	placeBlock(b, 0, 1, ColorRed)
	placeBlock(b, 0, 2, ColorRed)
	faller := placeBlock(b, 4, 3, ColorRed)

	// The falling block completes the run the tick it lands.
	var sawChain bool
	for i := 0; i <= floatTicks; i++ {
		report := b.Tick()
		if report.ChainActive {
			sawChain = true
		}
	}
	assert.Equal(t, BlockExploding, faller.State)
	assert.True(t, sawChain)
	assert.Equal(t, 2, b.ChainCounter())
}

func TestPanicAndWarnFlags(t *testing.T) {
	b := emptyRunningBoard()
	audio := &audioRecorder{}
	b.SetAudioSystem(audio)
	colors := []BlockColor{ColorRed, ColorGreen, ColorRed, ColorGreen, ColorRed, ColorGreen,
		ColorYellow, ColorCyan, ColorYellow, ColorCyan, ColorYellow}
	for row := 0; row <= warnHeight; row++ {
		placeBlock(b, row, 2, colors[row%len(colors)])
	}

	b.Tick()
	assert.True(t, b.InPanic())
	assert.True(t, b.WarnColumns()[2])
	assert.False(t, b.WarnColumns()[3])
	require.Len(t, audio.panics, 1)
	assert.True(t, audio.panics[0])
}

func TestGameOverRequiresExpiredGrace(t *testing.T) {
	b := emptyRunningBoard()
	for row := 0; row <= topRow; row++ {
		color := ColorRed
		if row%2 == 1 {
			color = ColorGreen
		}
		placeBlock(b, row, 0, color)
	}

	b.graceTimer = 2
	b.Tick()
	assert.False(t, b.IsGameOver())

	b.graceTimer = 0
	report := b.Tick()
	assert.True(t, b.IsGameOver())
	assert.True(t, report.GameOver)

	// Terminal state: further ticks change nothing.
	score := b.Score()
	b.Tick()
	assert.Equal(t, score, b.Score())
	assert.Equal(t, BoardGameOver, b.State())
}

func TestForcedRaiseProducesFullRowRise(t *testing.T) {
	b := NewBoardFromSeed(9)
	b.state = BoardRunning
	b.graceTimer = 0
	b.autoRaise = false

	var oldRows [bottomFillRows][boardWidth]BlockColor
	for row := 0; row < bottomFillRows; row++ {
		for col := 0; col < boardWidth; col++ {
			oldRows[row][col] = b.colorAt(row, col)
		}
	}
	var oldBuffer [boardWidth]BlockColor
	for col := 0; col < boardWidth; col++ {
		oldBuffer[col] = b.BufferRowTile(col).Block.Color
	}
	oldCursorY := b.CursorY()

	var raised bool
	for i := 0; i < stackRaiseSteps; i++ {
		b.InputForceStackRaise()
		if b.Tick().RowRaised {
			raised = true
		}
	}
	require.True(t, raised)
	assert.Equal(t, 0, b.StackOffset())
	assert.Equal(t, 1, b.Score(), "forced raise awards one point")
	assert.Equal(t, oldCursorY+1, b.CursorY())

	for row := 0; row < bottomFillRows; row++ {
		for col := 0; col < boardWidth; col++ {
			assert.Equal(t, oldRows[row][col], b.colorAt(row+1, col))
		}
	}
	for col := 0; col < boardWidth; col++ {
		assert.Equal(t, oldBuffer[col], b.colorAt(0, col))
		assert.Equal(t, TileBlock, b.BufferRowTile(col).Type)
	}
}

func TestAutoRaiseGatedByStepTimer(t *testing.T) {
	b := NewBoardFromSeed(9)
	b.state = BoardRunning
	b.graceTimer = 0
	b.SetStackRaiseSpeed(10)

	for i := 0; i < 10; i++ {
		b.Tick()
	}
	assert.Equal(t, 1, b.StackOffset())
	for i := 0; i < 9; i++ {
		b.Tick()
	}
	assert.Equal(t, 1, b.StackOffset())
	b.Tick()
	assert.Equal(t, 2, b.StackOffset())
}

func TestRaiseSuppressedWhileAnimating(t *testing.T) {
	b := emptyRunningBoard()
	placeBlock(b, 0, 1, ColorRed)
	placeBlock(b, 0, 2, ColorRed)
	placeBlock(b, 0, 3, ColorRed)
	b.Tick() // match starts exploding

	for i := 0; i < 20; i++ {
		b.InputForceStackRaise()
		b.Tick()
	}
	assert.Equal(t, 0, b.StackOffset())
}

func TestSwapGraceSuppressesRaise(t *testing.T) {
	b := NewBoardFromSeed(9)
	b.state = BoardRunning
	b.graceTimer = 0
	b.autoRaise = false

	b.InputForceStackRaise()
	for i := 0; i < 5; i++ {
		b.Tick()
	}
	require.Equal(t, 5, b.StackOffset())

	require.True(t, b.Swap())
	offset := b.StackOffset()
	for i := 0; i < swapGraceTicks; i++ {
		b.Tick()
	}
	assert.Equal(t, offset, b.StackOffset())
}

func TestTileInvariantUnderSimulation(t *testing.T) {
	b := NewBoardFromSeed(11)
	b.state = BoardRunning
	b.graceTimer = 0
	b.QueueGarbage(false, 3, GarbageNormal)
	b.QueueGarbage(true, 1, GarbageGray)

	for i := 0; i < 400; i++ {
		if i%7 == 0 {
			b.SetPosition(i%(boardWidth-1), i%(topRow+1))
			b.Swap()
		}
		b.Tick()

		for row := 0; row < boardHeight; row++ {
			for col := 0; col < boardWidth; col++ {
				tile := b.Tile(row, col)
				switch tile.Type {
				case TileAir:
					require.Nil(t, tile.Block, "air tile with block at %d,%d", row, col)
					require.Zero(t, tile.Garbage, "air tile with garbage at %d,%d", row, col)
				case TileBlock:
					require.NotNil(t, tile.Block, "block tile without block at %d,%d", row, col)
					require.Zero(t, tile.Garbage)
				case TileGarbage:
					require.Nil(t, tile.Block)
					require.NotNil(t, b.garbageByID(tile.Garbage), "dangling garbage ref at %d,%d", row, col)
				}
			}
		}
		for _, g := range b.garbage {
			for row := g.Y; row < g.Y+g.Height; row++ {
				for col := g.X; col < g.X+g.Width; col++ {
					tile := b.Tile(row, col)
					if tile == nil {
						continue
					}
					require.Equal(t, TileGarbage, tile.Type)
					require.Equal(t, g.ID, tile.Garbage)
				}
			}
		}
		require.GreaterOrEqual(t, b.ChainCounter(), 1)
	}
}
