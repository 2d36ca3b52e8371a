package main

import (
	"math/rand"
	"time"
)

const (
	boardWidth  = 6
	boardHeight = 24
	topRow      = 11

	panicHeight = 9
	warnHeight  = 10

	countdownTicks    = 188
	stackRaiseSteps   = 32
	defaultRaiseTicks = 10
	initialGraceTicks = 180
	swapGraceTicks    = 30
	bottomFillRows    = 6
)

type TileType int

const (
	TileAir TileType = iota
	TileBlock
	TileGarbage
)

type Tile struct {
	Type    TileType
	Block   *Block
	Garbage GarbageID
	Chain   bool
}

type BoardState int

const (
	BoardCountdown BoardState = iota
	BoardRunning
	BoardWon
	BoardGameOver
)

// AudioSystem receives fire-and-forget notifications from the simulation.
// A nil AudioSystem is valid; notifications never affect board state.
type AudioSystem interface {
	GarbageLanded(big bool)
	PlayChain(chainLength, blockCount int)
	PanicChanged(panic bool)
}

// TickReport is the one-shot outcome of a single Tick call. Everything a
// caller needs to react to (sounds, score popups, mode logic) is here;
// persistent state is read through the Board's query methods.
type TickReport struct {
	Matched      bool
	MatchedCells int
	ComboSize    int
	ChainActive  bool
	ChainCounter int
	ChainEnded   bool
	LastChain    int
	ScoreDelta   int
	RowRaised    bool
	Countdown    int // 3..1, 0 is GO, -1 when not counting
	PanicEntered bool
	PanicLeft    bool
	GameOver     bool
}

type Board struct {
	grid      [boardHeight][boardWidth]Tile
	bufferRow [boardWidth]Tile

	garbage       []*GarbageBlock
	garbageQueue  []GarbageSpec
	nextGarbageID GarbageID

	cursorX int
	cursorY int

	state          BoardState
	countdownTimer int

	score                    int
	chainCounter             int
	lastChain                int
	consecutiveNonMatchTicks int

	stackOffset     int
	stackRaiseTimer int
	stackRaiseTicks int
	autoRaise       bool
	forceRaise      bool
	graceTimer      int
	garbageEnabled  bool

	panic        bool
	warnColumns  [boardWidth]bool
	activeBlocks bool

	rng   *rand.Rand
	audio AudioSystem
}

func NewBoard() *Board {
	return NewBoardFromSeed(time.Now().UnixNano())
}

func NewBoardFromSeed(seed int64) *Board {
	b := &Board{rng: rand.New(rand.NewSource(seed))}
	b.ResetForNewGame()
	return b
}

func (b *Board) ResetForNewGame() {
	b.grid = [boardHeight][boardWidth]Tile{}
	b.garbage = nil
	b.garbageQueue = nil
	b.cursorX = 2
	b.cursorY = 4
	b.state = BoardCountdown
	b.countdownTimer = 0
	b.score = 0
	b.chainCounter = 1
	b.lastChain = 0
	b.consecutiveNonMatchTicks = 0
	b.stackOffset = 0
	b.stackRaiseTimer = 0
	if b.stackRaiseTicks == 0 {
		b.stackRaiseTicks = defaultRaiseTicks
	}
	b.autoRaise = true
	b.forceRaise = false
	b.graceTimer = initialGraceTicks
	b.garbageEnabled = true
	b.panic = false
	b.warnColumns = [boardWidth]bool{}
	b.activeBlocks = false
	b.fillInitialRows()
	b.generateBufferRow()
}

// fillInitialRows populates the bottom rows with random colors that do not
// form an immediate 3-in-a-row in either direction.
func (b *Board) fillInitialRows() {
	for row := 0; row < bottomFillRows; row++ {
		for col := 0; col < boardWidth; col++ {
			tile := &b.grid[row][col]
			tile.Type = TileBlock
			tile.Block = NewBlock(b.pickSafeColor(row, col))
		}
	}
}

func (b *Board) pickSafeColor(row, col int) BlockColor {
	for {
		color := randomColor(b.rng)
		if col >= 2 &&
			b.colorAt(row, col-1) == color && b.colorAt(row, col-2) == color {
			continue
		}
		if row >= 2 &&
			b.colorAt(row-1, col) == color && b.colorAt(row-2, col) == color {
			continue
		}
		return color
	}
}

func (b *Board) colorAt(row, col int) BlockColor {
	tile := b.Tile(row, col)
	if tile == nil || tile.Type != TileBlock {
		return -1
	}
	return tile.Block.Color
}

// generateBufferRow produces the next hidden row. Colors are constrained so
// that revealing the row cannot complete a run with the rows above it.
func (b *Board) generateBufferRow() {
	for col := 0; col < boardWidth; col++ {
		for {
			color := randomColor(b.rng)
			if col >= 2 &&
				b.bufferRow[col-1].Block.Color == color &&
				b.bufferRow[col-2].Block.Color == color {
				continue
			}
			if b.colorAt(0, col) == color && b.colorAt(1, col) == color {
				continue
			}
			b.bufferRow[col] = Tile{Type: TileBlock, Block: NewBlock(color)}
			break
		}
	}
}

// Tick advances the simulation by exactly one fixed step.
func (b *Board) Tick() TickReport {
	report := TickReport{Countdown: -1, ChainCounter: b.chainCounter}
	switch b.state {
	case BoardWon, BoardGameOver:
		// Terminal states never mutate.
		return report
	}
	b.initTick()
	switch b.state {
	case BoardCountdown:
		b.countdownTimer++
		report.Countdown = countdownValue(b.countdownTimer)
		if b.countdownTimer >= countdownTicks {
			b.state = BoardRunning
		}
	case BoardRunning:
		b.checkGameOver(&report)
		if b.state == BoardRunning {
			b.updatePanicState(&report)
			b.processGarbageQueue()
			b.handleExplosions()
			b.handleGravity()
			b.handleMatching(&report)
			b.handleStackRaising(&report)
		}
	}
	b.updateVisualState()
	report.ChainCounter = b.chainCounter
	return report
}

func countdownValue(timer int) int {
	value := 3 - timer*4/countdownTicks
	if value < 0 {
		value = 0
	}
	return value
}

func (b *Board) initTick() {
	for row := 0; row < boardHeight; row++ {
		for col := 0; col < boardWidth; col++ {
			if tile := &b.grid[row][col]; tile.Type == TileBlock {
				tile.Block.Tick()
			}
		}
	}
	for _, g := range b.garbage {
		g.Tick()
	}
	b.resolveGarbageTransformations()
	b.resolveGarbageFalls()
}

func (b *Board) checkGameOver(report *TickReport) {
	if b.graceTimer > 0 {
		return
	}
	for col := 0; col < boardWidth; col++ {
		tile := &b.grid[topRow][col]
		if tile.Type == TileBlock && tile.Block.IsStable() {
			b.state = BoardGameOver
			report.GameOver = true
			return
		}
	}
}

func (b *Board) updatePanicState(report *TickReport) {
	highest := b.HighestOccupiedRow()
	inPanic := highest >= panicHeight
	if inPanic != b.panic {
		b.panic = inPanic
		if inPanic {
			report.PanicEntered = true
		} else {
			report.PanicLeft = true
		}
		if b.audio != nil {
			b.audio.PanicChanged(inPanic)
		}
	}
	for col := 0; col < boardWidth; col++ {
		b.warnColumns[col] = b.grid[warnHeight][col].Type == TileBlock
	}
}

// HighestOccupiedRow returns the highest visible row index holding a block
// or garbage tile, or -1 for an empty board.
func (b *Board) HighestOccupiedRow() int {
	for row := topRow; row >= 0; row-- {
		for col := 0; col < boardWidth; col++ {
			if b.grid[row][col].Type != TileAir {
				return row
			}
		}
	}
	return -1
}

// handleExplosions removes blocks whose explosion has run out and flags the
// contiguous stack above each removed block as chain-eligible, floating it
// immediately. This is the mechanism that produces chain reactions.
func (b *Board) handleExplosions() {
	for row := 0; row <= topRow; row++ {
		for col := 0; col < boardWidth; col++ {
			tile := &b.grid[row][col]
			if tile.Type != TileBlock || !tile.Block.ExplosionDone() {
				continue
			}
			tile.Type = TileAir
			tile.Block = nil
			tile.Chain = false
			for above := row + 1; above < boardHeight; above++ {
				upper := &b.grid[above][col]
				if upper.Type != TileBlock {
					break
				}
				upper.Chain = true
				if upper.Block.State == BlockNormal && !upper.Block.Falling {
					upper.Block.StartFloat()
				}
			}
		}
	}
}

// handleGravity runs bottom-up so that a lost support propagates through a
// whole column within one tick, and so that elapsed floaters land before
// the floaters above them resolve.
func (b *Board) handleGravity() {
	for row := 0; row < boardHeight; row++ {
		for col := 0; col < boardWidth; col++ {
			tile := &b.grid[row][col]
			if tile.Type != TileBlock {
				continue
			}
			block := tile.Block
			switch {
			case block.State == BlockNormal && !block.Falling:
				if !b.supported(row, col) {
					block.StartFloat()
				}
			case block.FloatElapsed():
				rest := row
				for rest > 0 && b.grid[rest-1][col].Type == TileAir {
					rest--
				}
				if rest != row {
					dest := &b.grid[rest][col]
					dest.Type = TileBlock
					dest.Block = block
					dest.Chain = tile.Chain
					tile.Type = TileAir
					tile.Block = nil
					tile.Chain = false
				}
				block.Land(rest != row)
			}
		}
	}
}

func (b *Board) supported(row, col int) bool {
	if row == 0 {
		return true
	}
	below := &b.grid[row-1][col]
	switch below.Type {
	case TileGarbage:
		return true
	case TileBlock:
		// Floating blocks are on their way down and carry nothing.
		return below.Block.State != BlockFloating
	}
	return false
}

// handleMatching finds all maximal runs of three or more matching blocks,
// scores them, advances the chain state, and starts the staggered
// explosions.
func (b *Board) handleMatching(report *TickReport) {
	var matched [boardHeight][boardWidth]bool
	count := 0
	for row := 0; row <= topRow; row++ {
		for col := 0; col < boardWidth; col++ {
			count += b.markRun(&matched, row, col, 1, 0)
			count += b.markRun(&matched, row, col, 0, 1)
		}
	}
	if count < 3 {
		b.consecutiveNonMatchTicks++
		if b.consecutiveNonMatchTicks >= 2 && b.chainCounter > 1 {
			report.ChainEnded = true
			report.LastChain = b.chainCounter
			b.lastChain = b.chainCounter
			b.chainCounter = 1
		}
		return
	}
	b.consecutiveNonMatchTicks = 0

	comboCount := b.countComboGroups(&matched)
	chainMatch := false
	for row := 0; row <= topRow && !chainMatch; row++ {
		for col := 0; col < boardWidth; col++ {
			if !matched[row][col] {
				continue
			}
			tile := &b.grid[row][col]
			if tile.Chain || tile.Block.JustLanded() || b.aboveDying(row, col) {
				chainMatch = true
				break
			}
		}
	}

	chainScore := 0
	if chainMatch {
		chainScore = chainScoreFor(b.chainCounter)
		b.chainCounter++
		report.ChainActive = true
		if b.audio != nil && b.chainCounter > 1 {
			b.audio.PlayChain(b.chainCounter, count)
		}
	} else if b.chainCounter > 1 {
		// A plain match mid-chain breaks the chain.
		b.chainCounter = 1
	}

	order := 0
	for row := topRow; row >= 0; row-- {
		for col := 0; col < boardWidth; col++ {
			if !matched[row][col] {
				continue
			}
			block := b.grid[row][col].Block
			block.MarkMatched()
			block.StartExplosion(order)
			order++
			b.triggerNeighborGarbage(row, col)
		}
	}

	delta := calculateAdvancedScore(count, comboCount) + chainScore
	b.score += delta
	report.Matched = true
	report.MatchedCells = count
	report.ComboSize = comboCount
	report.ScoreDelta = delta
}

// markRun marks the maximal same-color run starting at (row,col) in the
// given direction and returns how many cells it newly marked.
func (b *Board) markRun(matched *[boardHeight][boardWidth]bool, row, col, dx, dy int) int {
	tile := &b.grid[row][col]
	if tile.Type != TileBlock || !tile.Block.CanMatch() {
		return 0
	}
	// Only start at the head of a run.
	if prev := b.Tile(row-dy, col-dx); prev != nil &&
		prev.Type == TileBlock && prev.Block.CanMatch() &&
		prev.Block.Color == tile.Block.Color && row-dy <= topRow {
		return 0
	}
	length := 0
	for {
		next := b.Tile(row+dy*length, col+dx*length)
		if next == nil || row+dy*length > topRow ||
			next.Type != TileBlock || !next.Block.CanMatch() ||
			next.Block.Color != tile.Block.Color {
			break
		}
		length++
	}
	if length < 3 {
		return 0
	}
	added := 0
	for i := 0; i < length; i++ {
		r, c := row+dy*i, col+dx*i
		if !matched[r][c] {
			matched[r][c] = true
			added++
		}
	}
	return added
}

// countComboGroups counts connected components of same-color matched cells
// under 4-directional adjacency.
func (b *Board) countComboGroups(matched *[boardHeight][boardWidth]bool) int {
	var seen [boardHeight][boardWidth]bool
	groups := 0
	for row := 0; row <= topRow; row++ {
		for col := 0; col < boardWidth; col++ {
			if !matched[row][col] || seen[row][col] {
				continue
			}
			groups++
			color := b.grid[row][col].Block.Color
			stack := [][2]int{{row, col}}
			seen[row][col] = true
			for len(stack) > 0 {
				cell := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					r, c := cell[0]+d[0], cell[1]+d[1]
					if r < 0 || r > topRow || c < 0 || c >= boardWidth {
						continue
					}
					if seen[r][c] || !matched[r][c] {
						continue
					}
					if b.grid[r][c].Block.Color != color {
						continue
					}
					seen[r][c] = true
					stack = append(stack, [2]int{r, c})
				}
			}
		}
	}
	return groups
}

func (b *Board) aboveDying(row, col int) bool {
	below := b.Tile(row-1, col)
	if below == nil || below.Type != TileBlock {
		return false
	}
	state := below.Block.State
	return state == BlockMatched || state == BlockExploding
}

func (b *Board) triggerNeighborGarbage(row, col int) {
	b.triggerGarbageAt(row+1, col)
	b.triggerGarbageAt(row-1, col)
	b.triggerGarbageAt(row, col+1)
	b.triggerGarbageAt(row, col-1)
}

func calculateAdvancedScore(blockCount, comboCount int) int {
	score := 10 * blockCount * blockCount
	if comboCount > 1 {
		score = score + score*(comboCount-1)/2
	}
	return score
}

var chainScoreTable = [11]int{0, 0, 50, 80, 150, 300, 400, 500, 700, 900, 1100}

func chainScoreFor(chain int) int {
	if chain < 2 {
		return 0
	}
	if chain <= 10 {
		return chainScoreTable[chain]
	}
	return 1300 + 200*(chain-11)
}

// handleStackRaising drives the continuous rise. The per-step timer gates
// automatic raising; a forced raise bypasses it. The grace timer suppresses
// any raising while positive.
func (b *Board) handleStackRaising(report *TickReport) {
	if b.graceTimer > 0 {
		b.graceTimer--
		return
	}
	if !b.autoRaise && !b.forceRaise {
		return
	}
	if b.anyBlockAnimating() || b.topRowOccupied() {
		return
	}
	if b.forceRaise {
		b.stackOffset++
	} else {
		b.stackRaiseTimer++
		if b.stackRaiseTimer >= b.stackRaiseTicks {
			b.stackRaiseTimer = 0
			b.stackOffset++
		}
	}
	if b.stackOffset < stackRaiseSteps {
		return
	}
	b.riseFullRow()
	if b.forceRaise {
		b.score++
		b.forceRaise = false
	}
	report.RowRaised = true
}

func (b *Board) riseFullRow() {
	for row := boardHeight - 1; row >= 1; row-- {
		b.grid[row] = b.grid[row-1]
	}
	b.grid[0] = b.bufferRow
	b.generateBufferRow()
	for _, g := range b.garbage {
		g.Y++
	}
	b.stackOffset = 0
	if b.cursorY < warnHeight {
		b.cursorY++
	}
}

func (b *Board) topRowOccupied() bool {
	for col := 0; col < boardWidth; col++ {
		if b.grid[topRow][col].Type != TileAir {
			return true
		}
	}
	return false
}

func (b *Board) anyBlockAnimating() bool {
	for row := 0; row < boardHeight; row++ {
		for col := 0; col < boardWidth; col++ {
			tile := &b.grid[row][col]
			if tile.Type == TileBlock && tile.Block.IsAnimating() {
				return true
			}
		}
	}
	for _, g := range b.garbage {
		if g.IsAnimating() {
			return true
		}
	}
	return false
}

func (b *Board) updateVisualState() {
	b.activeBlocks = b.anyBlockAnimating()
}

// Tile returns the tile at the given coordinates, or nil when out of
// bounds. Row 0 is the bottom of the board.
func (b *Board) Tile(row, col int) *Tile {
	if row < 0 || row >= boardHeight || col < 0 || col >= boardWidth {
		return nil
	}
	return &b.grid[row][col]
}

func (b *Board) BufferRowTile(col int) *Tile {
	if col < 0 || col >= boardWidth {
		return nil
	}
	return &b.bufferRow[col]
}

func (b *Board) State() BoardState {
	return b.state
}

func (b *Board) Score() int {
	return b.score
}

func (b *Board) ChainCounter() int {
	return b.chainCounter
}

func (b *Board) LastChain() int {
	return b.lastChain
}

func (b *Board) IsGameOver() bool {
	return b.state == BoardGameOver
}

func (b *Board) InPanic() bool {
	return b.panic
}

func (b *Board) WarnColumns() [boardWidth]bool {
	return b.warnColumns
}

func (b *Board) StackOffset() int {
	return b.stackOffset
}

func (b *Board) HasActiveMatches() bool {
	for row := 0; row <= topRow; row++ {
		for col := 0; col < boardWidth; col++ {
			tile := &b.grid[row][col]
			if tile.Type != TileBlock {
				continue
			}
			if state := tile.Block.State; state == BlockMatched || state == BlockExploding {
				return true
			}
		}
	}
	return false
}

func (b *Board) HasFloatingBlocks() bool {
	for row := 0; row < boardHeight; row++ {
		for col := 0; col < boardWidth; col++ {
			tile := &b.grid[row][col]
			if tile.Type == TileBlock && tile.Block.State == BlockFloating {
				return true
			}
		}
	}
	return false
}

// HasActiveBlocks reports whether any block or garbage animation was live at
// the end of the last tick.
func (b *Board) HasActiveBlocks() bool {
	return b.activeBlocks
}

func (b *Board) InputForceStackRaise() {
	if b.state != BoardRunning {
		return
	}
	b.forceRaise = true
}

func (b *Board) SetStackRaiseSpeed(ticks int) {
	if ticks < 1 {
		ticks = 1
	}
	b.stackRaiseTicks = ticks
}

func (b *Board) SetAutoRaise(enabled bool) {
	b.autoRaise = enabled
}

func (b *Board) SetGarbageSpawningEnabled(enabled bool) {
	b.garbageEnabled = enabled
}

func (b *Board) SetAudioSystem(audio AudioSystem) {
	b.audio = audio
}

func (b *Board) SetWon() {
	if b.state == BoardRunning {
		b.state = BoardWon
	}
}
