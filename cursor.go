package main

// The cursor spans two horizontally adjacent tiles. X addresses the left
// cell, so its valid range is [0, boardWidth-2].

func (b *Board) CursorX() int {
	return b.cursorX
}

func (b *Board) CursorY() int {
	return b.cursorY
}

// Move shifts the cursor. Horizontal movement wraps; vertical movement is
// clamped to the visible rows and rejected at the edges.
func (b *Board) Move(dx, dy int) bool {
	if b.state != BoardRunning {
		return false
	}
	newY := b.cursorY + dy
	if newY < 0 || newY > topRow {
		return false
	}
	newX := b.cursorX + dx
	if newX < 0 {
		newX = boardWidth - 2
	} else if newX > boardWidth-2 {
		newX = 0
	}
	if newX == b.cursorX && newY == b.cursorY {
		return false
	}
	b.cursorX = newX
	b.cursorY = newY
	return true
}

func (b *Board) SetPosition(x, y int) {
	if x < 0 {
		x = 0
	} else if x > boardWidth-2 {
		x = boardWidth - 2
	}
	if y < 0 {
		y = 0
	} else if y > topRow {
		y = topRow
	}
	b.cursorX = x
	b.cursorY = y
}

// Swap exchanges the cursor's two tiles. It refuses garbage tiles and
// blocks that are mid-animation, leaving the board untouched.
func (b *Board) Swap() bool {
	if b.state != BoardRunning {
		return false
	}
	left := &b.grid[b.cursorY][b.cursorX]
	right := &b.grid[b.cursorY][b.cursorX+1]
	if left.Type == TileGarbage || right.Type == TileGarbage {
		return false
	}
	if !swappable(left) || !swappable(right) {
		return false
	}
	if left.Type == TileAir && right.Type == TileAir {
		return false
	}
	*left, *right = *right, *left
	if left.Block != nil {
		left.Block.StartSwap(SwapLeft)
	}
	if right.Block != nil {
		right.Block.StartSwap(SwapRight)
	}
	b.graceTimer = swapGraceTicks
	return true
}

func swappable(tile *Tile) bool {
	if tile.Type != TileBlock {
		return true
	}
	switch tile.Block.State {
	case BlockMatched, BlockExploding, BlockSwappingLeft, BlockSwappingRight:
		return false
	}
	return true
}
