package main

import "math/rand"

type GarbageType int

const (
	GarbageNormal GarbageType = iota
	GarbageGray
)

type GarbageState int

const (
	GarbageIdle GarbageState = iota
	GarbageTriggered
	GarbageTransforming
)

const (
	garbageTriggerTicks = 30
	garbageSpawnDelay   = 30
	garbageRetryDelay   = 90
	bigGarbageCells     = 6
)

// GarbageID is a handle into the Board's garbage list. Zero means none.
type GarbageID int

type GarbageBlock struct {
	ID                  GarbageID
	X                   int // bottom-left tile coords
	Y                   int
	Width               int
	Height              int
	Type                GarbageType
	State               GarbageState
	BufferRow           []*Block
	TransformationTimer int
	TransformationTicks int
	Falling             bool
}

func NewGarbageBlock(rng *rand.Rand, x, y, width, height int, gtype GarbageType) *GarbageBlock {
	g := &GarbageBlock{
		X:                   x,
		Y:                   y,
		Width:               width,
		Height:              height,
		Type:                gtype,
		TransformationTicks: 60 + 10*width*height,
	}
	g.BufferRow = make([]*Block, width)
	for i := range g.BufferRow {
		color := randomColor(rng)
		for i > 0 && color == g.BufferRow[i-1].Color {
			color = randomColor(rng)
		}
		g.BufferRow[i] = NewBlock(color)
	}
	return g
}

func randomColor(rng *rand.Rand) BlockColor {
	return BlockColor(rng.Intn(blockColorCount))
}

func (g *GarbageBlock) Trigger() {
	if g.State != GarbageIdle {
		return
	}
	g.State = GarbageTriggered
	g.TransformationTimer = 0
}

func (g *GarbageBlock) Tick() {
	switch g.State {
	case GarbageTriggered:
		g.TransformationTimer++
		if g.TransformationTimer >= garbageTriggerTicks {
			g.State = GarbageTransforming
		}
	case GarbageTransforming:
		g.TransformationTimer++
	}
}

func (g *GarbageBlock) IsTransformationComplete() bool {
	return g.State == GarbageTransforming && g.TransformationTimer >= g.TransformationTicks
}

func (g *GarbageBlock) IsAnimating() bool {
	return g.State != GarbageIdle || g.Falling
}

func (g *GarbageBlock) IsBig() bool {
	return g.Width*g.Height >= bigGarbageCells
}

type GarbageSpec struct {
	Width  int
	Height int
	Type   GarbageType
	Timer  int
}

// QueueGarbage schedules an incoming garbage block. Full-width garbage
// stacks size rows tall; otherwise a single row of size cells is centered.
func (b *Board) QueueGarbage(fullWidth bool, size int, gtype GarbageType) {
	if !b.garbageEnabled {
		return
	}
	spec := GarbageSpec{Width: size, Height: 1, Type: gtype, Timer: garbageSpawnDelay}
	if fullWidth {
		spec.Width = boardWidth
		spec.Height = size
	}
	if spec.Width < 1 || spec.Width > boardWidth || spec.Height < 1 {
		return
	}
	b.garbageQueue = append(b.garbageQueue, spec)
}

func (b *Board) processGarbageQueue() {
	remaining := b.garbageQueue[:0]
	for i := range b.garbageQueue {
		spec := b.garbageQueue[i]
		spec.Timer--
		if spec.Timer > 0 {
			remaining = append(remaining, spec)
			continue
		}
		x := (boardWidth - spec.Width) / 2
		y := b.FindGarbageSpawnRow(spec.Height)
		if y < 0 || !b.regionIsAir(x, y, spec.Width, spec.Height) {
			// Occupied: defer instead of dropping or overwriting.
			spec.Timer = garbageRetryDelay
			remaining = append(remaining, spec)
			continue
		}
		gb := NewGarbageBlock(b.rng, x, y, spec.Width, spec.Height, spec.Type)
		b.AddGarbageBlock(gb)
	}
	b.garbageQueue = remaining
}

// FindGarbageSpawnRow returns the fixed spawn row above the visible
// playfield, or -1 when a block of the given height cannot fit.
func (b *Board) FindGarbageSpawnRow(height int) int {
	row := topRow + 1
	if row+height > boardHeight {
		return -1
	}
	return row
}

func (b *Board) regionIsAir(x, y, width, height int) bool {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			tile := b.Tile(row, col)
			if tile == nil || tile.Type != TileAir {
				return false
			}
		}
	}
	return true
}

// AddGarbageBlock stamps a constructed garbage block onto the grid and
// takes ownership of it. Used by the spawn queue and by external mode
// managers cross-sending garbage.
func (b *Board) AddGarbageBlock(g *GarbageBlock) {
	b.nextGarbageID++
	g.ID = b.nextGarbageID
	b.garbage = append(b.garbage, g)
	b.stampGarbage(g)
}

func (b *Board) stampGarbage(g *GarbageBlock) {
	for row := g.Y; row < g.Y+g.Height; row++ {
		for col := g.X; col < g.X+g.Width; col++ {
			tile := b.Tile(row, col)
			if tile == nil {
				continue
			}
			tile.Type = TileGarbage
			tile.Block = nil
			tile.Garbage = g.ID
		}
	}
}

func (b *Board) garbageByID(id GarbageID) *GarbageBlock {
	if id == 0 {
		return nil
	}
	for _, g := range b.garbage {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (b *Board) GarbageBlocks() []*GarbageBlock {
	return b.garbage
}

// resolveGarbageFalls drops each idle garbage block one row when no column
// across its full width has support beneath its bottom row.
func (b *Board) resolveGarbageFalls() {
	for _, g := range b.garbage {
		if g.State != GarbageIdle {
			g.Falling = false
			continue
		}
		if !b.garbageCanFall(g) {
			if g.Falling {
				g.Falling = false
				if b.audio != nil {
					b.audio.GarbageLanded(g.IsBig())
				}
			}
			continue
		}
		g.Falling = true
		b.clearGarbageTiles(g)
		g.Y--
		b.stampGarbage(g)
	}
}

func (b *Board) garbageCanFall(g *GarbageBlock) bool {
	if g.Y <= 0 {
		return false
	}
	for col := g.X; col < g.X+g.Width; col++ {
		tile := b.Tile(g.Y-1, col)
		if tile == nil || tile.Type != TileAir {
			return false
		}
	}
	return true
}

func (b *Board) clearGarbageTiles(g *GarbageBlock) {
	for row := g.Y; row < g.Y+g.Height; row++ {
		for col := g.X; col < g.X+g.Width; col++ {
			tile := b.Tile(row, col)
			if tile == nil || tile.Garbage != g.ID {
				continue
			}
			tile.Type = TileAir
			tile.Garbage = 0
		}
	}
}

// resolveGarbageTransformations removes fully transformed garbage blocks
// and transplants their buffer-row blocks into the freed bottom row. The
// new blocks carry the chain flag so follow-up matches extend the chain.
func (b *Board) resolveGarbageTransformations() {
	kept := b.garbage[:0]
	for _, g := range b.garbage {
		if !g.IsTransformationComplete() {
			kept = append(kept, g)
			continue
		}
		b.clearGarbageTiles(g)
		for i, block := range g.BufferRow {
			tile := b.Tile(g.Y, g.X+i)
			if tile == nil {
				continue
			}
			tile.Type = TileBlock
			tile.Block = block
			tile.Chain = true
		}
	}
	b.garbage = kept
}

// triggerGarbageAt triggers the garbage block covering the given tile and
// floods the trigger to every garbage block touching it.
func (b *Board) triggerGarbageAt(row, col int) {
	tile := b.Tile(row, col)
	if tile == nil || tile.Type != TileGarbage {
		return
	}
	g := b.garbageByID(tile.Garbage)
	if g == nil || g.State != GarbageIdle {
		return
	}
	g.Trigger()
	for c := g.X; c < g.X+g.Width; c++ {
		b.triggerGarbageAt(g.Y-1, c)
		b.triggerGarbageAt(g.Y+g.Height, c)
	}
	for r := g.Y; r < g.Y+g.Height; r++ {
		b.triggerGarbageAt(r, g.X-1)
		b.triggerGarbageAt(r, g.X+g.Width)
	}
}
