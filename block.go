package main

type BlockColor int

const (
	ColorGreen BlockColor = iota
	ColorPurple
	ColorRed
	ColorYellow
	ColorCyan
)

const blockColorCount = 5

type BlockState int

const (
	BlockNormal BlockState = iota
	BlockFloating
	BlockMatched
	BlockExploding
	BlockSwappingLeft
	BlockSwappingRight
)

const (
	swapTicks          = 3
	floatTicks         = 12
	explosionBaseTicks = 61
	explosionStepTicks = 9
)

type SwapDirection int

const (
	SwapLeft SwapDirection = iota
	SwapRight
)

type Block struct {
	Color          BlockColor
	State          BlockState
	Falling        bool
	FloatTimer     int
	SwapTimer      int
	ExplosionTimer int
	ExplosionTicks int
	ExplosionOrder int
	justLanded     bool
}

func NewBlock(color BlockColor) *Block {
	return &Block{Color: color}
}

func (b *Block) Tick() {
	b.justLanded = false
	switch b.State {
	case BlockSwappingLeft, BlockSwappingRight:
		b.SwapTimer--
		if b.SwapTimer <= 0 {
			b.StartFloat()
		}
	case BlockFloating:
		if b.FloatTimer > 0 {
			b.FloatTimer--
		}
	case BlockExploding:
		if b.ExplosionTimer < b.ExplosionTicks {
			b.ExplosionTimer++
		}
	}
}

func (b *Block) StartSwap(dir SwapDirection) {
	if dir == SwapLeft {
		b.State = BlockSwappingLeft
	} else {
		b.State = BlockSwappingRight
	}
	b.SwapTimer = swapTicks
}

func (b *Block) StartFloat() {
	b.State = BlockFloating
	b.FloatTimer = floatTicks
	b.Falling = true
}

func (b *Block) FloatElapsed() bool {
	return b.State == BlockFloating && b.FloatTimer <= 0
}

// Land settles a floating block. Only a block that actually moved down
// counts as landed for chain eligibility; a block that floated in place
// (post-swap) must not start a chain.
func (b *Block) Land(fell bool) {
	b.State = BlockNormal
	b.Falling = false
	b.justLanded = fell
}

func (b *Block) MarkMatched() {
	b.State = BlockMatched
}

func (b *Block) StartExplosion(order int) {
	b.State = BlockExploding
	b.ExplosionOrder = order
	b.ExplosionTicks = explosionBaseTicks + explosionStepTicks*order
	b.ExplosionTimer = 0
}

func (b *Block) ExplosionDone() bool {
	return b.State == BlockExploding && b.ExplosionTimer >= b.ExplosionTicks
}

func (b *Block) CanMatch() bool {
	return b.State == BlockNormal && !b.Falling
}

func (b *Block) IsStable() bool {
	return b.CanMatch()
}

func (b *Block) IsAnimating() bool {
	switch b.State {
	case BlockFloating, BlockMatched, BlockExploding, BlockSwappingLeft, BlockSwappingRight:
		return true
	}
	return false
}

func (b *Block) JustLanded() bool {
	return b.justLanded
}
