package main

import "math/rand"

// GameMode configures a Board for a ruleset and reacts to tick outcomes.
// Modes only talk to the Board through its public configuration and
// command surface.
type GameMode interface {
	Name() string
	Configure(b *Board)
	OnTick(b *Board, report TickReport)
}

type EndlessMode struct {
	rowsRaised int
}

func (m *EndlessMode) Name() string { return "Endless" }

func (m *EndlessMode) Configure(b *Board) {
	m.rowsRaised = 0
	b.SetAutoRaise(true)
	b.SetGarbageSpawningEnabled(false)
	b.SetStackRaiseSpeed(defaultRaiseTicks)
}

// Every ten risen rows the stack speeds up one notch.
func (m *EndlessMode) OnTick(b *Board, report TickReport) {
	if !report.RowRaised {
		return
	}
	m.rowsRaised++
	speed := defaultRaiseTicks - m.rowsRaised/10
	if speed < 2 {
		speed = 2
	}
	b.SetStackRaiseSpeed(speed)
}

type GarbageBattleMode struct {
	rng       *rand.Rand
	dropTimer int
}

const garbageDropInterval = 600

func NewGarbageBattleMode(rng *rand.Rand) *GarbageBattleMode {
	return &GarbageBattleMode{rng: rng}
}

func (m *GarbageBattleMode) Name() string { return "Garbage Battle" }

func (m *GarbageBattleMode) Configure(b *Board) {
	m.dropTimer = garbageDropInterval
	b.SetAutoRaise(true)
	b.SetGarbageSpawningEnabled(true)
	b.SetStackRaiseSpeed(defaultRaiseTicks + 2)
}

func (m *GarbageBattleMode) OnTick(b *Board, report TickReport) {
	if b.State() != BoardRunning {
		return
	}
	m.dropTimer--
	if m.dropTimer > 0 {
		return
	}
	m.dropTimer = garbageDropInterval
	if m.rng.Intn(4) == 0 {
		b.QueueGarbage(true, 1+m.rng.Intn(2), GarbageGray)
	} else {
		b.QueueGarbage(false, 3+m.rng.Intn(3), GarbageNormal)
	}
}

type TimeAttackMode struct {
	ticksLeft int
}

const timeAttackTicks = 2 * 60 * 60 // two minutes at 60 Hz

func (m *TimeAttackMode) Name() string { return "Time Attack" }

func (m *TimeAttackMode) Configure(b *Board) {
	m.ticksLeft = timeAttackTicks
	b.SetAutoRaise(true)
	b.SetGarbageSpawningEnabled(false)
	b.SetStackRaiseSpeed(defaultRaiseTicks)
}

func (m *TimeAttackMode) OnTick(b *Board, report TickReport) {
	if b.State() != BoardRunning {
		return
	}
	m.ticksLeft--
	if m.ticksLeft <= 0 {
		b.SetWon()
	}
}

func (m *TimeAttackMode) TicksLeft() int {
	return m.ticksLeft
}

func AllModes(rng *rand.Rand) []GameMode {
	return []GameMode{
		&EndlessMode{},
		NewGarbageBattleMode(rng),
		&TimeAttackMode{},
	}
}
