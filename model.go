package main

import (
	"math/rand"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type Screen int

const (
	screenMenu Screen = iota
	screenModes
	screenGame
	screenThemes
	screenScores
	screenConfig
)

type tickMsg struct{}
type soundMsg struct{}

const tickInterval = time.Second / 60

const eventPopupDuration = 1200 * time.Millisecond

type Model struct {
	screen      Screen
	width       int
	height      int
	menuIndex   int
	modeIndex   int
	themeIndex  int
	configIndex int

	config     Config
	highScores map[string]int

	board *Board
	modes []GameMode
	mode  GameMode

	sound *SoundEngine
	music *MusicPlayer

	paused       bool
	countdown    int
	lastEvent    string
	lastEventTil time.Time
	endHandled   bool
	newHighScore bool
}

func NewModel() Model {
	config, err := loadConfig()
	if err != nil {
		DebugLogf("config load error: %v", err)
	}
	index := themeIndexByName(config.Theme)
	if index < 0 {
		index = 0
		config.Theme = themes[index].Name
	}
	highScores, err := loadHighScores()
	if err != nil {
		DebugLogf("high score load error: %v", err)
	}
	ctx, err := initAudioContext()
	if err != nil {
		DebugLogf("audio context init error: %v", err)
	}
	sound := NewSoundEngine(ctx, config.Sound)
	sound.SetVolume(volumeFromPercent(config.Volume))
	music := NewMusicPlayer(ctx, volumeFromPercent(config.Volume), config.Music)
	modes := AllModes(rand.New(rand.NewSource(time.Now().UnixNano())))
	modeIndex := 0
	for i, mode := range modes {
		if mode.Name() == config.Mode {
			modeIndex = i
		}
	}
	return Model{
		screen:     screenMenu,
		config:     config,
		highScores: highScores,
		themeIndex: index,
		modeIndex:  modeIndex,
		board:      NewBoard(),
		modes:      modes,
		mode:       modes[modeIndex],
		sound:      sound,
		music:      music,
		countdown:  -1,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.screen != screenGame {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		cmd := m.advanceBoard()
		return m, tea.Batch(tickCmd(), cmd)
	case soundMsg:
		return m, nil
	case tea.KeyMsg:
		switch m.screen {
		case screenMenu:
			return m, m.updateMenu(msg)
		case screenModes:
			return m, m.updateModes(msg)
		case screenGame:
			return m, m.updateGame(msg)
		case screenThemes:
			return m, m.updateThemes(msg)
		case screenScores:
			return m, m.updateScores(msg)
		case screenConfig:
			return m, m.updateConfig(msg)
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.screen {
	case screenMenu:
		return viewMenu(m)
	case screenModes:
		return viewModes(m)
	case screenGame:
		return viewGame(m)
	case screenThemes:
		return viewThemes(m)
	case screenScores:
		return viewScores(m)
	case screenConfig:
		return viewConfig(m)
	default:
		return ""
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func playSound(engine *SoundEngine, event SoundEvent) tea.Cmd {
	return func() tea.Msg {
		if engine != nil {
			engine.Play(event)
		}
		return soundMsg{}
	}
}

// advanceBoard runs one simulation tick and translates the TickReport into
// sounds and popups.
func (m *Model) advanceBoard() tea.Cmd {
	prevCountdown := m.countdown
	report := m.board.Tick()
	m.mode.OnTick(m.board, report)
	m.countdown = report.Countdown
	m.updatePopup()

	var cmds []tea.Cmd
	if m.config.Sound {
		if report.Countdown >= 0 && report.Countdown != prevCountdown {
			if report.Countdown == 0 {
				cmds = append(cmds, playSound(m.sound, SoundGo))
			} else {
				cmds = append(cmds, playSound(m.sound, SoundCountdown))
			}
		}
		if report.Matched && !report.ChainActive {
			cmds = append(cmds, playSound(m.sound, SoundPop))
		}
		if report.RowRaised {
			cmds = append(cmds, playSound(m.sound, SoundRaise))
		}
	}
	if report.ComboSize > 1 {
		m.setPopup("COMBO x" + strconv.Itoa(report.ComboSize))
	}
	if report.ChainEnded && report.LastChain > 1 {
		m.setPopup("CHAIN x" + strconv.Itoa(report.LastChain))
	}
	if cmd := m.handleGameEnd(report); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleGameEnd(report TickReport) tea.Cmd {
	state := m.board.State()
	if m.endHandled || (state != BoardGameOver && state != BoardWon) {
		return nil
	}
	m.endHandled = true
	m.music.Stop()
	m.newHighScore = updateHighScore(m.highScores, m.mode.Name(), m.board.Score())
	if m.newHighScore {
		if err := saveHighScores(m.highScores); err != nil {
			DebugLogf("high score save error: %v", err)
		}
	}
	if !m.config.Sound {
		return nil
	}
	if state == BoardWon {
		return playSound(m.sound, SoundWin)
	}
	return playSound(m.sound, SoundGameOver)
}

func (m *Model) startGame() tea.Cmd {
	m.board.ResetForNewGame()
	m.mode.Configure(m.board)
	m.board.SetAudioSystem(&boardAudio{sound: m.sound, music: m.music})
	m.paused = false
	m.endHandled = false
	m.newHighScore = false
	m.countdown = -1
	m.lastEvent = ""
	m.screen = screenGame
	m.music.StartNormal()
	return tickCmd()
}

func (m *Model) leaveGame() {
	m.music.Stop()
	m.screen = screenMenu
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
			if m.config.Sound {
				cmd = playSound(m.sound, SoundMenuMove)
			}
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
			if m.config.Sound {
				cmd = playSound(m.sound, SoundMenuMove)
			}
		}
	case "enter":
		if m.config.Sound {
			cmd = playSound(m.sound, SoundMenuSelect)
		}
		switch m.menuIndex {
		case 0:
			return tea.Batch(cmd, m.startGame())
		case 1:
			m.screen = screenModes
		case 2:
			m.screen = screenThemes
		case 3:
			m.screen = screenScores
		case 4:
			m.screen = screenConfig
		case 5:
			return tea.Quit
		}
	case "q", "esc":
		return tea.Quit
	}
	return cmd
}

func (m *Model) updateModes(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.modeIndex > 0 {
			m.modeIndex--
			if m.config.Sound {
				return playSound(m.sound, SoundMenuMove)
			}
		}
	case "down", "j":
		if m.modeIndex < len(m.modes)-1 {
			m.modeIndex++
			if m.config.Sound {
				return playSound(m.sound, SoundMenuMove)
			}
		}
	case "enter":
		m.mode = m.modes[m.modeIndex]
		m.config.Mode = m.mode.Name()
		_ = saveConfig(m.config)
		m.screen = screenMenu
		if m.config.Sound {
			return playSound(m.sound, SoundMenuSelect)
		}
	case "q", "esc":
		m.screen = screenMenu
	}
	return nil
}

func (m *Model) updateGame(msg tea.KeyMsg) tea.Cmd {
	state := m.board.State()
	if state == BoardGameOver || state == BoardWon {
		switch msg.String() {
		case "enter":
			m.screen = screenScores
			return nil
		case "r":
			return m.startGame()
		case "q", "esc":
			m.leaveGame()
		}
		return nil
	}
	switch msg.String() {
	case "left", "h":
		if m.board.Move(-1, 0) && m.config.Sound {
			return playSound(m.sound, SoundCursorMove)
		}
	case "right", "l":
		if m.board.Move(1, 0) && m.config.Sound {
			return playSound(m.sound, SoundCursorMove)
		}
	case "up", "k":
		if m.board.Move(0, 1) && m.config.Sound {
			return playSound(m.sound, SoundCursorMove)
		}
	case "down", "j":
		if m.board.Move(0, -1) && m.config.Sound {
			return playSound(m.sound, SoundCursorMove)
		}
	case " ", "x":
		if m.board.Swap() && m.config.Sound {
			return playSound(m.sound, SoundSwap)
		}
	case "z", "shift+up":
		m.board.InputForceStackRaise()
	case "p":
		m.paused = !m.paused
	case "q", "esc":
		m.leaveGame()
	}
	return nil
}

func (m *Model) updateThemes(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.themeIndex > 0 {
			m.themeIndex--
			if m.config.Sound {
				return playSound(m.sound, SoundMenuMove)
			}
		}
	case "down", "j":
		if m.themeIndex < len(themes)-1 {
			m.themeIndex++
			if m.config.Sound {
				return playSound(m.sound, SoundMenuMove)
			}
		}
	case "enter":
		m.config.Theme = themes[m.themeIndex].Name
		_ = saveConfig(m.config)
		m.screen = screenMenu
		if m.config.Sound {
			return playSound(m.sound, SoundMenuSelect)
		}
	case "q", "esc":
		m.screen = screenMenu
	}
	return nil
}

func (m *Model) updateScores(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "enter":
		m.screen = screenMenu
		if m.config.Sound {
			return playSound(m.sound, SoundMenuSelect)
		}
	}
	return nil
}

func (m *Model) updateConfig(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.configIndex > 0 {
			m.configIndex--
			if m.config.Sound {
				return playSound(m.sound, SoundMenuMove)
			}
		}
	case "down", "j":
		if m.configIndex < len(configItems)-1 {
			m.configIndex++
			if m.config.Sound {
				return playSound(m.sound, SoundMenuMove)
			}
		}
	case "enter":
		switch m.configIndex {
		case 0:
			m.config.Sound = !m.config.Sound
			m.sound.SetEnabled(m.config.Sound)
			_ = saveConfig(m.config)
		case 1:
			m.config.Music = !m.config.Music
			m.music.SetEnabled(m.config.Music)
			_ = saveConfig(m.config)
		case 2:
			m.adjustVolume(5)
		case 3:
			m.adjustScale(1)
		}
		if m.config.Sound {
			return playSound(m.sound, SoundMenuSelect)
		}
	case "left", "h":
		if m.configIndex == 2 {
			m.adjustVolume(-5)
		}
		if m.configIndex == 3 {
			m.adjustScale(-1)
		}
		if m.config.Sound {
			return playSound(m.sound, SoundMenuMove)
		}
	case "right", "l":
		if m.configIndex == 2 {
			m.adjustVolume(5)
		}
		if m.configIndex == 3 {
			m.adjustScale(1)
		}
		if m.config.Sound {
			return playSound(m.sound, SoundMenuMove)
		}
	case "q", "esc":
		m.screen = screenMenu
	}
	return nil
}

var menuItems = []string{
	"Start Game",
	"Game Mode",
	"Themes",
	"Scores",
	"Config",
	"Quit",
}

var configItems = []string{
	"Sound Effects",
	"Music",
	"Volume",
	"Game Scale",
}

func (m *Model) adjustVolume(delta int) {
	newVolume := m.config.Volume + delta
	if newVolume < 0 {
		newVolume = 0
	}
	if newVolume > 100 {
		newVolume = 100
	}
	if newVolume == m.config.Volume {
		return
	}
	m.config.Volume = newVolume
	m.sound.SetVolume(volumeFromPercent(newVolume))
	m.music.SetVolume(volumeFromPercent(newVolume))
	_ = saveConfig(m.config)
}

func (m *Model) adjustScale(delta int) {
	minScale := 1
	maxScale := 3
	newScale := m.config.Scale + delta
	if newScale < minScale {
		newScale = minScale
	}
	if newScale > maxScale {
		newScale = maxScale
	}
	if newScale != m.config.Scale {
		m.config.Scale = newScale
		_ = saveConfig(m.config)
	}
}

func volumeFromPercent(value int) float64 {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return float64(value) / 100
}

func (m *Model) setPopup(text string) {
	m.lastEvent = text
	m.lastEventTil = time.Now().Add(eventPopupDuration)
}

func (m *Model) updatePopup() {
	if !m.lastEventTil.IsZero() && time.Now().After(m.lastEventTil) {
		m.lastEvent = ""
		m.lastEventTil = time.Time{}
	}
}

// boardAudio bridges the Board's fire-and-forget notifications onto the
// sound and music engines.
type boardAudio struct {
	sound *SoundEngine
	music *MusicPlayer
}

func (a *boardAudio) GarbageLanded(big bool) {
	if a.sound == nil {
		return
	}
	if big {
		a.sound.Play(SoundBigThump)
	} else {
		a.sound.Play(SoundThump)
	}
}

func (a *boardAudio) PlayChain(chainLength, blockCount int) {
	if a.sound == nil {
		return
	}
	a.sound.PlayChain(chainLength, blockCount)
}

func (a *boardAudio) PanicChanged(panic bool) {
	if a.music == nil {
		return
	}
	if panic {
		a.music.StartPanic()
	} else {
		a.music.StartNormal()
	}
}
