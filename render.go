package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Name         string
	BorderColor  lipgloss.Color
	TextColor    lipgloss.Color
	AccentColor  lipgloss.Color
	WarnColor    lipgloss.Color
	GarbageColor lipgloss.Color
	BlockColors  []lipgloss.Color
}

var themes = []Theme{
	{
		Name:         "Classic Panel",
		BorderColor:  lipgloss.Color("15"),
		TextColor:    lipgloss.Color("250"),
		AccentColor:  lipgloss.Color("226"),
		WarnColor:    lipgloss.Color("196"),
		GarbageColor: lipgloss.Color("244"),
		BlockColors:  []lipgloss.Color{"46", "93", "196", "226", "51"},
	},
	{
		Name:         "Amber Terminal",
		BorderColor:  lipgloss.Color("214"),
		TextColor:    lipgloss.Color("223"),
		AccentColor:  lipgloss.Color("208"),
		WarnColor:    lipgloss.Color("202"),
		GarbageColor: lipgloss.Color("137"),
		BlockColors:  []lipgloss.Color{"220", "214", "208", "215", "222"},
	},
	{
		Name:         "Ocean Neon",
		BorderColor:  lipgloss.Color("33"),
		TextColor:    lipgloss.Color("159"),
		AccentColor:  lipgloss.Color("39"),
		WarnColor:    lipgloss.Color("203"),
		GarbageColor: lipgloss.Color("60"),
		BlockColors:  []lipgloss.Color{"45", "51", "75", "87", "123"},
	},
	{
		Name:         "Forest CRT",
		BorderColor:  lipgloss.Color("22"),
		TextColor:    lipgloss.Color("120"),
		AccentColor:  lipgloss.Color("34"),
		WarnColor:    lipgloss.Color("178"),
		GarbageColor: lipgloss.Color("240"),
		BlockColors:  []lipgloss.Color{"47", "64", "77", "71", "106"},
	},
	{
		Name:         "Sunset Arcade",
		BorderColor:  lipgloss.Color("209"),
		TextColor:    lipgloss.Color("223"),
		AccentColor:  lipgloss.Color("214"),
		WarnColor:    lipgloss.Color("196"),
		GarbageColor: lipgloss.Color("95"),
		BlockColors:  []lipgloss.Color{"202", "208", "172", "203", "166"},
	},
	{
		Name:         "Mono Matrix",
		BorderColor:  lipgloss.Color("250"),
		TextColor:    lipgloss.Color("245"),
		AccentColor:  lipgloss.Color("82"),
		WarnColor:    lipgloss.Color("255"),
		GarbageColor: lipgloss.Color("238"),
		BlockColors:  []lipgloss.Color{"236", "240", "244", "248", "252"},
	},
}

func themeIndexByName(name string) int {
	for i, theme := range themes {
		if theme.Name == name {
			return i
		}
	}
	return -1
}

func viewMenu(m Model) string {
	theme := themes[m.themeIndex]
	content := renderMenu("PANELTUI", menuItems, m.menuIndex, "Enter to select, Q to quit", theme)
	return center(m.width, m.height, content)
}

func viewModes(m Model) string {
	theme := themes[m.themeIndex]
	items := make([]string, 0, len(m.modes))
	for _, mode := range m.modes {
		label := mode.Name()
		if mode == m.mode {
			label += " *"
		}
		items = append(items, label)
	}
	content := renderMenu("Game Mode", items, m.modeIndex, "Enter to apply, Esc to back", theme)
	return center(m.width, m.height, content)
}

func viewThemes(m Model) string {
	theme := themes[m.themeIndex]
	items := make([]string, 0, len(themes))
	for _, t := range themes {
		items = append(items, t.Name)
	}
	preview := renderThemePreview(theme)
	menu := renderMenu("Themes", items, m.themeIndex, "Enter to apply, Esc to back", theme)
	content := lipgloss.JoinVertical(lipgloss.Left, preview, "", menu)
	return center(m.width, m.height, content)
}

func viewScores(m Model) string {
	theme := themes[m.themeIndex]
	lines := []string{}
	for _, mode := range m.modes {
		score := m.highScores[mode.Name()]
		lines = append(lines, padRight(mode.Name(), 16)+strconv.Itoa(score))
	}
	body := lipgloss.NewStyle().Foreground(theme.TextColor).Render(strings.Join(lines, "\n"))
	title := lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true).Render("High Scores")
	hint := lipgloss.NewStyle().Foreground(theme.TextColor).Faint(true).Render("Esc to back")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", hint))
	return center(m.width, m.height, box)
}

func viewConfig(m Model) string {
	theme := themes[m.themeIndex]
	values := []string{
		onOff(m.config.Sound),
		onOff(m.config.Music),
		strconv.Itoa(m.config.Volume) + "%",
		strconv.Itoa(m.config.Scale) + "x",
	}
	items := make([]string, len(configItems))
	for i, item := range configItems {
		items[i] = padRight(item, 16) + values[i]
	}
	content := renderMenu("Config", items, m.configIndex, "Enter/arrows to change, Esc to back", theme)
	return center(m.width, m.height, content)
}

func onOff(value bool) string {
	if value {
		return "On"
	}
	return "Off"
}

func padRight(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return text + strings.Repeat(" ", width-len(text))
}

func renderMenu(title string, items []string, selected int, hint string, theme Theme) string {
	titleStyle := lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)
	itemStyle := lipgloss.NewStyle().Foreground(theme.TextColor)
	selectedStyle := lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(theme.TextColor).Faint(true)

	lines := []string{titleStyle.Render(title), ""}
	for i, item := range items {
		if i == selected {
			lines = append(lines, selectedStyle.Render("> "+item))
		} else {
			lines = append(lines, itemStyle.Render("  "+item))
		}
	}
	lines = append(lines, "", hintStyle.Render(hint))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))
}

func renderThemePreview(theme Theme) string {
	cells := make([]string, 0, len(theme.BlockColors)+1)
	for _, color := range theme.BlockColors {
		cells = append(cells, lipgloss.NewStyle().Foreground(color).Render("██"))
	}
	cells = append(cells, lipgloss.NewStyle().Foreground(theme.GarbageColor).Render("▒▒"))
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func viewGame(m Model) string {
	theme := themes[m.themeIndex]
	field := renderField(m, theme)
	panel := renderSidePanel(m, theme)
	content := lipgloss.JoinHorizontal(lipgloss.Top, field, "  ", panel)
	return center(m.width, m.height, content)
}

func renderField(m Model, theme Theme) string {
	board := m.board
	cellWidth := 2 * m.config.Scale
	var rows []string

	warn := board.WarnColumns()
	warnLine := make([]string, boardWidth)
	for col := range warnLine {
		if warn[col] {
			warnLine[col] = strings.Repeat("!", cellWidth)
		} else {
			warnLine[col] = strings.Repeat(" ", cellWidth)
		}
	}
	rows = append(rows, " "+lipgloss.NewStyle().Foreground(theme.WarnColor).Bold(true).Render(strings.Join(warnLine, " "))+" ")

	for row := topRow; row >= 0; row-- {
		rows = append(rows, renderRow(m, theme, row, cellWidth))
	}

	buffer := make([]string, boardWidth)
	for col := 0; col < boardWidth; col++ {
		tile := board.BufferRowTile(col)
		cell := strings.Repeat("░", cellWidth)
		if tile != nil && tile.Type == TileBlock {
			cell = lipgloss.NewStyle().
				Foreground(theme.BlockColors[int(tile.Block.Color)%len(theme.BlockColors)]).
				Faint(true).
				Render(cell)
		}
		buffer[col] = cell
	}
	rows = append(rows, " "+strings.Join(buffer, " ")+" ")

	borderColor := theme.BorderColor
	if board.InPanic() {
		borderColor = theme.WarnColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(borderColor).
		Render(strings.Join(rows, "\n"))
}

func renderRow(m Model, theme Theme, row, cellWidth int) string {
	board := m.board
	cursor := lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)
	var sb strings.Builder
	cursorRow := board.CursorY() == row
	for col := 0; col <= boardWidth; col++ {
		// Separator slot before each column, plus one after the last.
		switch {
		case cursorRow && col == board.CursorX():
			sb.WriteString(cursor.Render("["))
		case cursorRow && col == board.CursorX()+2:
			sb.WriteString(cursor.Render("]"))
		default:
			sb.WriteString(" ")
		}
		if col < boardWidth {
			sb.WriteString(renderCell(board.Tile(row, col), theme, cellWidth))
		}
	}
	return sb.String()
}

func renderCell(tile *Tile, theme Theme, cellWidth int) string {
	if tile == nil || tile.Type == TileAir {
		return strings.Repeat(" ", cellWidth)
	}
	if tile.Type == TileGarbage {
		return lipgloss.NewStyle().
			Foreground(theme.GarbageColor).
			Render(strings.Repeat("▒", cellWidth))
	}
	block := tile.Block
	style := lipgloss.NewStyle().
		Foreground(theme.BlockColors[int(block.Color)%len(theme.BlockColors)])
	glyph := "█"
	switch block.State {
	case BlockMatched:
		style = style.Reverse(true)
	case BlockExploding:
		glyph = "▓"
		style = style.Bold(true)
	case BlockFloating:
		glyph = "▄"
	}
	return style.Render(strings.Repeat(glyph, cellWidth))
}

func renderSidePanel(m Model, theme Theme) string {
	board := m.board
	label := lipgloss.NewStyle().Foreground(theme.TextColor).Faint(true)
	value := lipgloss.NewStyle().Foreground(theme.TextColor).Bold(true)
	accent := lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)

	lines := []string{
		label.Render("Mode"),
		value.Render(m.mode.Name()),
		"",
		label.Render("Score"),
		value.Render(strconv.Itoa(board.Score())),
		"",
		label.Render("Best"),
		value.Render(strconv.Itoa(m.highScores[m.mode.Name()])),
		"",
		label.Render("Chain"),
		value.Render("x" + strconv.Itoa(board.ChainCounter())),
	}
	if ta, ok := m.mode.(*TimeAttackMode); ok && board.State() == BoardRunning {
		seconds := ta.TicksLeft() / 60
		lines = append(lines, "",
			label.Render("Time"),
			value.Render(strconv.Itoa(seconds/60)+":"+twoDigits(seconds%60)))
	}
	if m.countdown > 0 {
		lines = append(lines, "", accent.Render("   "+strconv.Itoa(m.countdown)+"   "))
	} else if m.countdown == 0 {
		lines = append(lines, "", accent.Render("  GO!  "))
	}
	if m.lastEvent != "" && time.Now().Before(m.lastEventTil) {
		lines = append(lines, "", accent.Render(m.lastEvent))
	}
	if board.InPanic() {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.WarnColor).Bold(true).Render("PANIC"))
	}
	switch board.State() {
	case BoardGameOver:
		lines = append(lines, "", accent.Render("GAME OVER"))
		if m.newHighScore {
			lines = append(lines, accent.Render("NEW BEST!"))
		}
		lines = append(lines, label.Render("R restart, Enter scores"))
	case BoardWon:
		lines = append(lines, "", accent.Render("FINISH!"))
		if m.newHighScore {
			lines = append(lines, accent.Render("NEW BEST!"))
		}
		lines = append(lines, label.Render("R restart, Enter scores"))
	default:
		if m.paused {
			lines = append(lines, "", accent.Render("PAUSED"))
		}
		lines = append(lines, "",
			label.Render("Arrows move"),
			label.Render("X/Space swap"),
			label.Render("Z raise"),
			label.Render("P pause, Q menu"))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 2).
		Width(26).
		Render(strings.Join(lines, "\n"))
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func center(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
