package browse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/denv/log"
)

const (
	filterPrompt = "❯ "
	cursorMark   = "▸ "
	defaultWidth = 80
	defaultRows  = 10
	chromeRows   = 3 // filter line, footer, trailing newline
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selMatchStyle  = selectedStyle.Bold(true)
	selValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	noMatchesStyle = hintStyle.Italic(true)
)

// keySource exposes item keys to [fuzzy.FindFrom].
type keySource []Item

func (s keySource) String(i int) string { return s[i].Key }

func (s keySource) Len() int { return len(s) }

// model is the Bubble Tea model for the browser.
type model struct {
	ctxFunc  func() context.Context
	input    textinput.Model
	logger   log.Logger
	chosen   *Item
	items    []Item
	matches  fuzzy.Matches
	cursor   int
	offset   int
	width    int
	height   int
	quitting bool
}

func newModel(ctx context.Context, items []Item, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(filterPrompt)
	ti.Placeholder = "filter"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth

	m := model{
		ctxFunc: func() context.Context { return ctx },
		input:   ti,
		logger:  logger,
		items:   items,
		width:   defaultWidth,
	}

	m.refresh()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-lipgloss.Width(filterPrompt)-2, 1)
		m.scroll()

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"browse keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if item, ok := m.current(); ok {
			m.chosen = &item
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyUp, tea.KeyCtrlP, tea.KeyShiftTab:
		m.move(-1)

		return m, nil

	case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
		m.move(1)

		return m, nil

	case tea.KeyPgUp:
		m.move(-m.rows())

		return m, nil

	case tea.KeyPgDown:
		m.move(m.rows())

		return m, nil
	}

	before := m.input.Value()

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.refresh()
	}

	return m, cmd
}

// refresh recomputes the matches for the current filter and resets the
// cursor. An empty filter matches every item in its original order.
func (m *model) refresh() {
	pattern := strings.TrimSpace(m.input.Value())

	if pattern == "" {
		m.matches = make(fuzzy.Matches, len(m.items))
		for i, item := range m.items {
			m.matches[i] = fuzzy.Match{Str: item.Key, Index: i}
		}
	} else {
		m.matches = fuzzy.FindFrom(pattern, keySource(m.items))
	}

	m.cursor = 0
	m.offset = 0
}

// current returns the item under the cursor.
func (m model) current() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return Item{}, false
	}

	return m.items[m.matches[m.cursor].Index], true
}

// rows returns the number of list rows that fit on screen.
func (m model) rows() int {
	if m.height <= 0 {
		return defaultRows
	}

	return max(m.height-chromeRows, 1)
}

// move shifts the cursor by delta, clamped to the match list.
func (m *model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.matches)-1)
	m.scroll()
}

// scroll keeps the cursor within the visible window.
func (m *model) scroll() {
	rows := m.rows()

	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+rows:
		m.offset = m.cursor - rows + 1
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if len(m.matches) == 0 {
		b.WriteString(noMatchesStyle.Render("no matches"))
		b.WriteString("\n")
	}

	end := min(m.offset+m.rows(), len(m.matches))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render(
		fmt.Sprintf("%d/%d  enter: print  esc: quit", len(m.matches), len(m.items)),
	))
	b.WriteString("\n")

	return b.String()
}

// renderRow renders the i'th match as "KEY=VALUE" with the matched
// characters of KEY highlighted and VALUE truncated to the screen width.
func (m model) renderRow(i int) string {
	match := m.matches[i]
	item := m.items[match.Index]
	selected := i == m.cursor

	base, highlight, value := keyStyle, matchStyle, valueStyle
	mark := strings.Repeat(" ", lipgloss.Width(cursorMark))

	if selected {
		base, highlight, value = selectedStyle, selMatchStyle, selValueStyle
		mark = cursorStyle.Render(cursorMark)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	b.WriteString(mark)

	for j, r := range item.Key {
		if matched[j] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	b.WriteString(hintStyle.Render("="))

	room := m.width - lipgloss.Width(cursorMark) - lipgloss.Width(item.Key) - 1
	b.WriteString(value.Render(truncate(displayValue(item.Value), room)))

	return b.String()
}

// displayValue renders control characters of s visibly so each value
// occupies a single line.
func displayValue(s string) string {
	return strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(s)
}

// truncate shortens s to at most width cells, marking the cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(s) <= width {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}

	return string(runes) + "…"
}
