package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventease/internal/datefmt"
	"eventease/internal/models"
	"eventease/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// refreshMsg is sent by the browser after a search response is applied
type refreshMsg struct{}

// pendingTickMsg redraws while an operation is in flight so cards show their pending label
type pendingTickMsg struct{}

const pendingRedraw = 100 * time.Millisecond

func pendingTick() tea.Cmd {
	return tea.Tick(pendingRedraw, func(time.Time) tea.Msg { return pendingTickMsg{} })
}

// operationDoneMsg carries the outcome of a toggle or cancel
type operationDoneMsg struct {
	eventName string
	err       error
}

var filterCycle = []models.RegistrationFilter{
	models.FilterAll,
	models.FilterRegistered,
	models.FilterNotRegistered,
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Padding(0, 1)
	tierStyle     = lipgloss.NewStyle().Padding(0, 1)
	activeTier    = lipgloss.NewStyle().Padding(0, 1).Reverse(true)
	disabledTier  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
)

// Model is the bubbletea model of the event browser
type Model struct {
	browser *session.Browser
	timeout time.Duration
	now     func() time.Time

	input      string
	cardCursor int
	tierCursor int
	status     string
	lastErr    error
	inflight   int
	width      int
}

func NewModel(browser *session.Browser, timeout time.Duration) Model {
	return Model{
		browser: browser,
		timeout: timeout,
		now:     time.Now,
	}
}

// Init loads the baseline listing
func (m Model) Init() tea.Cmd {
	return m.search("")
}

func (m Model) search(query string) tea.Cmd {
	browser, timeout := m.browser, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		// a failed search keeps the previous result; Browser.Err carries the error
		_, _ = browser.Search(ctx, query)
		return refreshMsg{}
	}
}

func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKey(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		return m, nil

	case refreshMsg:
		m.clampCursor()
		return m, nil

	case pendingTickMsg:
		if m.inflight > 0 {
			return m, pendingTick()
		}
		return m, nil

	case operationDoneMsg:
		m.inflight--
		m.lastErr = message.err
		if message.err == nil {
			m.status = "Updated " + message.eventName
		} else {
			m.status = ""
		}
		m.clampCursor()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyUp:
		if m.cardCursor > 0 {
			m.cardCursor--
			m.tierCursor = 0
		}
	case tea.KeyDown:
		if m.cardCursor < len(m.browser.Cards())-1 {
			m.cardCursor++
			m.tierCursor = 0
		}
	case tea.KeyLeft:
		if m.tierCursor > 0 {
			m.tierCursor--
		}
	case tea.KeyRight:
		if card := m.selectedCard(); card != nil && m.tierCursor < len(card.Tiers())-1 {
			m.tierCursor++
		}

	case tea.KeyTab:
		m.browser.SetFilter(nextFilter(m.browser.Filter()))
		m.clampCursor()

	case tea.KeyEnter:
		return m.start(m.toggleSelected())

	case tea.KeyCtrlD:
		return m.start(m.cancelSelected())

	case tea.KeyEsc:
		if m.input != "" {
			m.input = ""
			m.browser.Type(m.input)
		}

	case tea.KeyBackspace:
		if m.input != "" {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
			m.browser.Type(m.input)
		}

	case tea.KeyRunes, tea.KeySpace:
		m.input += string(message.Runes)
		if message.Type == tea.KeySpace && len(message.Runes) == 0 {
			m.input += " "
		}
		m.browser.Type(m.input)
	}

	return m, nil
}

func (m Model) start(op tea.Cmd) (tea.Model, tea.Cmd) {
	if op == nil {
		return m, nil
	}
	m.inflight++
	m.lastErr = nil
	m.status = ""
	return m, tea.Batch(op, pendingTick())
}

func (m Model) selectedCard() *session.Card {
	cards := m.browser.Cards()
	if m.cardCursor < 0 || m.cardCursor >= len(cards) {
		return nil
	}
	return cards[m.cardCursor]
}

func (m *Model) clampCursor() {
	count := len(m.browser.Cards())
	if m.cardCursor >= count {
		m.cardCursor = count - 1
	}
	if m.cardCursor < 0 {
		m.cardCursor = 0
	}
	if card := m.selectedCard(); card != nil {
		if tiers := len(card.Tiers()); m.tierCursor >= tiers {
			m.tierCursor = max(tiers-1, 0)
		}
	}
}

func (m Model) toggleSelected() tea.Cmd {
	card := m.selectedCard()
	if card == nil {
		return nil
	}
	tiers := card.Tiers()
	if m.tierCursor >= len(tiers) || tiers[m.tierCursor].Disabled {
		return nil
	}
	tierID := tiers[m.tierCursor].TicketType.ID

	return m.runOperation(card, func(ctx context.Context) (bool, error) {
		return card.Toggle(ctx, tierID)
	})
}

func (m Model) cancelSelected() tea.Cmd {
	card := m.selectedCard()
	if card == nil || card.Registration() == nil {
		return nil
	}
	return m.runOperation(card, card.Cancel)
}

// runOperation starts the card operation in the background; the card shows Pending until it returns
func (m Model) runOperation(card *session.Card, op func(ctx context.Context) (bool, error)) tea.Cmd {
	timeout := m.timeout
	name := card.Event().Name
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := op(ctx)
		return operationDoneMsg{eventName: name, err: err}
	}
}

func nextFilter(current models.RegistrationFilter) models.RegistrationFilter {
	for i, f := range filterCycle {
		if f == current {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return models.FilterAll
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("EventEase"))
	b.WriteString("  ")
	b.WriteString(faintStyle.Render("filter: " + m.browser.Filter().Label()))
	b.WriteString("\n")
	b.WriteString(" / " + m.input + "▎\n")

	if err := m.browser.Err(); err != nil {
		b.WriteString(errorStyle.Render("Search failed: "+err.Error()) + "\n")
	}
	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(faintStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n")

	cards := m.browser.Cards()
	if len(cards) == 0 {
		b.WriteString(faintStyle.Render("No events found") + "\n")
	}
	for i, card := range cards {
		b.WriteString(m.renderCard(card, i == m.cardCursor))
		b.WriteString("\n")
	}

	b.WriteString(faintStyle.Render("↑/↓ event  ←/→ ticket  enter register  ctrl+d cancel  tab filter  esc clear  ctrl+c quit"))
	return b.String()
}

func (m Model) renderCard(card *session.Card, selected bool) string {
	event := card.Event()
	now := m.now()

	var lines []string
	heading := titleStyle.Render(event.Name)
	if datefmt.IsWithinNextWeek(event.Date, now) {
		heading += " " + badgeStyle.Render("This week")
	}
	lines = append(lines, heading)

	when := datefmt.FormatEventDate(event.Date, now)
	if timeRange := datefmt.FormatEventTimeRange(event.StartTime, event.EndTime); timeRange != "" {
		when += " · " + timeRange
	}
	lines = append(lines, when)

	if where := location(event); where != "" {
		lines = append(lines, faintStyle.Render(where))
	}

	if notice := card.Notice(); notice != "" {
		lines = append(lines, errorStyle.Render(notice))
	} else {
		lines = append(lines, card.Heading())
		lines = append(lines, m.renderTiers(card.Tiers(), selected))
	}

	if rolledBack, ok := card.Phase().(session.RolledBack); ok {
		lines = append(lines, errorStyle.Render(rolledBack.Err.Error()))
	}

	style := cardStyle
	if selected {
		style = selectedStyle
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) renderTiers(tiers []session.TierView, selected bool) string {
	parts := make([]string, 0, len(tiers))
	for i, tier := range tiers {
		text := fmt.Sprintf("%s %s [%s]", tier.TicketType.TierName, tier.PriceLabel, tier.Label)
		switch {
		case tier.Disabled:
			parts = append(parts, disabledTier.Render(text))
		case selected && i == m.tierCursor:
			parts = append(parts, activeTier.Render(text))
		default:
			parts = append(parts, tierStyle.Render(text))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func location(event models.Event) string {
	var parts []string
	if event.Venue != nil && event.Venue.Name != "" {
		parts = append(parts, event.Venue.Name)
	}
	if event.Location != nil && *event.Location != "" {
		parts = append(parts, *event.Location)
	}
	return strings.Join(parts, ", ")
}
