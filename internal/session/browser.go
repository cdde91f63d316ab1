package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"eventease/internal/logger"
	"eventease/internal/metrics"
	"eventease/internal/models"
)

// DefaultDebounce is the pause after the last keystroke before a search is issued
const DefaultDebounce = 300 * time.Millisecond

// SearchFunc fetches events and the user's registrations for a query
type SearchFunc func(ctx context.Context, query string) (*models.SearchResult, error)

// Browser is the search page: debounced queries, stale response suppression and
// the client-side registration filter over the last applied result.
type Browser struct {
	search    SearchFunc
	registrar Registrar
	userID    string
	debounce  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	timer    *time.Timer
	issued   uint64
	query    string
	events   []models.Event
	cards    map[string]*Card
	filter   models.RegistrationFilter
	lastErr  error
	onUpdate func()
}

func NewBrowser(search SearchFunc, registrar Registrar, userID string, debounce time.Duration) *Browser {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Browser{
		search:    search,
		registrar: registrar,
		userID:    userID,
		debounce:  debounce,
		ctx:       ctx,
		cancel:    cancel,
		cards:     make(map[string]*Card),
		filter:    models.FilterAll,
	}
}

// OnUpdate registers fn to run after each applied response
func (b *Browser) OnUpdate(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onUpdate = fn
}

// Type restarts the debounce timer; the query is issued once typing pauses
func (b *Browser) Type(query string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, func() {
		if _, err := b.Search(b.ctx, query); err != nil {
			logger.Get().Debug("Debounced search failed", "query", query, "error", err)
		}
	})
}

// Search issues query now. It reports false when a newer query was issued before this response arrived.
func (b *Browser) Search(ctx context.Context, query string) (bool, error) {
	b.mu.Lock()
	b.issued++
	seq := b.issued
	b.mu.Unlock()

	result, err := b.search(ctx, query)

	b.mu.Lock()
	if seq != b.issued {
		b.mu.Unlock()
		metrics.StaleResponseDiscarded()
		return false, nil
	}
	if err != nil {
		b.lastErr = err
		b.mu.Unlock()
		return false, err
	}

	b.apply(strings.TrimSpace(query), result)
	onUpdate := b.onUpdate
	b.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
	return true, nil
}

// apply must be called with mu held
func (b *Browser) apply(query string, result *models.SearchResult) {
	b.query = query
	b.lastErr = nil
	b.events = result.Events

	for _, e := range result.Events {
		reg := result.RegistrationFor(e.ID)
		if card, ok := b.cards[e.ID]; ok {
			card.Sync(e, reg)
			continue
		}
		b.cards[e.ID] = NewCard(e, b.userID, reg, b.registrar)
	}

	// drop cards of events that left the result; a pending card stays until its call returns
	present := make(map[string]struct{}, len(result.Events))
	for _, e := range result.Events {
		present[e.ID] = struct{}{}
	}
	for id, card := range b.cards {
		if _, ok := present[id]; ok {
			continue
		}
		if _, pending := card.Phase().(Pending); !pending {
			delete(b.cards, id)
		}
	}
}

// SetFilter narrows the visible events without fetching
func (b *Browser) SetFilter(filter models.RegistrationFilter) {
	if !filter.Valid() || filter == "" {
		filter = models.FilterAll
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = filter
}

func (b *Browser) Filter() models.RegistrationFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Query is the query of the last applied response
func (b *Browser) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Err is the error of the latest search, nil once a response is applied
func (b *Browser) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Visible returns the last applied events that pass the filter. Registrations come from
// the cards, so a toggle is reflected without a refetch.
func (b *Browser) Visible() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible()
}

func (b *Browser) visible() []models.Event {
	registrations := make([]models.Registration, 0, len(b.cards))
	for _, e := range b.events {
		if reg := b.cards[e.ID].Registration(); reg != nil {
			registrations = append(registrations, *reg)
		}
	}
	return models.ApplyRegistrationFilter(b.events, registrations, b.filter)
}

// Cards returns the card of every visible event, in display order
func (b *Browser) Cards() []*Card {
	b.mu.Lock()
	defer b.mu.Unlock()

	visible := b.visible()
	cards := make([]*Card, 0, len(visible))
	for _, e := range visible {
		cards = append(cards, b.cards[e.ID])
	}
	return cards
}

// Card finds the card of an event in the last applied result
func (b *Browser) Card(eventID string) (*Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	card, ok := b.cards[eventID]
	return card, ok
}

// Close stops a pending debounce and cancels debounced searches in flight
func (b *Browser) Close() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	b.cancel()
}
