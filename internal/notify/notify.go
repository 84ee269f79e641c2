// Package notify delivers keyword alerts outside the terminal UI. Delivery
// is best-effort: a backend that is unavailable or was denied is skipped.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/glabrego/teletext-cli/internal/alert"
)

type Notifier interface {
	// RequestPermission reports whether the backend can deliver notifications.
	RequestPermission(ctx context.Context) bool
	// Notify shows one notification. key identifies it for de-duplication.
	Notify(ctx context.Context, title, body, key string) error
}

const maxRemembered = 1024

// Dispatcher fans a notification out to every granted backend and drops
// repeats of a key it has already delivered.
type Dispatcher struct {
	backends []Notifier
	log      *slog.Logger

	mu      sync.Mutex
	granted []Notifier
	asked   bool
	seen    map[string]struct{}
	order   []string
}

func NewDispatcher(logger *slog.Logger, backends ...Notifier) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		backends: backends,
		log:      logger,
		seen:     make(map[string]struct{}),
	}
}

// RequestPermission asks every backend once and keeps the ones that agreed.
func (d *Dispatcher) RequestPermission(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.granted = d.granted[:0]
	for _, b := range d.backends {
		if b.RequestPermission(ctx) {
			d.granted = append(d.granted, b)
		}
	}
	d.asked = true
	return len(d.granted) > 0
}

func (d *Dispatcher) Notify(ctx context.Context, title, body, key string) error {
	d.mu.Lock()
	if !d.asked || len(d.granted) == 0 {
		d.mu.Unlock()
		return nil
	}
	if key != "" {
		if _, dup := d.seen[key]; dup {
			d.mu.Unlock()
			return nil
		}
		d.remember(key)
	}
	targets := append([]Notifier(nil), d.granted...)
	d.mu.Unlock()

	var errs []error
	for _, b := range targets {
		if err := b.Notify(ctx, title, body, key); err != nil {
			d.log.Debug("notify: delivery failed", "key", key, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Alerts delivers one notification per match and returns how many were
// accepted without a delivery error. Repeats count as accepted.
func (d *Dispatcher) Alerts(ctx context.Context, matches []alert.Match) int {
	sent := 0
	for _, m := range matches {
		title, body, key := Format(m)
		if err := d.Notify(ctx, title, body, key); err == nil {
			sent++
		}
	}
	return sent
}

func (d *Dispatcher) remember(key string) {
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	if len(d.order) > maxRemembered {
		delete(d.seen, d.order[0])
		d.order = d.order[1:]
	}
}

func Format(m alert.Match) (title, body, key string) {
	title = fmt.Sprintf("TELETEXT ALERT: %s", m.Keyword)
	body = m.Article.Title
	if m.Article.Source != "" {
		body = fmt.Sprintf("%s (%s)", m.Article.Title, m.Article.Source)
	}
	return title, body, "teletext-" + m.Article.URL
}
