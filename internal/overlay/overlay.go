// Package overlay keeps the per-user state that augments backend data:
// bookmarked, read and disabled-feed URL sets plus a settings override.
package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/storage"
)

const (
	BookmarksKey     = "teletext_bookmarks"
	ReadKey          = "teletext_read"
	DisabledFeedsKey = "teletext_disabled_feeds"
	SettingsKey      = "teletext_settings"
)

const opTimeout = 2 * time.Second

// Store persists every mutation immediately. Read and write failures are
// logged and otherwise ignored: a broken store behaves like an empty one.
type Store struct {
	kv  storage.KV
	log *slog.Logger
}

func New(kv storage.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, log: logger}
}

type Set struct {
	s   *Store
	key string
}

func (s *Store) Bookmarks() Set     { return Set{s: s, key: BookmarksKey} }
func (s *Store) Read() Set          { return Set{s: s, key: ReadKey} }
func (s *Store) DisabledFeeds() Set { return Set{s: s, key: DisabledFeedsKey} }

func (set Set) All() map[string]struct{} {
	return set.s.loadSet(set.key)
}

func (set Set) Has(url string) bool {
	_, ok := set.s.loadSet(set.key)[url]
	return ok
}

func (set Set) Add(url string) {
	m := set.s.loadSet(set.key)
	if _, ok := m[url]; ok {
		return
	}
	m[url] = struct{}{}
	set.s.saveSet(set.key, m)
}

func (set Set) Remove(url string) {
	m := set.s.loadSet(set.key)
	if _, ok := m[url]; !ok {
		return
	}
	delete(m, url)
	set.s.saveSet(set.key, m)
}

// Toggle flips membership and reports whether url is now a member.
func (set Set) Toggle(url string) bool {
	m := set.s.loadSet(set.key)
	_, member := m[url]
	if member {
		delete(m, url)
	} else {
		m[url] = struct{}{}
	}
	set.s.saveSet(set.key, m)
	return !member
}

func (set Set) Clear() {
	set.s.saveSet(set.key, map[string]struct{}{})
}

// ToggleFeed flips the disabled state of a feed and reports whether it is now enabled.
func (s *Store) ToggleFeed(url string) bool {
	return !s.DisabledFeeds().Toggle(url)
}

func (s *Store) FeedEnabled(url string) bool {
	return !s.DisabledFeeds().Has(url)
}

// Enrich stamps Bookmarked and Read on every article from the current sets.
func (s *Store) Enrich(articles []api.Article) []api.Article {
	bookmarks := s.Bookmarks().All()
	read := s.Read().All()
	for i := range articles {
		_, articles[i].Bookmarked = bookmarks[articles[i].URL]
		_, articles[i].Read = read[articles[i].URL]
	}
	return articles
}

func (s *Store) LoadSettings() (api.Settings, bool) {
	raw, ok := s.get(SettingsKey)
	if !ok {
		return api.Settings{}, false
	}
	settings := api.DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.log.Debug("overlay: corrupt settings", "err", err)
		return api.Settings{}, false
	}
	return settings.Normalize(), true
}

func (s *Store) SaveSettings(settings api.Settings) {
	raw, err := json.Marshal(settings)
	if err != nil {
		s.log.Debug("overlay: encode settings", "err", err)
		return
	}
	s.put(SettingsKey, raw)
}

func (s *Store) loadSet(key string) map[string]struct{} {
	out := make(map[string]struct{})
	raw, ok := s.get(key)
	if !ok {
		return out
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		s.log.Debug("overlay: corrupt set", "key", key, "err", err)
		return out
	}
	for _, u := range urls {
		out[u] = struct{}{}
	}
	return out
}

func (s *Store) saveSet(key string, m map[string]struct{}) {
	urls := make([]string, 0, len(m))
	for u := range m {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	raw, err := json.Marshal(urls)
	if err != nil {
		s.log.Debug("overlay: encode set", "key", key, "err", err)
		return
	}
	s.put(key, raw)
}

func (s *Store) get(key string) ([]byte, bool) {
	if s == nil || s.kv == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Debug("overlay: read failed", "key", key, "err", err)
		}
		return nil, false
	}
	return raw, true
}

func (s *Store) put(key string, raw []byte) {
	if s == nil || s.kv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.kv.Put(ctx, key, raw); err != nil {
		s.log.Debug("overlay: write failed", "key", key, "err", err)
	}
}
