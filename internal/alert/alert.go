package alert

import (
	"strings"

	"github.com/glabrego/teletext-cli/internal/api"
)

type Match struct {
	Article api.Article
	Keyword string
}

// SeenSet is the URL lookup Find expects for seen.
func SeenSet(articles []api.Article) map[string]struct{} {
	out := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		out[a.URL] = struct{}{}
	}
	return out
}

// Find reports, in input order, the new articles whose title or summary
// contains one of keywords. Each article alerts at most once, on the first
// keyword that matches. Articles without a URL are never new.
func Find(articles []api.Article, keywords []string, seen map[string]struct{}) []Match {
	if len(keywords) == 0 {
		return nil
	}
	lowered := make([]string, 0, len(keywords))
	originals := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(kw))
		originals = append(originals, kw)
	}
	if len(lowered) == 0 {
		return nil
	}

	var matches []Match
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		if _, ok := seen[a.URL]; ok {
			continue
		}
		text := strings.ToLower(a.Title + " " + a.Summary)
		for i, kw := range lowered {
			if strings.Contains(text, kw) {
				matches = append(matches, Match{Article: a, Keyword: originals[i]})
				break
			}
		}
	}
	return matches
}
