package alert

import (
	"testing"

	"github.com/glabrego/teletext-cli/internal/api"
)

func TestFind_OnlyNewArticles(t *testing.T) {
	articles := []api.Article{
		{URL: "A", Title: "x marks the spot"},
		{URL: "B", Title: "Another X story"},
	}
	got := Find(articles, []string{"x"}, SeenSet(articles[:1]))
	if len(got) != 1 {
		t.Fatalf("expected exactly one match, got %+v", got)
	}
	if got[0].Article.URL != "B" || got[0].Keyword != "x" {
		t.Fatalf("unexpected match: %+v", got[0])
	}
}

func TestFind_FirstKeywordWinsAndOrderKept(t *testing.T) {
	articles := []api.Article{
		{URL: "1", Title: "Go and Rust", Summary: ""},
		{URL: "2", Title: "Nothing", Summary: "all about RUST"},
		{URL: "3", Title: "Unrelated"},
	}
	got := Find(articles, []string{"", "Go", "rust"}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
	if got[0].Article.URL != "1" || got[0].Keyword != "Go" {
		t.Fatalf("unexpected first match: %+v", got[0])
	}
	if got[1].Article.URL != "2" || got[1].Keyword != "rust" {
		t.Fatalf("unexpected second match: %+v", got[1])
	}
}

func TestFind_SkipsURLlessAndEmptyKeywords(t *testing.T) {
	articles := []api.Article{{Title: "go"}}
	if got := Find(articles, []string{"go"}, nil); len(got) != 0 {
		t.Fatalf("expected url-less article to be skipped, got %+v", got)
	}
	if got := Find([]api.Article{{URL: "u", Title: "go"}}, []string{""}, nil); got != nil {
		t.Fatalf("expected no matches for empty keywords, got %+v", got)
	}
	if got := Find([]api.Article{{URL: "u", Title: "go"}}, nil, nil); got != nil {
		t.Fatalf("expected no matches without keywords, got %+v", got)
	}
}

func TestFind_TitleSummaryBoundary(t *testing.T) {
	got := Find([]api.Article{{URL: "u", Title: "ab", Summary: "cd"}}, []string{"b c"}, nil)
	if len(got) != 1 {
		t.Fatalf("expected title and summary to be joined by a space, got %+v", got)
	}
}
