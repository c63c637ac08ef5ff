package classifier

import (
	"html"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nikola254/breaking-news-sub000/internal/lexicon"
)

type markTier int

const (
	tierKeyword markTier = iota
	tierHate
	tierThreat
)

var tierClass = map[markTier]string{
	tierKeyword: "extremist-keyword",
	tierHate:    "hate-keyword",
	tierThreat:  "threat-keyword",
}

type mark struct {
	start, end int // rune offsets, end exclusive
	tier       markTier
}

func (m mark) overlaps(o mark) bool {
	return m.start < o.end && o.start < m.end
}

// highlight wraps threat-pattern, hate-pattern and keyword matches of text in
// tagged spans. Everything outside and inside the spans is HTML-escaped.
// When matches overlap, the higher tier wins, then the longer match.
func highlight(lex *lexicon.Compiled, text string, keywords []string) string {
	if text == "" {
		return ""
	}

	var marks []mark
	addSpans := func(p lexicon.Pattern, tier markTier) {
		for _, s := range p.Spans(text) {
			marks = append(marks, mark{start: s.Start, end: s.Start + s.Length, tier: tier})
		}
	}

	for _, p := range lex.ThreatPatterns() {
		addSpans(p, tierThreat)
	}
	for _, p := range lex.HateSpeechPatterns() {
		addSpans(p, tierHate)
	}

	terms := append([]string(nil), keywords...)
	sort.SliceStable(terms, func(i, j int) bool {
		return utf8.RuneCountInString(terms[i]) > utf8.RuneCountInString(terms[j])
	})
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		p, err := lexicon.SubstringPattern(term)
		if err != nil {
			continue
		}
		addSpans(p, tierKeyword)
	}

	if len(marks) == 0 {
		return html.EscapeString(text)
	}

	sort.SliceStable(marks, func(i, j int) bool {
		a, b := marks[i], marks[j]
		if a.tier != b.tier {
			return a.tier > b.tier
		}
		if la, lb := a.end-a.start, b.end-b.start; la != lb {
			return la > lb
		}
		return a.start < b.start
	})

	accepted := make([]mark, 0, len(marks))
	for _, m := range marks {
		clash := false
		for _, a := range accepted {
			if m.overlaps(a) {
				clash = true
				break
			}
		}
		if !clash {
			accepted = append(accepted, m)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	runes := []rune(text)
	var b strings.Builder
	pos := 0
	for _, m := range accepted {
		b.WriteString(html.EscapeString(string(runes[pos:m.start])))
		b.WriteString(`<span class="`)
		b.WriteString(tierClass[m.tier])
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(string(runes[m.start:m.end])))
		b.WriteString(`</span>`)
		pos = m.end
	}
	b.WriteString(html.EscapeString(string(runes[pos:])))

	return b.String()
}
