package lexicon

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

// matchTimeout bounds a single regex evaluation. A timed out match counts as no match.
const matchTimeout = 250 * time.Millisecond

var (
	ErrEmptyDictionary = errors.New("keyword dictionary has no categories")
	ErrInvalidCategory = errors.New("invalid keyword category")
)

// Category is a named, ordered list of keyword phrases.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Lexicon is the raw, uncompiled classifier vocabulary.
// Category order is significant: it fixes the order of risk factors and found keywords.
type Lexicon struct {
	Categories         []Category `yaml:"categories" json:"categories"`
	ThreatPatterns     []string   `yaml:"threat_patterns" json:"threat_patterns"`
	HateSpeechPatterns []string   `yaml:"hate_speech_patterns" json:"hate_speech_patterns"`
	NewsMarkers        []string   `yaml:"news_markers" json:"news_markers"`
	EmotionalWords     []string   `yaml:"emotional_words" json:"emotional_words"`
}

// Load reads a lexicon from a YAML file.
func Load(path string) (Lexicon, error) {
	var lex Lexicon

	file, err := os.Open(path)
	if err != nil {
		return lex, fmt.Errorf("failed to open lexicon file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&lex); err != nil {
		return lex, fmt.Errorf("failed to decode lexicon file: %w", err)
	}
	return lex, nil
}

// Keyword is a compiled keyword phrase matched on word boundaries.
type Keyword struct {
	Phrase string
	re     *regexp2.Regexp
}

// Count returns the number of non-overlapping occurrences in an already lower-cased text.
func (k Keyword) Count(lowered string) int {
	return countMatches(k.re, lowered)
}

// In reports whether the keyword occurs in an already lower-cased text.
func (k Keyword) In(lowered string) bool {
	ok, err := k.re.MatchString(lowered)
	return err == nil && ok
}

// Pattern is a compiled, case-insensitive regular expression.
type Pattern struct {
	Source string
	re     *regexp2.Regexp
}

func (p Pattern) Matches(text string) bool {
	ok, err := p.re.MatchString(text)
	return err == nil && ok
}

// Spans returns every non-overlapping match in text as rune offsets.
func (p Pattern) Spans(text string) []Span {
	return findSpans(p.re, text)
}

// Span is a matched region of a text, in runes.
type Span struct {
	Start  int
	Length int
}

type compiledCategory struct {
	name     string
	keywords []Keyword
}

// Compiled is the immutable, ready-to-match form of a Lexicon.
// It is safe for concurrent use.
type Compiled struct {
	categories  []compiledCategory
	index       map[string]int
	threat      []Pattern
	hate        []Pattern
	newsMarkers []string
	emotional   []string
}

// Compile validates a lexicon and compiles all of its expressions.
func Compile(lex Lexicon) (*Compiled, error) {
	if len(lex.Categories) == 0 {
		return nil, ErrEmptyDictionary
	}

	c := &Compiled{
		index: make(map[string]int, len(lex.Categories)),
	}

	for _, cat := range lex.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidCategory)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCategory, name)
		}
		if len(cat.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", ErrInvalidCategory, name)
		}

		cc := compiledCategory{name: name, keywords: make([]Keyword, 0, len(cat.Keywords))}
		for _, phrase := range cat.Keywords {
			phrase = strings.ToLower(strings.TrimSpace(phrase))
			if phrase == "" {
				return nil, fmt.Errorf("%w: category %q has an empty keyword", ErrInvalidCategory, name)
			}
			re, err := compile(`\b`+regexp2.Escape(phrase)+`\b`, regexp2.None)
			if err != nil {
				return nil, fmt.Errorf("failed to compile keyword %q: %w", phrase, err)
			}
			cc.keywords = append(cc.keywords, Keyword{Phrase: phrase, re: re})
		}

		c.index[name] = len(c.categories)
		c.categories = append(c.categories, cc)
	}

	var err error
	if c.threat, err = compilePatterns(lex.ThreatPatterns); err != nil {
		return nil, fmt.Errorf("threat patterns: %w", err)
	}
	if c.hate, err = compilePatterns(lex.HateSpeechPatterns); err != nil {
		return nil, fmt.Errorf("hate speech patterns: %w", err)
	}

	c.newsMarkers = lowerAll(lex.NewsMarkers)
	c.emotional = lowerAll(lex.EmotionalWords)

	return c, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and package-level defaults.
func MustCompile(lex Lexicon) *Compiled {
	c, err := Compile(lex)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns category names in dictionary order.
func (c *Compiled) Categories() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.name
	}
	return names
}

func (c *Compiled) HasCategory(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Keywords returns the compiled keywords of a category, or nil if it does not exist.
func (c *Compiled) Keywords(category string) []Keyword {
	i, ok := c.index[category]
	if !ok {
		return nil
	}
	return c.categories[i].keywords
}

func (c *Compiled) ThreatPatterns() []Pattern     { return c.threat }
func (c *Compiled) HateSpeechPatterns() []Pattern { return c.hate }

// HasNewsContext reports whether any journalistic marker is a substring of the lower-cased text.
func (c *Compiled) HasNewsContext(lowered string) bool {
	for _, m := range c.newsMarkers {
		if strings.Contains(lowered, m) {
			return true
		}
	}
	return false
}

// EmotionalWordCount counts how many lexicon entries appear in the lower-cased text.
func (c *Compiled) EmotionalWordCount(lowered string) int {
	n := 0
	for _, w := range c.emotional {
		if strings.Contains(lowered, w) {
			n++
		}
	}
	return n
}

// SubstringPattern compiles a case-insensitive literal matcher for an arbitrary term.
func SubstringPattern(term string) (Pattern, error) {
	re, err := compile(regexp2.Escape(term), regexp2.IgnoreCase)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Source: term, re: re}, nil
}

func compilePatterns(sources []string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(sources))
	for _, src := range sources {
		re, err := compile(src, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", src, err)
		}
		out = append(out, Pattern{Source: src, re: re})
	}
	return out, nil
}

func compile(expr string, opts regexp2.RegexOptions) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}

func countMatches(re *regexp2.Regexp, text string) int {
	return len(findSpans(re, text))
}

func findSpans(re *regexp2.Regexp, text string) []Span {
	var spans []Span
	m, err := re.FindStringMatch(text)
	for err == nil && m != nil {
		if m.Length == 0 {
			break
		}
		spans = append(spans, Span{Start: m.Index, Length: m.Length})
		m, err = re.FindNextMatch(m)
	}
	return spans
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
