package insights

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// tokenPattern matches runs of letters, combining marks and digits in any
// script, so accented and non-Latin words stay whole.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}]+`)

// minTopicLength drops short tokens such as "ok" or "pm". It counts runes.
const minTopicLength = 3

// topicCounter accumulates token frequencies in first-seen order.
type topicCounter struct {
	fold   cases.Caser
	counts map[string]int
	order  []string
}

func newTopicCounter() *topicCounter {
	return &topicCounter{fold: cases.Fold(), counts: make(map[string]int)}
}

// add tokenizes text and counts the tokens that qualify as topics.
func (c *topicCounter) add(text string) {
	for _, tok := range tokenPattern.FindAllString(c.fold.String(text), -1) {
		if !isTopic(tok) {
			continue
		}
		if _, seen := c.counts[tok]; !seen {
			c.order = append(c.order, tok)
		}
		c.counts[tok]++
	}
}

// top returns up to n tokens by descending count, ties broken by first
// occurrence.
func (c *topicCounter) top(n int) []string {
	ranked := make([]string, len(c.order))
	copy(ranked, c.order)

	// c.order is already in first-occurrence order, so a stable sort keeps
	// that as the tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func isTopic(tok string) bool {
	if utf8.RuneCountInString(tok) < minTopicLength || stopWords[tok] {
		return false
	}
	for _, r := range tok {
		if !unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// stopWords are common English words and mail boilerplate that carry no
// topic signal.
var stopWords = toSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had",
	"her", "was", "one", "our", "out", "has", "have", "him", "his", "how", "its",
	"may", "new", "now", "old", "see", "two", "way", "who", "did", "get", "got",
	"let", "put", "say", "she", "too", "use", "yes", "yet", "off", "own", "via",
	"this", "that", "with", "from", "they", "them", "then", "than", "there",
	"their", "these", "those", "what", "when", "where", "which", "while", "will",
	"would", "could", "should", "shall", "been", "being", "were", "into", "onto",
	"over", "under", "about", "after", "again", "also", "just", "only", "very",
	"some", "such", "more", "most", "much", "many", "other", "each", "every",
	"both", "either", "neither", "here", "your", "yours", "ours", "mine",
	"because", "before", "below", "above", "between", "through", "during",
	"does", "doing", "done", "make", "made", "like", "well", "still", "even",
	"want", "need", "know", "think", "going", "take", "come", "back", "today",
	"tomorrow", "yesterday", "week", "please", "thanks", "thank", "regards",
	"best", "hello", "hey", "dear", "cheers", "sent", "fwd", "team", "everyone",
	"http", "https", "www", "com", "org", "net", "html", "mailto", "unsubscribe",
	"don", "won", "isn", "aren", "wasn", "weren", "doesn", "didn", "ive",
	"youre", "cant", "dont",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
