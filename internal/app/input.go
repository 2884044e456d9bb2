package app

import (
	"sort"
	"strings"
)

// history is the input line's command history: a bounded list plus a
// cursor. The cursor sits one past the end while the user is typing
// a fresh line.
type history struct {
	entries []string
	cursor  int
	limit   int
	draft   string
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = 200
	}
	return &history{limit: limit}
}

// push records a submitted line and resets the cursor.
func (h *history) push(line string) {
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		h.cursor = len(h.entries)
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = len(h.entries)
}

// prev moves the cursor back and returns the entry there. current is
// saved as the draft the first time the user leaves the fresh line.
func (h *history) prev(current string) (string, bool) {
	if h.cursor == 0 {
		return "", false
	}
	if h.cursor == len(h.entries) {
		h.draft = current
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// next moves the cursor forward; past the end it restores the draft.
func (h *history) next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.cursor], true
}

// completions is the set of completable words: local commands plus
// resource paths learned from the device.
type completions struct {
	words map[string]struct{}
}

func newCompletions() *completions {
	c := &completions{words: map[string]struct{}{}}
	for _, w := range []string{"help", "clear", "quit"} {
		c.add(w)
	}
	return c
}

func (c *completions) add(word string) {
	if word != "" {
		c.words[word] = struct{}{}
	}
}

// complete returns the longest common prefix of all words starting
// with input, plus the candidate list. With no matches it returns
// input unchanged.
func (c *completions) complete(input string) (string, []string) {
	if input == "" {
		return input, nil
	}
	var matches []string
	for w := range c.words {
		if strings.HasPrefix(w, input) {
			matches = append(matches, w)
		}
	}
	if len(matches) == 0 {
		return input, nil
	}
	sort.Strings(matches)
	prefix := matches[0]
	for _, m := range matches[1:] {
		for !strings.HasPrefix(m, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix, matches
}
