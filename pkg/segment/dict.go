package segment

import (
	"bufio"
	_ "embed"
	"strconv"
	"strings"
)

// minWordFrequency filters noise entries when loading dictionary files.
const minWordFrequency = 2

//go:embed dict/dictionary.txt
var embeddedDict string

// Dictionary is a frequency dictionary of multi-character words used by the
// maximum-match segmenter. Lookup is by exact string; MaxWordLength bounds
// how far forward the matcher probes.
type Dictionary struct {
	words   map[string]int
	maxLen  int
	entries int
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{words: make(map[string]int)}
}

// DefaultDictionary parses the embedded word list. The embedded list is a
// compact general-purpose vocabulary; user dictionaries can be layered on
// top with Load.
func DefaultDictionary() *Dictionary {
	d := NewDictionary()
	d.Load(strings.NewReader(embeddedDict))
	return d
}

// Load reads dictionary lines of the form "word frequency" and merges them.
// Words already present keep the higher frequency, so user dictionaries
// loaded after the default one win.
func (d *Dictionary) Load(r interface{ Read([]byte) (int, error) }) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		freq, err := strconv.Atoi(fields[1])
		if err != nil || freq < minWordFrequency {
			continue
		}
		d.Add(fields[0], freq)
	}
}

// Add inserts a word with the given frequency.
func (d *Dictionary) Add(word string, freq int) {
	if word == "" {
		return
	}
	if existing, ok := d.words[word]; ok {
		if existing >= freq {
			return
		}
	} else {
		d.entries++
	}
	d.words[word] = freq
	if n := len([]rune(word)); n > d.maxLen {
		d.maxLen = n
	}
}

// Contains reports whether word is a dictionary entry.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[word]
	return ok
}

// MaxWordLength returns the rune length of the longest entry.
func (d *Dictionary) MaxWordLength() int {
	return d.maxLen
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return d.entries
}
