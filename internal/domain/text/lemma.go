package text

import (
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// The English dictionary is a few MB; it is decoded on first use.
var lemmatizer = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// Lemma returns the dictionary base form of a lowercase word ("mice" -> "mouse").
// Unknown words, and every word if the dictionary fails to load, come back unchanged.
func Lemma(word string) string {
	l, err := lemmatizer()
	if err != nil {
		return word
	}
	return l.Lemma(word)
}

// LemmatizerErr reports whether the English dictionary loaded.
func LemmatizerErr() error {
	_, err := lemmatizer()
	return err //nolint:wrapcheck // load error is already descriptive
}
