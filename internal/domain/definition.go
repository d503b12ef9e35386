package domain

import "context"

// Dictionary looks up the definition of a word's most common sense.
// A word with no entry returns ErrDefinitionNotFound.
type Dictionary interface {
	Define(ctx context.Context, word string) (string, error)
}
