package pdb

import (
	"errors"
	"fmt"
)

// Max returns a heuristic whose bound is the largest of hs. The maximum of
// admissible bounds is admissible.
//
// Parts that report ErrUnpopulatedIndex are skipped; if every part does, so
// does the result. Any other error is returned as is.
func Max[S any](hs ...Heuristic[S]) Heuristic[S] {
	return maxOf[S](hs)
}

type maxOf[S any] []Heuristic[S]

func (m maxOf[S]) Distance(s S) (uint8, error) {
	var best uint8
	known := false
	for _, h := range m {
		d, err := h.Distance(s)
		if errors.Is(err, ErrUnpopulatedIndex) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if !known || d > best {
			best, known = d, true
		}
	}
	if !known {
		return 0, fmt.Errorf("%w: no part has a bound", ErrUnpopulatedIndex)
	}
	return best, nil
}
