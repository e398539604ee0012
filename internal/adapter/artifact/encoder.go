package artifact

import (
	"fmt"
	"slices"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// ClassEncoder is a fitted label encoder: a value's code is its index in the
// ordered class list.
type ClassEncoder struct {
	classes []string
	index   map[string]int
}

// NewClassEncoder builds an encoder from an ordered, duplicate-free class list.
func NewClassEncoder(classes []string) (*ClassEncoder, error) {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		index[c] = i
	}
	return &ClassEncoder{classes: slices.Clone(classes), index: index}, nil
}

// Classes returns the fitted vocabulary in code order.
func (e *ClassEncoder) Classes() []string { return slices.Clone(e.classes) }

func (e *ClassEncoder) Transform(values []string) ([]int, error) {
	codes := make([]int, len(values))
	for i, v := range values {
		code, ok := e.index[v]
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnseenLabel, v)
		}
		codes[i] = code
	}
	return codes, nil
}
