package moderation

import (
	"context"
	"strings"
)

// BlocklistOracle rejects text containing any blocked term. Images always pass.
type BlocklistOracle struct {
	terms []string
}

func NewBlocklistOracle(terms []string) *BlocklistOracle {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			normalized = append(normalized, t)
		}
	}
	return &BlocklistOracle{terms: normalized}
}

func (b *BlocklistOracle) CheckText(_ context.Context, text string) (bool, error) {
	lower := strings.ToLower(text)
	for _, t := range b.terms {
		if strings.Contains(lower, t) {
			return false, nil
		}
	}
	return true, nil
}

func (b *BlocklistOracle) CheckImage(_ context.Context, _ []byte) (bool, error) {
	return true, nil
}
