package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ModerationGate wraps the moderation oracle with the skip rules for empty
// input and turns verdicts into error kinds.
type ModerationGate struct {
	oracle domain.ModerationOracle
	logger *logger.Logger
}

func NewModerationGate(oracle domain.ModerationOracle, log *logger.Logger) *ModerationGate {
	return &ModerationGate{oracle: oracle, logger: log.Named("ModerationGate")}
}

// CheckText moderates title and description joined by a single space. Blank
// text is not sent to the oracle.
func (g *ModerationGate) CheckText(ctx context.Context, title, description string) error {
	text := title + " " + description
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ok, err := g.oracle.CheckText(ctx, text)
	if err != nil {
		g.logger.Error("text moderation unavailable", zap.Error(err))
		return fmt.Errorf("%w: text moderation: %v", domain.ErrUpstream, err)
	}
	if !ok {
		g.logger.Warn("listing text rejected", zap.String("title", title))
		return fmt.Errorf("%w: listing text is not allowed", domain.ErrModerationRejected)
	}
	return nil
}

// CheckImage moderates image bytes. An empty payload is not sent to the oracle.
func (g *ModerationGate) CheckImage(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	ok, err := g.oracle.CheckImage(ctx, data)
	if err != nil {
		g.logger.Error("image moderation unavailable", zap.Error(err))
		return fmt.Errorf("%w: image moderation: %v", domain.ErrUpstream, err)
	}
	if !ok {
		g.logger.Warn("listing image rejected", zap.Int("size_bytes", len(data)))
		return fmt.Errorf("%w: image is not allowed", domain.ErrModerationRejected)
	}
	return nil
}
