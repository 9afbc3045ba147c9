package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestModerationGate_CheckText(t *testing.T) {
	ctx := context.Background()

	t.Run("joins title and description with one space", func(t *testing.T) {
		oracle := new(MockModerationOracle)
		oracle.On("CheckText", ctx, "Road bike Barely used").Return(true, nil).Once()

		gate := NewModerationGate(oracle, logger.NewNop())
		assert.NoError(t, gate.CheckText(ctx, "Road bike", "Barely used"))
		oracle.AssertExpectations(t)
	})

	t.Run("blank text skips the oracle", func(t *testing.T) {
		oracle := new(MockModerationOracle)
		gate := NewModerationGate(oracle, logger.NewNop())

		assert.NoError(t, gate.CheckText(ctx, "  ", "\t"))
		oracle.AssertNotCalled(t, "CheckText", mock.Anything, mock.Anything)
	})

	t.Run("rejection", func(t *testing.T) {
		oracle := new(MockModerationOracle)
		oracle.On("CheckText", ctx, mock.Anything).Return(false, nil).Once()

		err := NewModerationGate(oracle, logger.NewNop()).CheckText(ctx, "bad", "")
		assert.ErrorIs(t, err, domain.ErrModerationRejected)
		assert.NotErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("oracle failure is upstream", func(t *testing.T) {
		oracle := new(MockModerationOracle)
		oracle.On("CheckText", ctx, mock.Anything).Return(false, errors.New("timeout")).Once()

		err := NewModerationGate(oracle, logger.NewNop()).CheckText(ctx, "t", "d")
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func TestModerationGate_CheckImage(t *testing.T) {
	ctx := context.Background()

	t.Run("empty bytes skip the oracle", func(t *testing.T) {
		oracle := new(MockModerationOracle)
		gate := NewModerationGate(oracle, logger.NewNop())

		assert.NoError(t, gate.CheckImage(ctx, nil))
		oracle.AssertNotCalled(t, "CheckImage", mock.Anything, mock.Anything)
	})

	t.Run("rejection", func(t *testing.T) {
		oracle := new(MockModerationOracle)
		oracle.On("CheckImage", ctx, []byte{1, 2}).Return(false, nil).Once()

		err := NewModerationGate(oracle, logger.NewNop()).CheckImage(ctx, []byte{1, 2})
		assert.ErrorIs(t, err, domain.ErrModerationRejected)
		oracle.AssertExpectations(t)
	})
}
