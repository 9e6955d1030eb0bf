package utils_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestPosthogClientWrapper_WithoutKeyIsNoop(t *testing.T) {
	w := utils.InitializePosthogClient("", slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.False(t, w.IsInitialized())
	assert.NotPanics(t, func() {
		w.Enqueue("1", "post_api_v1_expenses", nil)
		assert.NoError(t, w.SaveLedgerEvent(context.Background(), domain.NewLedgerEvent(domain.EventExpenseCreated)))
		w.Close()
	})

	var nilWrapper *utils.PosthogClientWrapper
	assert.False(t, nilWrapper.IsInitialized())
}
