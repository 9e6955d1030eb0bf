package pgsql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "no rows", err: pgx.ErrNoRows, wantErr: apperrors.ErrNotFound},
		{name: "lock timeout", err: &pgconn.PgError{Code: pgLockNotAvailable}, wantErr: apperrors.ErrConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: pgDeadlockDetected}, wantErr: apperrors.ErrConflict},
		{name: "serialization failure", err: fmt.Errorf("commit: %w", &pgconn.PgError{Code: pgSerializationFailure}), wantErr: apperrors.ErrConflict},
		{name: "unique violation", err: &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "ledger_events_pkey"}, wantErr: apperrors.ErrDuplicate},
		{name: "sentinel passes through", err: fmt.Errorf("expense 4: %w", apperrors.ErrNotFound), wantErr: apperrors.ErrNotFound},
		{name: "cancelled", err: context.Canceled, wantErr: context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapPgError(tt.err, "op"), tt.wantErr)
		})
	}

	assert.NoError(t, mapPgError(nil, "op"))

	other := mapPgError(errors.New("connection reset"), "op")
	var appErr *apperrors.AppError
	assert.ErrorAs(t, other, &appErr)
	assert.Equal(t, 500, appErr.Code)
	assert.False(t, apperrors.IsRetryable(other))
	assert.True(t, apperrors.IsRetryable(mapPgError(&pgconn.PgError{Code: pgLockNotAvailable}, "op")))
}

func TestCheckVersionedWrite(t *testing.T) {
	key := domain.FriendKey(1, 2)

	assert.NoError(t, checkVersionedWrite(pgconn.NewCommandTag("UPDATE 1"), key, 3))

	err := checkVersionedWrite(pgconn.NewCommandTag("UPDATE 0"), key, 3)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.True(t, apperrors.IsRetryable(err), "a lost version race is retried by the balance service")
	assert.ErrorIs(t, mapPgError(err, "upsert"), apperrors.ErrConflict)
}

func TestListingQueryHelpers(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-1))
	if got := limitArg(50); assert.NotNil(t, got) {
		assert.Equal(t, 50, *got)
	}

	clause := involves("$2")
	assert.Contains(t, clause, "payer_id = $2")
	assert.Contains(t, clause, "p.user_id = $2")
}
