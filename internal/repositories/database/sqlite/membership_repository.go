package sqlite

import (
	"context"

	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
)

type SQLiteMembershipRepository struct {
	BaseRepository
}

func newSQLiteMembershipRepository(q querier) *SQLiteMembershipRepository {
	return &SQLiteMembershipRepository{BaseRepository: BaseRepository{DB: q}}
}

var _ portsrepo.MembershipReader = (*SQLiteMembershipRepository)(nil)

func (r *SQLiteMembershipRepository) exists(ctx context.Context, msg, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok); err != nil {
		return false, mapSQLiteError(err, msg)
	}
	return ok, nil
}

func (r *SQLiteMembershipRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	return r.exists(ctx, "failed to look up user", `SELECT 1 FROM users WHERE user_id = ?`, userID)
}

func (r *SQLiteMembershipRepository) GroupExists(ctx context.Context, groupID int64) (bool, error) {
	return r.exists(ctx, "failed to look up group", `SELECT 1 FROM user_groups WHERE group_id = ?`, groupID)
}

func (r *SQLiteMembershipRepository) AreFriends(ctx context.Context, userID, otherUserID int64) (bool, error) {
	lo, hi := userID, otherUserID
	if lo > hi {
		lo, hi = hi, lo
	}
	return r.exists(ctx, "failed to look up friendship",
		`SELECT 1 FROM friendships WHERE user_id_lo = ? AND user_id_hi = ?`, lo, hi)
}

func (r *SQLiteMembershipRepository) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return r.exists(ctx, "failed to look up group membership",
		`SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
}
