package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
)

// PgxMembershipRepository reads the social graph mirrored into users, friendships,
// user_groups and group_members.
type PgxMembershipRepository struct {
	BaseRepository
}

func newPgxMembershipRepository(db dbtx) *PgxMembershipRepository {
	return &PgxMembershipRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.MembershipReader = (*PgxMembershipRepository)(nil)

func (r *PgxMembershipRepository) exists(ctx context.Context, msg, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok); err != nil {
		return false, mapPgError(err, msg)
	}
	return ok, nil
}

func (r *PgxMembershipRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	return r.exists(ctx, "failed to look up user", `SELECT 1 FROM users WHERE user_id = $1`, userID)
}

func (r *PgxMembershipRepository) GroupExists(ctx context.Context, groupID int64) (bool, error) {
	return r.exists(ctx, "failed to look up group", `SELECT 1 FROM user_groups WHERE group_id = $1`, groupID)
}

func (r *PgxMembershipRepository) AreFriends(ctx context.Context, userID, otherUserID int64) (bool, error) {
	lo, hi := userID, otherUserID
	if lo > hi {
		lo, hi = hi, lo
	}
	return r.exists(ctx, "failed to look up friendship",
		`SELECT 1 FROM friendships WHERE user_id_lo = $1 AND user_id_hi = $2`, lo, hi)
}

func (r *PgxMembershipRepository) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return r.exists(ctx, "failed to look up group membership",
		`SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
}
