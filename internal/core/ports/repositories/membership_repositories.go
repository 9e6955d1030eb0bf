package repositories

import "context"

// MembershipReader answers yes/no questions about the social graph.
// Users, friendships and groups are owned by other services; this side only reads them.
type MembershipReader interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	GroupExists(ctx context.Context, groupID int64) (bool, error)
	AreFriends(ctx context.Context, userID, otherUserID int64) (bool, error)
	IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error)
}
