package memory

import (
	"context"

	"github.com/SscSPs/splitledger/internal/core/domain"
)

// AddUser registers a user id.
func (s *Store) AddUser(userIDs ...int64) {
	s.graphMu.Lock()
	defer s.graphMu.Unlock()
	for _, id := range userIDs {
		s.users[id] = true
	}
}

// AddFriendship registers a symmetric friendship. Both users are registered too.
func (s *Store) AddFriendship(userID, otherUserID int64) {
	s.AddUser(userID, otherUserID)
	s.graphMu.Lock()
	defer s.graphMu.Unlock()
	s.friendships[domain.FriendKey(userID, otherUserID)] = true
}

// AddGroupMember registers a group and adds members to it.
func (s *Store) AddGroupMember(groupID int64, userIDs ...int64) {
	s.AddUser(userIDs...)
	s.graphMu.Lock()
	defer s.graphMu.Unlock()
	members, ok := s.groups[groupID]
	if !ok {
		members = make(map[int64]bool)
		s.groups[groupID] = members
	}
	for _, id := range userIDs {
		members[id] = true
	}
}

func (s *Store) UserExists(_ context.Context, userID int64) (bool, error) {
	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	return s.users[userID], nil
}

func (s *Store) GroupExists(_ context.Context, groupID int64) (bool, error) {
	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	_, ok := s.groups[groupID]
	return ok, nil
}

func (s *Store) AreFriends(_ context.Context, userID, otherUserID int64) (bool, error) {
	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	return s.friendships[domain.FriendKey(userID, otherUserID)], nil
}

func (s *Store) IsGroupMember(_ context.Context, groupID, userID int64) (bool, error) {
	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	return s.groups[groupID][userID], nil
}

// SaveLedgerEvent appends the event to the in-memory log.
func (s *Store) SaveLedgerEvent(_ context.Context, event domain.LedgerEvent) error {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// LedgerEvents returns a copy of the recorded events in arrival order.
func (s *Store) LedgerEvents() []domain.LedgerEvent {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()
	out := make([]domain.LedgerEvent, len(s.events))
	copy(out, s.events)
	return out
}
