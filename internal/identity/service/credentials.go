package service

import (
	"context"
	"strings"
	"sync"

	userdomain "tenant-admin/backend/internal/user/domain"
)

// dummyStamp salts the decoy hash compared for unknown usernames.
const dummyStamp = "0000000000000000"

// VerifyCredentials returns the user whose email or phone number equals username and whose stored
// hash matches password plus the user's security stamp. Unknown users and wrong passwords both
// return ErrInvalidCredentials after one bcrypt comparison.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (*userdomain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.FindByEmailOrPhone(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		_ = s.hasher.Compare(s.decoyHash(), password, dummyStamp)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password, user.SecurityStamp); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

type decoy struct {
	once sync.Once
	hash string
}

// decoyHash lazily builds a hash at the hasher's cost so a miss costs as much as a mismatch.
func (s *AuthService) decoyHash() string {
	s.decoy.once.Do(func() {
		s.decoy.hash, _ = s.hasher.Hash("decoy-password", dummyStamp)
	})
	return s.decoy.hash
}
