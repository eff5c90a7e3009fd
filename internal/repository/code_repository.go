package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// codeTTL is how long a verification code stays valid after being issued.
const codeTTL = 120 * time.Second

// CodeStore keeps password-reset verification codes in Redis under
// verification_code_<email>, expiring after 120 seconds.  A nil Redis
// client is allowed; every operation then fails with redis.ErrClosed-like
// behavior via ErrCodeMismatch so the endpoints degrade instead of
// panicking.
type CodeStore struct{ RDB *redis.Client }

func NewCodeStore(rdb *redis.Client) *CodeStore { return &CodeStore{RDB: rdb} }

func codeKey(email string) string { return "verification_code_" + email }

// Put stores the code for the given email, replacing any previous one and
// resetting the TTL.
func (s *CodeStore) Put(ctx context.Context, email, code string) error {
	if s.RDB == nil {
		return ErrCodeMismatch
	}
	return s.RDB.Set(ctx, codeKey(email), code, codeTTL).Err()
}

// Verify compares the supplied code against the cached one.  A missing or
// expired entry and a wrong code are indistinguishable to the caller.  The
// code is not consumed; it stays valid until its TTL runs out.
func (s *CodeStore) Verify(ctx context.Context, email, code string) error {
	if s.RDB == nil {
		return ErrCodeMismatch
	}
	cached, err := s.RDB.Get(ctx, codeKey(email)).Result()
	if err == redis.Nil {
		return ErrCodeMismatch
	}
	if err != nil {
		return err
	}
	if cached != code {
		return ErrCodeMismatch
	}
	return nil
}
