package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, secret string, ttl time.Duration) *Service {
	t.Helper()
	svc, err := NewService(Config{Secret: secret, TTL: ttl})
	require.NoError(t, err)
	return svc
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "super-secret", time.Hour)
	tok, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	email, err := svc.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", email)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "super-secret", -time.Second)
	tok, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestService(t, "right-secret", time.Hour)
	verifier := newTestService(t, "wrong-secret", time.Hour)

	tok, err := issuer.Issue("a@x.com")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "super-secret", time.Hour)
	_, err := svc.Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_Replayable(t *testing.T) {
	t.Parallel()

	// stateless tokens stay valid until expiry; the gated action is idempotent
	svc := newTestService(t, "super-secret", time.Hour)
	tok, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		email, err := svc.Verify(tok)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", email)
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewService(Config{})
	require.Error(t, err)
}
