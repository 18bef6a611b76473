package devicetoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("gate-secret", time.Hour)

	token, err := issuer.Issue("cam-entrance-01", 42)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "cam-entrance-01", claims.DeviceID)
	require.EqualValues(t, 42, claims.SocietyID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-a", time.Hour).Issue("cam-01", 1)
	require.NoError(t, err)

	_, err = NewIssuer("secret-b", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewIssuer("gate-secret", time.Nanosecond)
	token, err := issuer.Issue("cam-01", 1)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewIssuer("gate-secret", time.Hour).Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
