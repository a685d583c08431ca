package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-pin-1111")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pin-1111", hash)

	assert.True(t, CheckPasswordHash("secret-pin-1111", hash))
	assert.False(t, CheckPasswordHash("wrong-pin", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("driver-abc12345", "driver1@campus.edu", "driver", "KBUS001")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "driver-abc12345", claims.UserID)
	assert.Equal(t, "driver1@campus.edu", claims.Email)
	assert.Equal(t, "driver", claims.Role)
	assert.Equal(t, "KBUS001", claims.BusID)
}

func TestSetExpiration(t *testing.T) {
	defer func(old time.Duration) { tokenTTL = old }(tokenTTL)

	require.NoError(t, SetExpiration("1h"))

	token, err := GenerateJWT("student-1", "alice@campus.edu", "student", "")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	// Empty keeps whatever is installed; garbage is refused.
	require.NoError(t, SetExpiration(""))
	assert.Error(t, SetExpiration("soon"))
}

func TestParseJWTRejectsTampering(t *testing.T) {
	token, err := GenerateJWT("student-1", "alice@campus.edu", "student", "")
	require.NoError(t, err)

	_, err = ParseJWT(token + "x")
	assert.Error(t, err)

	_, err = ParseJWT("not-a-token")
	assert.Error(t, err)
}
