package main

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenEmail(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "ana@gmail.com"}).
		SignedString([]byte("any"))
	require.NoError(t, err)

	email, err := tokenEmail(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@gmail.com", email)

	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u-1"}).
		SignedString([]byte("any"))
	require.NoError(t, err)
	_, err = tokenEmail(noEmail)
	assert.Error(t, err)

	_, err = tokenEmail("garbage")
	assert.Error(t, err)
}
