package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserPasswordHashing(t *testing.T) {
	user := &User{Email: "cook@example.com", Password: "correct-horse"}

	require.NoError(t, user.HashPassword())
	assert.Empty(t, user.Password)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	assert.True(t, user.CheckPassword("correct-horse"))
	assert.False(t, user.CheckPassword("wrong-horse"))
}

func TestOAuthClientInfo(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	client := &OAuthClient{ID: "client-1", Secret: string(hash), Domain: "http://localhost", UserID: 42}

	assert.Equal(t, "client-1", client.GetID())
	assert.Equal(t, "42", client.GetUserID())
	assert.False(t, client.IsPublic())
	assert.True(t, client.VerifyPassword("s3cret"))
	assert.False(t, client.VerifyPassword("nope"))

	client.UserID = 0
	assert.Empty(t, client.GetUserID())
}
