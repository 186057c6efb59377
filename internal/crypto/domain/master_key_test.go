package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestMasterKeySession_SetAndAcquire(t *testing.T) {
	session := NewMasterKeySession()

	_, err := session.Acquire()
	assert.ErrorIs(t, err, ErrMasterKeyNotSet)
	assert.False(t, session.Established())

	require.NoError(t, session.Set(testKey(0x42)))
	assert.True(t, session.Established())

	key, err := session.Acquire()
	require.NoError(t, err)
	assert.Equal(t, testKey(0x42), key)
}

func TestMasterKeySession_SetIdempotent(t *testing.T) {
	session := NewMasterKeySession()

	require.NoError(t, session.Set(testKey(0x01)))
	require.NoError(t, session.Set(testKey(0x01)))

	key, err := session.Acquire()
	require.NoError(t, err)
	assert.Equal(t, testKey(0x01), key)
}

func TestMasterKeySession_SetRejectsWrongSize(t *testing.T) {
	session := NewMasterKeySession()
	assert.ErrorIs(t, session.Set([]byte("short")), ErrInvalidKeySize)
}

func TestMasterKeySession_AcquireReturnsCopy(t *testing.T) {
	session := NewMasterKeySession()
	require.NoError(t, session.Set(testKey(0x07)))

	key, err := session.Acquire()
	require.NoError(t, err)
	Zero(key)

	// Mutating the acquired copy must not affect the session's key
	again, err := session.Acquire()
	require.NoError(t, err)
	assert.Equal(t, testKey(0x07), again)
}

func TestMasterKeySession_Clear(t *testing.T) {
	session := NewMasterKeySession()
	require.NoError(t, session.Set(testKey(0x0a)))

	session.Clear()
	assert.False(t, session.Established())

	_, err := session.Acquire()
	assert.ErrorIs(t, err, ErrMasterKeyNotSet)

	// Clearing an empty session is safe
	session.Clear()
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	assert.True(t, bytes.Equal(b, []byte{0, 0, 0}))

	Zero(nil)
}
