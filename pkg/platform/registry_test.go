package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopClient struct {
	Client
}

func TestOpen_NoDriver(t *testing.T) {
	driver = nil

	_, err := Open(440)
	assert.ErrorIs(t, err, ErrNoDriver)
}

func TestOpen_UsesRegisteredDriver(t *testing.T) {
	driver = nil

	want := &nopClient{}
	RegisterDriver(func(gameID uint64) (Client, error) {
		assert.Equal(t, uint64(440), gameID)
		return want, nil
	})

	c, err := Open(440)
	require.NoError(t, err)
	assert.Same(t, want, c)
}

func TestOpen_DriverFailureWrapsInitFailed(t *testing.T) {
	driver = nil

	RegisterDriver(func(uint64) (Client, error) {
		return nil, errors.New("client not running")
	})

	_, err := Open(440)
	require.ErrorIs(t, err, ErrInitFailed)
	assert.Contains(t, err.Error(), "client not running")
}

func TestRegisterDriver_FirstWins(t *testing.T) {
	driver = nil

	first := &nopClient{}
	RegisterDriver(func(uint64) (Client, error) { return first, nil })
	RegisterDriver(func(uint64) (Client, error) { return &nopClient{}, nil })

	c, err := Open(1)
	require.NoError(t, err)
	assert.Same(t, first, c)
}

func TestRegisterDriver_NilIgnored(t *testing.T) {
	driver = nil

	RegisterDriver(nil)
	_, err := Open(1)
	assert.ErrorIs(t, err, ErrNoDriver)
}
