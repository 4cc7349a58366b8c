package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerMemory(t *testing.T) {
	c, err := NewContainer(context.Background(), Config{Driver: " Memory "})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, c.Driver)
	assert.NoError(t, c.Catalog.Ping(context.Background()))
	assert.Nil(t, c.Stats())
	assert.NoError(t, c.Close(context.Background()))
}

func TestNewContainerUnknownDriver(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{Driver: "sqlite"})
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)
}
