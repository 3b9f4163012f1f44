package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(47.6, -122.3, 56)

	coords, err := p.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 47.6, coords.Latitude)
	assert.Equal(t, -122.3, coords.Longitude)
	assert.Equal(t, 56.0, coords.Elevation)
}

func TestStaticProviderHonorsCancellation(t *testing.T) {
	p := NewStaticProvider(1, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CurrentLocation(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFuncProvider(t *testing.T) {
	p := FuncProvider(func(ctx context.Context) (Coordinates, error) {
		return Coordinates{Latitude: 9}, nil
	})

	coords, err := p.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9.0, coords.Latitude)
}
