package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedAssetsLoad(t *testing.T) {
	sprite, err := Sprite(PetSprite)
	require.NoError(t, err)
	assert.Equal(t, "sprites/pickle.svg", sprite.Name())
	assert.NotEmpty(t, sprite.Content())

	logo := MustLogo(AppLogo)
	assert.Same(t, logo, MustLogo(AppLogo))
}

func TestMissingAssetFails(t *testing.T) {
	_, err := Sprite("missing.svg")
	assert.Error(t, err)
	assert.Panics(t, func() { MustLogo("missing.svg") })
}
