package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "llama-at-home"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported gateway provider")
}

func TestNewOpenAIRequiresCredentials(t *testing.T) {
	_, err := NewOpenAIGateway("", "gpt-4o", "", "")
	assert.Error(t, err)

	_, err = NewOpenAIGateway("sk-test", "", "", "")
	assert.Error(t, err)
}

func TestNewOpenAIDefaultsImageModel(t *testing.T) {
	gw, err := NewOpenAIGateway("sk-test", "gpt-4o", "", "")
	require.NoError(t, err)
	assert.Equal(t, "dall-e-3", gw.imageModel)
}
