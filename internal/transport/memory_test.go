package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChannelReusesPerPair(t *testing.T) {
	tr := NewInMemory()
	ctx := context.Background()

	first, err := tr.CreateChannel(ctx, "user-1", "hana")
	require.NoError(t, err)
	again, err := tr.CreateChannel(ctx, "user-1", "hana")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := tr.CreateChannel(ctx, "user-1", "mira")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSendAndReadMessages(t *testing.T) {
	tr := NewInMemory()
	ctx := context.Background()

	id, err := tr.CreateChannel(ctx, "user-1", "hana")
	require.NoError(t, err)
	require.NoError(t, tr.SendMessage(ctx, id, "one"))
	require.NoError(t, tr.SendMessage(ctx, id, "two"))

	assert.Equal(t, []string{"one", "two"}, tr.Messages(id))

	// Messages returns a copy.
	got := tr.Messages(id)
	got[0] = "mutated"
	assert.Equal(t, []string{"one", "two"}, tr.Messages(id))
}

func TestDeleteChannelForgetsMappingAndHistory(t *testing.T) {
	tr := NewInMemory()
	ctx := context.Background()

	id, err := tr.CreateChannel(ctx, "user-1", "hana")
	require.NoError(t, err)
	require.NoError(t, tr.SendMessage(ctx, id, "hello"))
	require.True(t, tr.HasChannel(id))

	require.NoError(t, tr.DeleteChannel(ctx, id))
	assert.False(t, tr.HasChannel(id))
	assert.Empty(t, tr.Messages(id))

	// The pair mints a fresh channel after deletion.
	fresh, err := tr.CreateChannel(ctx, "user-1", "hana")
	require.NoError(t, err)
	assert.NotEqual(t, id, fresh)
}
