package codec

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/picture-game/internal/protocol"
)

func TestRelease_ClearsMessage(t *testing.T) {
	t.Parallel()

	msg, err := Decode([]byte(`{"type":"guess","payload":{"text":"cat"}}`))
	require.NoError(t, err)
	require.Equal(t, protocol.MsgGuess, msg.Type)

	Release(msg)
	assert.Empty(t, msg.Type)
	assert.Nil(t, msg.Payload)

	assert.NotPanics(t, func() { Release(nil) })
}

func TestDecode_AfterReleaseHasNoStalePayload(t *testing.T) {
	t.Parallel()

	first, err := Decode([]byte(`{"type":"chat","payload":{"content":"hi"}}`))
	require.NoError(t, err)
	Release(first)

	second, err := Decode([]byte(`{"type":"refresh"}`))
	require.NoError(t, err)
	defer Release(second)

	assert.Equal(t, protocol.MsgRefresh, second.Type)
	assert.Empty(t, second.Payload)
}

func TestReleaseBuffer_DropsOversized(t *testing.T) {
	t.Parallel()

	buf := acquireBuffer()
	buf.WriteString(strings.Repeat("x", maxPooledBuffer+1))
	releaseBuffer(buf)
	assert.Positive(t, buf.Len(), "oversized buffer is left untouched")

	small := acquireBuffer()
	small.WriteString("draw")
	releaseBuffer(small)
	assert.Zero(t, small.Len())
}

func TestEncode_Concurrent(t *testing.T) {
	t.Parallel()

	want, err := Encode(MustNewMessage(protocol.MsgDrawing, protocol.DrawingPayload{Kind: protocol.DrawKindPoint, X: 3, Y: 4, RGB: 255}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			got, err := Encode(MustNewMessage(protocol.MsgDrawing, protocol.DrawingPayload{Kind: protocol.DrawKindPoint, X: 3, Y: 4, RGB: 255}))
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
	wg.Wait()
}
