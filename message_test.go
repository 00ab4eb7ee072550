package libcdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventFrame(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"method":"Page.loadEventFired","params":{"timestamp":123.45}}`))
	require.NoError(t, err)

	assert.True(t, msg.IsEvent())
	assert.False(t, msg.IsResponse())
	assert.Equal(t, "Page.loadEventFired", msg.Method)
	assert.JSONEq(t, `{"timestamp":123.45}`, string(msg.Params))
}

func TestDecodeResponseFrame(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"id":7,"result":{"frameId":"F1"}}`))
	require.NoError(t, err)

	assert.True(t, msg.IsResponse())
	assert.False(t, msg.IsEvent())
	assert.EqualValues(t, 7, msg.ID)
	assert.JSONEq(t, `{"frameId":"F1"}`, string(msg.Result))
}

func TestDecodeErrorResponseFrame(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"id":3,"error":{"code":-32000,"message":"boom"}}`))
	require.NoError(t, err)

	assert.True(t, msg.IsResponse())
	require.NotNil(t, msg.Error)
	assert.EqualValues(t, -32000, msg.Error.Code)
	assert.Contains(t, msg.Error.Error(), "boom")
}

func TestDecodeMalformedFrame(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"id":`))
	require.Error(t, err)
}

func TestEncodeCommandFrame(t *testing.T) {
	bts, err := EncodeMessage(&Message{ID: 1, Method: "Browser.getVersion"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"method":"Browser.getVersion"}`, string(bts))
}
