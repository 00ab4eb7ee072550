package libcdp

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBasicClientLifecycle(t *testing.T) {
	cli := NewClient(NewWriterLogger(io.Discard), NewNoopConnectionFactory(), nil)

	require.NoError(t, cli.Open(context.Background()))
	t.Cleanup(cli.Close)

	sub, err := cli.Subscribe("Inspector.detached")
	require.NoError(t, err)

	cli.Close()

	select {
	case _, ok := <-sub.Events():
		require.False(t, ok, "expected subscription to end on client close")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription to end")
	}
}

func TestBasicClientFactory(t *testing.T) {
	factory := NewBasicClientFactory(NewWriterLogger(io.Discard), NewNoopConnectionFactory(), nil)

	cli := factory()
	require.NotNil(t, cli)
	require.NoError(t, cli.Open(context.Background()))
	cli.Close()
}
