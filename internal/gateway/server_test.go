package gateway

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaroute/internal/config"
)

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopping", StateStopping.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestNewServer_RequiresHandler(t *testing.T) {
	t.Parallel()

	_, err := NewServer(config.Listener{}, nil)
	require.Error(t, err)
}

func TestServer_Lifecycle(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv, err := NewServer(config.Listener{
		Address:         "127.0.0.1",
		Port:            0,
		ShutdownTimeout: config.Duration(5 * time.Second),
	}, handler, WithServerName("test"))
	require.NoError(t, err)

	assert.Equal(t, StateStopped, srv.State())
	assert.Nil(t, srv.Addr())
	assert.Zero(t, srv.Uptime())
	require.Error(t, srv.Stop(context.Background()), "stop before start")

	require.NoError(t, srv.Start(context.Background()))
	assert.True(t, srv.IsRunning())
	require.Error(t, srv.Start(context.Background()), "double start")

	resp, err := http.Get("http://" + srv.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	require.NoError(t, srv.Stop(context.Background()))
	assert.Equal(t, StateStopped, srv.State())
	assert.NoError(t, srv.Err())

	// restartable
	require.NoError(t, srv.Start(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
}

func TestServer_StartFailsOnBusyPort(t *testing.T) {
	t.Parallel()

	first, err := NewServer(config.Listener{Address: "127.0.0.1"}, http.NotFoundHandler())
	require.NoError(t, err)
	require.NoError(t, first.Start(context.Background()))
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	tcp, ok := first.Addr().(*net.TCPAddr)
	require.True(t, ok)

	second, err := NewServer(config.Listener{Address: "127.0.0.1", Port: tcp.Port}, http.NotFoundHandler())
	require.NoError(t, err)
	require.Error(t, second.Start(context.Background()))
	assert.Equal(t, StateStopped, second.State())
}
