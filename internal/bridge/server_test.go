package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yeectl/internal/device"
	"yeectl/internal/yeelight"
	"yeectl/internal/yeelight/fakebulb"
)

func newTestServer(t *testing.T, opts ...ServerOption) (*httptest.Server, *fakebulb.Bulb, *Registry) {
	t.Helper()

	bulb, err := fakebulb.Start(nil)
	require.NoError(t, err)
	t.Cleanup(func() { bulb.Close() })

	reg, err := NewRegistry(8)
	require.NoError(t, err)

	client := yeelight.NewClient(bulb.Host(), bulb.Port(), yeelight.WithTimeout(time.Second))
	light := yeelight.NewLight("desk", client, yeelight.WithName("Desk"))

	srv := httptest.NewServer(NewServer([]device.Device{light}, reg, opts...).Router())
	t.Cleanup(srv.Close)
	return srv, bulb, reg
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func postAction(t *testing.T, url, action string, params map[string]interface{}) *http.Response {
	t.Helper()
	payload, err := device.CreateActionJSON(action, params)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["lights"])
	assert.Equal(t, float64(0), body["discovered"])
}

func TestListLights(t *testing.T) {
	srv, bulb, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/lights")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	lights, ok := body["lights"].([]interface{})
	require.True(t, ok)
	require.Len(t, lights, 1)
	light := lights[0].(map[string]interface{})
	assert.Equal(t, "desk", light["id"])
	assert.Equal(t, "Desk", light["name"])
	assert.Equal(t, bulb.Addr(), light["address"])
}

func TestLightAction(t *testing.T) {
	srv, bulb, _ := newTestServer(t)

	t.Run("on reaches the bulb", func(t *testing.T) {
		resp := postAction(t, srv.URL+"/api/v1/lights/desk/action", "on", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "on", bulb.Power())
	})

	t.Run("bad parameters are reported in the body", func(t *testing.T) {
		resp := postAction(t, srv.URL+"/api/v1/lights/desk/action", "set_bright", map[string]interface{}{
			"brightness": "bright",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "invalid parameters")
	})

	t.Run("unknown light", func(t *testing.T) {
		resp := postAction(t, srv.URL+"/api/v1/lights/nope/action", "on", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["error"])
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/lights/desk/action")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

		resp, err = http.Get(srv.URL + "/api/v1/discover")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestDiscoverPopulatesRegistry(t *testing.T) {
	bulb, err := fakebulb.Start(nil)
	require.NoError(t, err)
	defer bulb.Close()

	responder, err := fakebulb.StartResponder(0,
		fakebulb.Advertisement("0x00000000035ad6c1", bulb.Addr(), "kitchen"),
		[]byte("not an advertisement"),
	)
	require.NoError(t, err)
	defer responder.Close()

	srv, _, reg := newTestServer(t, WithDiscoverOptions(
		yeelight.WithTarget(responder.Addr()),
		yeelight.WithWindow(300*time.Millisecond),
	))

	resp, err := http.Post(srv.URL+"/api/v1/discover", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["replies"])
	assert.Equal(t, float64(1), body["ignored"])
	assert.Equal(t, 1, reg.Len())

	resp, err = http.Get(srv.URL + "/api/v1/discovered")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	devices := body["devices"].([]interface{})
	require.Len(t, devices, 1)

	// Discovered bulbs are addressable by their advertised id
	resp = postAction(t, srv.URL+"/api/v1/lights/0x00000000035ad6c1/action", "toggle", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "on", bulb.Power())
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "yeectl_bridge_requests_total"))
}

func TestServeAndStop(t *testing.T) {
	reg, err := NewRegistry(1)
	require.NoError(t, err)
	server := NewServer(nil, reg)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(listener)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestStopBeforeStart(t *testing.T) {
	reg, err := NewRegistry(1)
	require.NoError(t, err)
	server := NewServer(nil, reg)

	require.NoError(t, server.Stop(context.Background()))
	assert.NoError(t, server.Start("127.0.0.1:0"))
}
