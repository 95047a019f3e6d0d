package verifyd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weperform/feiken-authenticate/internal/api"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := openTestStore(t)
	require.NoError(t, SeedDemo(store))

	srv := httptest.NewServer(NewServer(store, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func putVerify(t *testing.T, baseURL, code, deviceID string) (*api.VerifyResponse, int) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"device_id": deviceID})
	req, err := http.NewRequest(http.MethodPut, baseURL+"/api/products/verify/"+code, bytes.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var vr api.VerifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vr))
	return &vr, resp.StatusCode
}

func TestHTTP_VerifyDemoCode(t *testing.T) {
	srv := newTestServer(t)

	vr, status := putVerify(t, srv.URL, DemoCode, "device-abc")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, vr.Success)
	require.NotNil(t, vr.QRCode)
	assert.Equal(t, 1, vr.QRCode.VerificationStatus)
	require.NotNil(t, vr.ScanLog)
	assert.Equal(t, 1, vr.ScanLog.ScanCount)
}

func TestHTTP_VerifyUnknownCode(t *testing.T) {
	srv := newTestServer(t)

	vr, status := putVerify(t, srv.URL, "UNKNOWN", "device-abc")
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, vr.Success)
	assert.Equal(t, "not found", vr.Message)
}

func TestHTTP_VerifyMissingDeviceID(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/products/verify/"+DemoCode,
		bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_VerifyRequiresPUT(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/products/verify/" + DemoCode)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTP_ScanHistoryRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	_, _ = putVerify(t, srv.URL, DemoCode, "device-abc")
	_, _ = putVerify(t, srv.URL, DemoCode, "device-abc")

	resp, err := http.Get(srv.URL + "/api/products/scan-history/device-abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hr api.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hr))
	require.Len(t, hr.Logs, 1, "repeat scans update the same log entry")
	assert.Equal(t, 2, hr.Logs[0].ScanCount)
	assert.Equal(t, "device-abc", hr.Logs[0].DeviceID)
}

func TestHTTP_ScanHistoryEmpty(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/products/scan-history/device-new")
	require.NoError(t, err)
	defer resp.Body.Close()

	var hr api.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hr))
	assert.NotNil(t, hr.Logs)
	assert.Empty(t, hr.Logs)
}

func TestHTTP_Health(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
