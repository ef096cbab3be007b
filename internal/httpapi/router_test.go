package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanscape/internal/core/reliability"
	"lanscape/internal/core/scanmanager"
	"lanscape/internal/core/scanmodel"
	"lanscape/internal/portcatalog"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	manager := scanmanager.New(nil, nil, nil, scanmodel.Default())
	queue := reliability.New(manager)
	catalog := portcatalog.New("")
	t.Cleanup(queue.Stop)
	return New(manager, queue, catalog, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestGetHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetVersion(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "version")
}

func TestPostScan_InvalidSubnetReturns400(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/scan", map[string]interface{}{"subnet": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetScan_UnknownUIDReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/scan/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostScanTerminate_UnknownUIDReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/scan/does-not-exist/terminate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSubnetTest_ReportsValidityAndCount(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/tools/subnet/test?subnet=10.0.0.1-10.0.0.5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["valid"])
	assert.EqualValues(t, 5, body["count"])
}

func TestGetSubnetList_ReturnsDetectedInterfaces(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/tools/subnet/list", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "subnets")
	if _, ok := body["subnets"].([]interface{}); !ok {
		t.Errorf("body[\"subnets\"] = %v (%T), want a JSON array", body["subnets"], body["subnets"])
	}
}

func TestGetSubnetTest_InvalidExpressionReportsMessage(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/tools/subnet/test?subnet=", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["valid"])
	assert.EqualValues(t, -1, body["count"])
	assert.NotEmpty(t, body["msg"])
}

func TestGetConfigDefaults_ReturnsDefaultScanConfig(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/tools/config/defaults", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "top_100", body["port_list"])
}

func TestPortList_CRUDRoundTrip(t *testing.T) {
	s := newTestServer(t)

	putRec := doJSON(t, s, http.MethodPut, "/api/port/list/custom", map[string]string{"8080": "custom-http"})
	assert.Equal(t, http.StatusOK, putRec.Code)

	getRec := doJSON(t, s, http.MethodGet, "/api/port/list/custom", nil)
	assert.Equal(t, http.StatusOK, getRec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &body))
	assert.Equal(t, "custom-http", body["8080"])

	delRec := doJSON(t, s, http.MethodDelete, "/api/port/list/custom", nil)
	assert.Equal(t, http.StatusNoContent, delRec.Code)

	missingRec := doJSON(t, s, http.MethodGet, "/api/port/list/custom", nil)
	assert.Equal(t, http.StatusNotFound, missingRec.Code)
}

func TestPortList_ListIncludesSeededDefaults(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/port/list", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["lists"], "top_100")
}

func TestReliabilityJob_EnqueueAndFetch(t *testing.T) {
	s := newTestServer(t)

	postRec := doJSON(t, s, http.MethodPost, "/api/reliability/jobs", map[string]interface{}{
		"label":  "smoke",
		"count":  1,
		"config": map[string]interface{}{"subnet": ""},
	})
	assert.Equal(t, http.StatusAccepted, postRec.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(postRec.Body.Bytes(), &created))
	id, ok := created["id"].(string)
	require.True(t, ok, "expected the created job to carry an id field")

	getRec := doJSON(t, s, http.MethodGet, "/api/reliability/jobs/"+id, nil)
	assert.Equal(t, http.StatusOK, getRec.Code)
}

func TestReliabilityJob_UnknownIDReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/reliability/jobs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
