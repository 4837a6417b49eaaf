package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRouter(t *testing.T) (*mux.Router, *Service, *fakeStore, *fakeCommands) {
	t.Helper()
	svc, st, fc := newTestService()
	r := mux.NewRouter()
	NewHTTP(svc).RegisterRoutes(r)
	return r, svc, st, fc
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.7:51234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestRegisterEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/register",
		`{"location":"kitchen","device_type":"sensor"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kitchen-1", body["device_name"])

	id, _ := body["device_id"].(string)
	_, err := primitive.ObjectIDFromHex(id)
	assert.NoError(t, err, "device_id must be a hex object id string")
}

func TestRegisterEndpointValidation(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/register", `{"location":"kitchen"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "location and device_type are required", body["error"])

	rec, _ = doJSON(t, r, http.MethodPost, "/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportStatusEndpointStringifiesCommandIDs(t *testing.T) {
	r, svc, st, fc := newTestRouter(t)
	ctx := context.Background()

	id, _, err := svc.Register(ctx, "kitchen", "sensor")
	require.NoError(t, err)
	oid, _ := primitive.ObjectIDFromHex(id)

	cmdID := primitive.NewObjectID()
	fc.byDevice[oid] = []bson.M{{
		"_id":       cmdID,
		"device_id": oid,
		"command":   bson.M{"action": "reboot", "ref": bson.A{cmdID}},
		"status":    "pending",
	}}

	rec, body := doJSON(t, r, http.MethodPost, "/report_status",
		`{"device_id":"`+id+`","cpu_usage":10,"ram_usage":20,"memory_usage":30,"status":"active"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cmds, ok := body["commands"].([]any)
	require.True(t, ok)
	require.Len(t, cmds, 1)
	cmd := cmds[0].(map[string]any)
	assert.Equal(t, cmdID.Hex(), cmd["_id"])
	assert.Equal(t, id, cmd["device_id"])
	nested := cmd["command"].(map[string]any)
	assert.Equal(t, []any{cmdID.Hex()}, nested["ref"])

	// reporting IP captured from the connection
	require.Len(t, st.reports, 1)
	assert.Equal(t, "192.0.2.7", st.reports[0].IPAddress)
}

func TestReportStatusEndpointEmptyCommands(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/report_status",
		`{"device_id":"`+primitive.NewObjectID().Hex()+`","status":"active"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cmds, ok := body["commands"].([]any)
	require.True(t, ok, "commands must encode as [], not null")
	assert.Empty(t, cmds)
}

func TestQueryDeviceEndpoint(t *testing.T) {
	r, svc, _, _ := newTestRouter(t)

	id, _, err := svc.Register(context.Background(), "kitchen", "sensor")
	require.NoError(t, err)

	rec, body := doJSON(t, r, http.MethodGet, "/query/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := body["status"].(map[string]any)
	assert.Equal(t, "active", status["status"])

	rec, body = doJSON(t, r, http.MethodGet, "/query/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Device not found", body["error"])

	rec, _ = doJSON(t, r, http.MethodGet, "/query/garbage", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryAllEndpoint(t *testing.T) {
	r, svc, _, _ := newTestRouter(t)

	_, _, err := svc.Register(context.Background(), "kitchen", "sensor")
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), "garage", "camera")
	require.NoError(t, err)

	rec, body := doJSON(t, r, http.MethodGet, "/query", "")
	require.Equal(t, http.StatusOK, rec.Code)
	devs, ok := body["devices"].([]any)
	require.True(t, ok)
	require.Len(t, devs, 2)
	for _, d := range devs {
		id, _ := d.(map[string]any)["_id"].(string)
		_, err := primitive.ObjectIDFromHex(id)
		assert.NoError(t, err, "every device id must render as a hex string")
	}
}
