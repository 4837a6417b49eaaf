package registry

import (
	"encoding/json"
	"net"
	"net/http"

	"fleetd/internal/bsonx"
	"fleetd/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct{ svc *Service }

func NewHTTP(s *Service) *HTTP { return &HTTP{svc: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/report_status", h.reportStatus).Methods(http.MethodPost)
	r.HandleFunc("/query/{device_id}", h.queryDevice).Methods(http.MethodGet)
	r.HandleFunc("/query", h.queryAll).Methods(http.MethodGet)
}

func (h *HTTP) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Location   string `json:"location"`
		DeviceType string `json:"device_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.Validation("invalid json body"))
		return
	}
	id, name, err := h.svc.Register(r.Context(), in.Location, in.DeviceType)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{
		"device_id":   id,
		"device_name": name,
	})
}

func (h *HTTP) reportStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DeviceID    string `json:"device_id"`
		CPUUsage    any    `json:"cpu_usage"`
		RAMUsage    any    `json:"ram_usage"`
		MemoryUsage any    `json:"memory_usage"`
		Status      string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.Validation("invalid json body"))
		return
	}
	cmds, err := h.svc.ReportStatus(r.Context(), ReportInput{
		DeviceID:    in.DeviceID,
		CPUUsage:    in.CPUUsage,
		RAMUsage:    in.RAMUsage,
		MemoryUsage: in.MemoryUsage,
		Status:      in.Status,
		SourceIP:    remoteIP(r),
	})
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"commands": bsonx.StringifyDocs(cmds),
	})
}

func (h *HTTP) queryDevice(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.QueryDevice(r.Context(), mux.Vars(r)["device_id"])
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   bsonx.StringifyIDs(view.Status),
		"commands": bsonx.StringifyDocs(view.Commands),
	})
}

func (h *HTTP) queryAll(w http.ResponseWriter, r *http.Request) {
	devs, err := h.svc.ListDevices(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"devices": bsonx.StringifyDocs(devs),
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
