package commands

import (
	"encoding/json"
	"net/http"

	"fleetd/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct{ svc *Service }

func NewHTTP(s *Service) *HTTP { return &HTTP{svc: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/issue_command", h.issueCommand).Methods(http.MethodPost)
	r.HandleFunc("/issue_global_command", h.issueGlobalCommand).Methods(http.MethodPost)
	r.HandleFunc("/command_result", h.commandResult).Methods(http.MethodPost)
	r.HandleFunc("/disableLogging", h.disableLogging).Methods(http.MethodPost)
}

func (h *HTTP) issueCommand(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DeviceID string `json:"device_id"`
		Command  any    `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.Validation("invalid json body"))
		return
	}
	if in.DeviceID == "" || in.Command == nil {
		models.WriteError(w, models.Validation("device_id and command are required"))
		return
	}
	if err := h.svc.Issue(r.Context(), in.DeviceID, in.Command); err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{"message": "Command issued successfully"})
}

func (h *HTTP) issueGlobalCommand(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Command any `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.Validation("invalid json body"))
		return
	}
	if in.Command == nil {
		models.WriteError(w, models.Validation("command is required"))
		return
	}
	if _, err := h.svc.IssueGlobal(r.Context(), in.Command); err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{"message": "Global command issued successfully"})
}

func (h *HTTP) commandResult(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DeviceID string         `json:"device_id"`
		Command  map[string]any `json:"command"`
		Result   any            `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.Validation("invalid json body"))
		return
	}
	if in.DeviceID == "" || in.Command == nil || in.Result == nil {
		models.WriteError(w, models.Validation("device_id, command, and result are required"))
		return
	}
	if err := h.svc.StoreResult(r.Context(), in.DeviceID, in.Command, in.Result); err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{"message": "Command result received successfully"})
}

func (h *HTTP) disableLogging(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, models.Validation("invalid json body"))
		return
	}
	if in.DeviceID == "" {
		models.WriteError(w, models.Validation("device_id is required"))
		return
	}
	if err := h.svc.DisableLogging(r.Context(), in.DeviceID); err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logging disabled command sent."})
}
