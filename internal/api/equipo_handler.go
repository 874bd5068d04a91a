package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wakelan/wakelan/internal/middleware"
	"github.com/wakelan/wakelan/internal/model"
	"github.com/wakelan/wakelan/internal/netscan"
	"github.com/wakelan/wakelan/internal/store"
	"github.com/wakelan/wakelan/internal/wol"
)

// EquipoHandler serves the equipo registry, live status reads and wake
// requests.
type EquipoHandler struct {
	store      store.Store
	enricher   *netscan.Enricher
	dispatcher *wol.Dispatcher
	logger     *slog.Logger
}

func NewEquipoHandler(st store.Store, enricher *netscan.Enricher, dispatcher *wol.Dispatcher, logger *slog.Logger) *EquipoHandler {
	return &EquipoHandler{
		store:      st,
		enricher:   enricher,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// List handles GET /equipos. Admins see the full registry, standard users
// only their assigned equipos. Every returned record carries a live
// {ip_address, estado} observation.
func (h *EquipoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var (
		equipos []model.Equipo
		err     error
	)
	if user.IsAdmin() {
		equipos, err = h.store.ListEquipos(r.Context())
	} else {
		equipos, err = h.store.ListEquiposForUser(r.Context(), user.ID)
	}
	if HandleStoreError(w, r, err, "Equipo") {
		return
	}

	enriched := h.enricher.EnrichAll(r.Context(), equipos)

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"equipos": enriched,
		"total":   len(enriched),
	})
}

type CreateEquipoRequest struct {
	Nombre      string `json:"nombre" validate:"required,min=1,max=100"`
	MACAddress  string `json:"mac_address" validate:"required"`
	Descripcion string `json:"descripcion" validate:"max=500"`
}

// Create handles POST /equipos (admin only)
func (h *EquipoHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[CreateEquipoRequest](w, r)
	if !ok {
		return
	}
	if !ValidatePayload(w, r, req) {
		return
	}

	mac, err := model.NormalizeMAC(req.MACAddress)
	if err != nil {
		SendError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "mac_address must be 12 hex digits, optionally colon-separated")
		return
	}

	equipo, err := h.store.CreateEquipo(r.Context(), model.Equipo{
		Nombre:      req.Nombre,
		MACAddress:  mac,
		Descripcion: req.Descripcion,
		Estado:      model.StateUnknown,
	})
	if HandleStoreError(w, r, err, "Equipo") {
		return
	}

	h.logger.Info("Equipo created", "equipo_id", equipo.ID, "nombre", equipo.Nombre, "mac", equipo.MACAddress)

	SendJSON(w, http.StatusCreated, map[string]interface{}{
		"equipo": equipo,
	})
}

// Get handles GET /equipos/{id}. The record carries a live observation like
// list reads do; only the estado endpoint persists it.
func (h *EquipoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	equipo, err := h.store.GetEquipo(r.Context(), id)
	if HandleStoreError(w, r, err, "Equipo") {
		return
	}

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"equipo": h.enricher.Enrich(r.Context(), equipo),
	})
}

type UpdateEquipoRequest struct {
	Nombre      *string `json:"nombre" validate:"omitempty,min=1,max=100"`
	MACAddress  *string `json:"mac_address"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=500"`
}

// Update handles PUT /equipos/{id} (admin only). Absent fields keep their
// stored value; estado and ip_address are never written here.
func (h *EquipoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	req, ok := DecodeJSON[UpdateEquipoRequest](w, r)
	if !ok {
		return
	}
	if !ValidatePayload(w, r, req) {
		return
	}

	equipo, err := h.store.GetEquipo(r.Context(), id)
	if HandleStoreError(w, r, err, "Equipo") {
		return
	}

	if req.Nombre != nil {
		equipo.Nombre = *req.Nombre
	}
	if req.MACAddress != nil {
		mac, err := model.NormalizeMAC(*req.MACAddress)
		if err != nil {
			SendError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "mac_address must be 12 hex digits, optionally colon-separated")
			return
		}
		equipo.MACAddress = mac
	}
	if req.Descripcion != nil {
		equipo.Descripcion = *req.Descripcion
	}

	updated, err := h.store.UpdateEquipo(r.Context(), equipo)
	if HandleStoreError(w, r, err, "Equipo") {
		return
	}

	h.logger.Info("Equipo updated", "equipo_id", updated.ID)

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"equipo": updated,
	})
}

// Delete handles DELETE /equipos/{id} (admin only). Assignments referencing
// the equipo are removed with it.
func (h *EquipoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteEquipo(r.Context(), id); HandleStoreError(w, r, err, "Equipo") {
		return
	}

	h.logger.Info("Equipo deleted", "equipo_id", id)

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Equipo deleted successfully",
	})
}

// Wake handles POST /equipos/{id}/encender. The magic packet is broadcast
// fire-and-forget: success means the packet left, not that the machine is
// up. Waking an already-on machine is a no-op on the target and still
// succeeds.
func (h *EquipoHandler) Wake(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(w, r, "id")
	if !ok {
		return
	}
	user, _ := middleware.UserFromContext(r.Context())

	equipo, err := h.store.GetEquipo(r.Context(), id)
	if HandleStoreError(w, r, err, "Equipo") {
		return
	}

	if err := h.dispatcher.Wake(equipo.MACAddress); err != nil {
		h.logger.Error("Magic packet send failed", "equipo_id", equipo.ID, "mac", equipo.MACAddress, "error", err)
		SendError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to send wake packet")
		return
	}

	h.logger.Info("Wake packet sent", "equipo_id", equipo.ID, "nombre", equipo.Nombre, "user", user.Username)

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Wake packet sent",
		"equipo_id": equipo.ID,
		"nombre":    equipo.Nombre,
		"user":      user.Username,
	})
}

// Status handles GET /equipos/{id}/estado. The observation is persisted
// best-effort so later registry reads show the last known state.
func (h *EquipoHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	equipo, err := h.store.GetEquipo(r.Context(), id)
	if HandleStoreError(w, r, err, "Equipo") {
		return
	}

	status := h.enricher.Enrich(r.Context(), equipo)

	if err := h.store.RecordObservation(r.Context(), equipo.ID, status.IPAddress, status.Estado); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("Failed to record status observation", "equipo_id", equipo.ID, "error", err)
		}
	}

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"equipo": status,
	})
}
