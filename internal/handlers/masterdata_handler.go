package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ticket-backend/internal/models"
	"ticket-backend/internal/services"

	"github.com/gorilla/mux"
)

// MasterDataHandler serves the technician, customer and project directories
type MasterDataHandler struct {
	Data *services.MasterDataService
}

func NewMasterDataHandler(dataService *services.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{Data: dataService}
}

func (h *MasterDataHandler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.Data.ListTechnicians(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, technicians)
}

func (h *MasterDataHandler) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	var t models.Technician
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Data.CreateTechnician(r.Context(), &t); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *MasterDataHandler) UpdateTechnician(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var t models.Technician
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	t.ID = id

	if err := h.Data.UpdateTechnician(r.Context(), &t); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *MasterDataHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Data.ListCustomers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *MasterDataHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Data.CreateCustomer(r.Context(), &c); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *MasterDataHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	c.ID = id

	if err := h.Data.UpdateCustomer(r.Context(), &c); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *MasterDataHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Data.ListProjects(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

func (h *MasterDataHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var p models.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Data.CreateProject(r.Context(), &p); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}
