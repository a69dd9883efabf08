package visits

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/visits", func(vr chi.Router) {
		vr.Get("/", listAllVisitsHandler(svc))
		vr.Get("/{visitID}", findVisitByIDHandler(svc))
	})

	r.Route("/pets/{petID}/visits", func(vr chi.Router) {
		vr.Get("/", listVisitsForPetHandler(svc))
		vr.Post("/", createVisitHandler(svc))
		vr.Put("/{visitID}", upsertVisitHandler(svc))
		vr.Delete("/{visitID}", deleteVisitHandler(svc))
	})
}

// visitRequest es el cuerpo para crear o upsertar una visita.
type visitRequest struct {
	VisitDate   string `json:"visit_date"` // YYYY-MM-DD
	Description string `json:"description"`
}

// visitResponse representa una visita devuelta por la API.
type visitResponse struct {
	PetID       string `json:"pet_id"`
	VisitID     string `json:"visit_id"`
	VisitDate   string `json:"visit_date"` // YYYY-MM-DD
	Description string `json:"description"`
}

func toVisitResponse(v Visit) visitResponse {
	return visitResponse{
		PetID:       v.PetID,
		VisitID:     v.VisitID,
		VisitDate:   v.VisitDate.Format("2006-01-02"),
		Description: v.Description,
	}
}

// listAllVisitsHandler godoc
// @Summary Listar todas las visitas
// @Description Lista todas las visitas de todas las mascotas. Sin garantía de orden entre particiones.
// @Tags visits
// @Produce json
// @Success 200 {array} visitResponse
// @Failure 500 {string} string "internal error"
// @Router /visits [get]
func listAllVisitsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAll(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]visitResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVisitResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// findVisitByIDHandler godoc
// @Summary Buscar visita por id
// @Description Busca una visita por su visit_id sin conocer la mascota (índice secundario).
// @Tags visits
// @Produce json
// @Param visitID path string true "ID de la visita"
// @Success 200 {object} visitResponse
// @Failure 400 {string} string "visit_id inválido"
// @Failure 404 {string} string "visit not found"
// @Router /visits/{visitID} [get]
func findVisitByIDHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.FindByID(r.Context(), chi.URLParam(r, "visitID"))
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "invalid visit id", http.StatusBadRequest)
			return
		case errors.Is(err, ErrNotFound):
			http.Error(w, "visit not found", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toVisitResponse(v))
	}
}

// listVisitsForPetHandler godoc
// @Summary Listar visitas de una mascota
// @Description Lista las visitas de una mascota en orden de clustering (visit_id ascendente).
// @Tags visits
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} visitResponse
// @Failure 400 {string} string "pet_id inválido"
// @Router /pets/{petID}/visits [get]
func listVisitsForPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListForPet(r.Context(), chi.URLParam(r, "petID"))
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "invalid pet id", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]visitResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVisitResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createVisitHandler godoc
// @Summary Crear visita
// @Description Registra una visita nueva para la mascota; el visit_id se genera en el servidor.
// @Tags visits
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body visitRequest true "Datos de la visita; visit_date en formato YYYY-MM-DD"
// @Success 201 {object} visitResponse
// @Failure 400 {string} string "invalid json / visit_date inválido"
// @Router /pets/{petID}/visits [post]
func createVisitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, date, ok := decodeVisitRequest(w, r)
		if !ok {
			return
		}

		v, err := svc.Create(r.Context(), chi.URLParam(r, "petID"), CreateInput{
			VisitDate:   date,
			Description: req.Description,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toVisitResponse(v))
	}
}

// upsertVisitHandler godoc
// @Summary Upsert de visita
// @Description Escribe o sobreescribe la visita identificada por (pet_id, visit_id). Idempotente: la misma clave pisa los valores anteriores.
// @Tags visits
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param visitID path string true "ID de la visita"
// @Param payload body visitRequest true "Datos de la visita; visit_date en formato YYYY-MM-DD"
// @Success 200 {object} visitResponse
// @Failure 400 {string} string "invalid json / ids o visit_date inválidos"
// @Router /pets/{petID}/visits/{visitID} [put]
func upsertVisitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, date, ok := decodeVisitRequest(w, r)
		if !ok {
			return
		}

		v, err := svc.Upsert(r.Context(), Visit{
			PetID:       chi.URLParam(r, "petID"),
			VisitID:     chi.URLParam(r, "visitID"),
			VisitDate:   date,
			Description: req.Description,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toVisitResponse(v))
	}
}

// deleteVisitHandler godoc
// @Summary Borrar visita
// @Description Borra la visita por clave completa (pet_id, visit_id). Borrar una visita ausente no es error.
// @Tags visits
// @Param petID path string true "ID de la mascota"
// @Param visitID path string true "ID de la visita"
// @Success 204 {string} string "no content"
// @Failure 400 {string} string "ids inválidos"
// @Router /pets/{petID}/visits/{visitID} [delete]
func deleteVisitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "visitID"))
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeVisitRequest(w http.ResponseWriter, r *http.Request) (visitRequest, time.Time, bool) {
	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return visitRequest{}, time.Time{}, false
	}

	date, err := time.Parse("2006-01-02", req.VisitDate)
	if err != nil {
		http.Error(w, "visit_date must be YYYY-MM-DD", http.StatusBadRequest)
		return visitRequest{}, time.Time{}, false
	}
	return req, date, true
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// para no acoplar paquetes de dominio entre sí.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
