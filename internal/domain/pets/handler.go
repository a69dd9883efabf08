package pets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// VisitPopulator carga las visitas de una mascota antes de devolverla.
// Lo implementa el módulo de población; la interfaz vive acá para no
// invertir la dependencia.
type VisitPopulator interface {
	PopulateVisitsForPet(ctx context.Context, p *Pet) (*Pet, error)
}

func RegisterRoutes(r chi.Router, svc *Service, populator VisitPopulator) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))

		// Perfil de mascota con sus visitas pobladas
		pr.Get("/{petID}", getPetHandler(svc, populator))
	})

	// Mascotas de un owner (sin visitas)
	r.Get("/owners/{ownerID}/pets", listPetsByOwnerHandler(svc))
}

type createPetRequest struct {
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional
}

type petResponse struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Name      string          `json:"name"`
	BirthDate *time.Time      `json:"birth_date,omitempty"`
	Visits    []visitResponse `json:"visits,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type visitResponse struct {
	VisitID     string `json:"visit_id"`
	VisitDate   string `json:"visit_date"` // YYYY-MM-DD
	Description string `json:"description"`
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		BirthDate: p.BirthDate,
		Visits:    toVisitResponses(p),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// toVisitResponses aplana el set; se ordena por visit_id solo para que
// la salida JSON sea estable (el set en sí no tiene orden).
func toVisitResponses(p Pet) []visitResponse {
	if p.Visits == nil {
		return nil
	}
	out := make([]visitResponse, 0, len(p.Visits))
	for v := range p.Visits {
		out = append(out, visitResponse{
			VisitID:     v.VisitID,
			VisitDate:   v.VisitDate.Format("2006-01-02"),
			Description: v.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitID < out[j].VisitID })
	return out
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Registra una mascota para un owner existente.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota; birth_date opcional en formato YYYY-MM-DD"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / birth_date inválido / reglas de negocio"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), CreateInput{
			OwnerID:   req.OwnerID,
			Name:      req.Name,
			BirthDate: bd,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// getPetHandler godoc
// @Summary Perfil de mascota
// @Description Devuelve la mascota con su colección de visitas poblada (reemplazo al completo en cada lectura, sin cache).
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "pet not found"
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, populator VisitPopulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		if _, err := populator.PopulateVisitsForPet(r.Context(), &p); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// listPetsByOwnerHandler godoc
// @Summary Listar mascotas de un owner
// @Description Lista las mascotas de un owner sin poblar visitas.
// @Tags pets
// @Produce json
// @Param ownerID path string true "ID del owner"
// @Success 200 {array} petResponse
// @Failure 500 {string} string "internal error"
// @Router /owners/{ownerID}/pets [get]
func listPetsByOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByOwner(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// para no acoplar paquetes de dominio entre sí.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
