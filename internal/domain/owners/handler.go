package owners

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"pet-visits/internal/domain/pets"

	"github.com/go-chi/chi/v5"
)

// TreePopulator carga las visitas de todas las mascotas del owner y
// señala la completitud recién cuando TODAS terminaron.
type TreePopulator interface {
	PopulateVisitsForOwner(ctx context.Context, o *Owner) (*Owner, error)
}

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service, populator TreePopulator) {
	r.Route("/owners", func(or chi.Router) {
		or.Post("/", createOwnerHandler(svc))
		or.Get("/", listOwnersHandler(svc))

		// Árbol completo owner → pets → visits
		or.Get("/{ownerID}", getOwnerHandler(svc, petsSvc, populator))
	})
}

type createOwnerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	Telephone string `json:"telephone"`
}

type ownerResponse struct {
	ID        string            `json:"id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	City      string            `json:"city"`
	Telephone string            `json:"telephone"`
	Pets      []petTreeResponse `json:"pets,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type petTreeResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BirthDate *time.Time      `json:"birth_date,omitempty"`
	Visits    []visitResponse `json:"visits"`
}

type visitResponse struct {
	VisitID     string `json:"visit_id"`
	VisitDate   string `json:"visit_date"` // YYYY-MM-DD
	Description string `json:"description"`
}

func toOwnerResponse(o Owner) ownerResponse {
	out := ownerResponse{
		ID:        o.ID,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		City:      o.City,
		Telephone: o.Telephone,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, p := range o.Pets {
		out.Pets = append(out.Pets, toPetTreeResponse(p))
	}
	return out
}

func toPetTreeResponse(p *pets.Pet) petTreeResponse {
	// Visits nunca se deja en nil en el árbol poblado: una mascota sin
	// visitas devuelve un array vacío.
	vs := make([]visitResponse, 0, len(p.Visits))
	for v := range p.Visits {
		vs = append(vs, visitResponse{
			VisitID:     v.VisitID,
			VisitDate:   v.VisitDate.Format("2006-01-02"),
			Description: v.Description,
		})
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].VisitID < vs[j].VisitID })

	return petTreeResponse{
		ID:        p.ID,
		Name:      p.Name,
		BirthDate: p.BirthDate,
		Visits:    vs,
	}
}

// createOwnerHandler godoc
// @Summary Crear owner
// @Description Registra un owner nuevo.
// @Tags owners
// @Accept json
// @Produce json
// @Param payload body createOwnerRequest true "Datos del owner"
// @Success 201 {object} ownerResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Router /owners [post]
func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.Create(r.Context(), CreateInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			City:      req.City,
			Telephone: req.Telephone,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

// listOwnersHandler godoc
// @Summary Listar owners
// @Description Lista los owners sin poblar el árbol de mascotas/visitas.
// @Tags owners
// @Produce json
// @Success 200 {array} ownerResponse
// @Failure 500 {string} string "internal error"
// @Router /owners [get]
func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getOwnerHandler godoc
// @Summary Árbol completo de un owner
// @Description Devuelve el owner con todas sus mascotas y, para cada una, su colección de visitas. La respuesta llega recién cuando todas las poblaciones por mascota terminaron; si una falla, falla la operación completa.
// @Tags owners
// @Produce json
// @Param ownerID path string true "ID del owner"
// @Success 200 {object} ownerResponse
// @Failure 404 {string} string "owner not found"
// @Failure 500 {string} string "internal error"
// @Router /owners/{ownerID} [get]
func getOwnerHandler(svc *Service, petsSvc *pets.Service, populator TreePopulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.GetByID(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			http.Error(w, "owner not found", http.StatusNotFound)
			return
		}

		ps, err := petsSvc.ListByOwner(r.Context(), o.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		o.Pets = make([]*pets.Pet, len(ps))
		for i := range ps {
			o.Pets[i] = &ps[i]
		}

		if _, err := populator.PopulateVisitsForOwner(r.Context(), &o); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// para no acoplar paquetes de dominio entre sí.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
