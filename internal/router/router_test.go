package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-visits/internal/router"

	"github.com/google/uuid"
)

func TestHTTP_EndToEnd_OwnerTree(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// 1) Crear owner con dos mascotas
	ownerID := createOwner(t, ts.URL, map[string]any{
		"first_name": "Ana",
		"last_name":  "García",
		"city":       "Córdoba",
		"telephone":  "555-0101",
	})
	p1 := createPet(t, ts.URL, ownerID, "Milo")
	p2 := createPet(t, ts.URL, ownerID, "Luna")

	// 2) Dos visitas para la primera, ninguna para la segunda
	v1 := createVisit(t, ts.URL, p1, "2023-01-01", "checkup")
	createVisit(t, ts.URL, p1, "2023-03-05", "vaccine")

	// 3) El árbol completo llega poblado: ambas mascotas presentes y la
	// que no tiene visitas trae array vacío, no null
	st, body := doReq(t, ts.URL, "GET", "/owners/"+ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 owner tree, got %d body=%s", st, string(body))
	}

	var tree struct {
		ID   string `json:"id"`
		Pets []struct {
			ID     string `json:"id"`
			Visits []struct {
				VisitID     string `json:"visit_id"`
				VisitDate   string `json:"visit_date"`
				Description string `json:"description"`
			} `json:"visits"`
		} `json:"pets"`
	}
	if err := json.Unmarshal(body, &tree); err != nil {
		t.Fatalf("invalid owner tree json: %v body=%s", err, string(body))
	}
	if len(tree.Pets) != 2 {
		t.Fatalf("expected 2 pets in tree, got %d", len(tree.Pets))
	}
	for _, p := range tree.Pets {
		switch p.ID {
		case p1:
			if len(p.Visits) != 2 {
				t.Fatalf("expected 2 visits on %s, got %d", p1, len(p.Visits))
			}
		case p2:
			if p.Visits == nil {
				t.Fatalf("expected empty visits array on %s, got null", p2)
			}
			if len(p.Visits) != 0 {
				t.Fatalf("expected 0 visits on %s, got %d", p2, len(p.Visits))
			}
		default:
			t.Fatalf("unexpected pet %s in tree", p.ID)
		}
	}

	// 4) Round-trip por índice secundario: la visita se encuentra sin
	// conocer la mascota
	st, body = doReq(t, ts.URL, "GET", "/visits/"+v1, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 find visit by id, got %d body=%s", st, string(body))
	}
	var found struct {
		PetID       string `json:"pet_id"`
		VisitDate   string `json:"visit_date"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(body, &found)
	if found.PetID != p1 || found.VisitDate != "2023-01-01" || found.Description != "checkup" {
		t.Fatalf("round-trip mismatch: %+v", found)
	}

	// 5) Listado por mascota en orden de clustering (visit_id asc)
	st, body = doReq(t, ts.URL, "GET", "/pets/"+p1+"/visits", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list visits, got %d body=%s", st, string(body))
	}
	var listed []struct {
		VisitID string `json:"visit_id"`
	}
	_ = json.Unmarshal(body, &listed)
	if len(listed) != 2 {
		t.Fatalf("expected 2 visits listed, got %d", len(listed))
	}
	if listed[0].VisitID > listed[1].VisitID {
		t.Fatalf("expected ascending visit_id order, got %s then %s", listed[0].VisitID, listed[1].VisitID)
	}

	// 6) El perfil individual de mascota también llega poblado
	st, body = doReq(t, ts.URL, "GET", "/pets/"+p1, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 pet profile, got %d body=%s", st, string(body))
	}
	var profile struct {
		Visits []any `json:"visits"`
	}
	_ = json.Unmarshal(body, &profile)
	if len(profile.Visits) != 2 {
		t.Fatalf("expected 2 visits on pet profile, got %d", len(profile.Visits))
	}
}

func TestHTTP_UpsertIdempotentAndDelete(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	ownerID := createOwner(t, ts.URL, map[string]any{
		"first_name": "Bruno",
		"last_name":  "Díaz",
	})
	petID := createPet(t, ts.URL, ownerID, "Rocky")
	visitID := uuid.NewString()

	// 1) Upsert con clave fija, dos veces: queda una sola fila con los
	// últimos valores
	for _, desc := range []string{"first write", "latest write"} {
		st, body := doReq(t, ts.URL, "PUT", "/pets/"+petID+"/visits/"+visitID, map[string]any{
			"visit_date":  "2023-05-05",
			"description": desc,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 upsert, got %d body=%s", st, string(body))
		}
	}

	st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/visits", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d", st)
	}
	var listed []struct {
		VisitID     string `json:"visit_id"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(body, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected exactly 1 row after double upsert, got %d", len(listed))
	}
	if listed[0].Description != "latest write" {
		t.Fatalf("expected last write to win, got %q", listed[0].Description)
	}

	// 2) Delete dos veces: ambas 204 (borrar ausente no es error)
	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "DELETE", "/pets/"+petID+"/visits/"+visitID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("delete #%d: expected 204, got %d body=%s", i+1, st, string(body))
		}
	}

	// 3) Y la visita ya no se encuentra
	st, _ = doReq(t, ts.URL, "GET", "/visits/"+visitID, nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", st)
	}
}

func TestHTTP_Validation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	ownerID := createOwner(t, ts.URL, map[string]any{
		"first_name": "Carla",
		"last_name":  "Pérez",
	})
	petID := createPet(t, ts.URL, ownerID, "Toby")

	// visit_date inválida => 400
	st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/visits", map[string]any{
		"visit_date":  "05/05/2023",
		"description": "x",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad visit_date, got %d", st)
	}

	// visit_id no-uuid => 400
	st, _ = doReq(t, ts.URL, "GET", "/visits/not-a-uuid", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad visit id, got %d", st)
	}

	// owner inexistente => 404
	st, _ = doReq(t, ts.URL, "GET", "/owners/"+uuid.NewString(), nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown owner, got %d", st)
	}
}

func createOwner(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/owners", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create owner, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create owner: missing id body=%s", string(body))
	}
	return resp.ID
}

func createPet(t *testing.T, baseURL, ownerID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", map[string]any{
		"owner_id": ownerID,
		"name":     name,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func createVisit(t *testing.T, baseURL, petID, date, desc string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets/"+petID+"/visits", map[string]any{
		"visit_date":  date,
		"description": desc,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create visit, got %d body=%s", st, string(body))
	}

	var resp struct {
		VisitID string `json:"visit_id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.VisitID == "" {
		t.Fatalf("create visit: missing visit_id body=%s", string(body))
	}
	return resp.VisitID
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, b
}
