package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"epaws/internal/router"
)

type principal struct {
	id   string
	role string
}

var (
	anon    = principal{}
	admin   = principal{"admin-1", "admin"}
	shelter = principal{"org-1", "organization"}
	citizen = principal{"citizen-1", "user"}
	adopter = principal{"adopter-1", "user"}
)

const adoptionMessage = "Vivo en una casa con patio cerrado y ya tuve perros antes, trabajo desde casa."

func TestHTTP_EndToEnd_RescueToAdoption(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// 1) Solo admin registra organizaciones
	{
		st, _ := doReq(t, ts.URL, "POST", "/organizations", citizen, map[string]any{"kind": "organization", "name": "x"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 registering as user, got %d", st)
		}
	}
	mustStatus(t, ts.URL, "POST", "/organizations", admin, map[string]any{
		"id":       shelter.id,
		"kind":     "organization",
		"name":     "Refugio Patitas",
		"verified": true,
	}, http.StatusCreated)

	// 2) Ciudadano reporta; sin auth es 401
	{
		st, _ := doReq(t, ts.URL, "POST", "/reports", anon, map[string]any{"description": "perro en la calle"})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without auth, got %d", st)
		}
	}
	reportID := idOf(t, mustStatus(t, ts.URL, "POST", "/reports", citizen, map[string]any{
		"description": "Perro herido cerca de la plaza",
		"urgency":     "high",
		"animal_type": "dog",
		"latitude":    -33.45,
		"longitude":   -70.6,
	}, http.StatusCreated))

	{
		body := mustStatus(t, ts.URL, "GET", "/reports/nearby?lat=-33.45&lon=-70.6", citizen, nil, http.StatusOK)
		var near []map[string]any
		_ = json.Unmarshal(body, &near)
		if len(near) != 1 || near[0]["id"] != reportID {
			t.Fatalf("expected report in nearby search, got %s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/reports/nearby?lat=-95&lon=-70.6", citizen, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for latitude out of range, got %d", st)
		}
	}

	// 3) La organización toma el caso
	{
		body := mustStatus(t, ts.URL, "PATCH", "/reports/"+reportID, shelter, map[string]any{
			"status":          "assigned",
			"organization_id": shelter.id,
		}, http.StatusOK)
		var got struct {
			Status       string `json:"status"`
			Organization struct {
				Name string `json:"name"`
			} `json:"organization"`
		}
		_ = json.Unmarshal(body, &got)
		if got.Status != "assigned" || got.Organization.Name != "Refugio Patitas" {
			t.Fatalf("unexpected report after assign: %s", string(body))
		}
	}

	// 4) Alta del animal
	animalID := idOf(t, mustStatus(t, ts.URL, "POST", "/animals", shelter, map[string]any{
		"report_id":  reportID,
		"name":       "Firulais",
		"species":    "dog",
		"gender":     "male",
		"size":       "medium",
		"photo_urls": []string{"https://img.example/firulais.jpg"},
	}, http.StatusCreated))

	// 5) Postulación + duplicado
	application := map[string]any{
		"animal_id": animalID,
		"message":   adoptionMessage,
		"adopter_info": map[string]any{
			"home_type":         "house",
			"has_yard":          true,
			"household_members": 2,
		},
	}
	adoptionID := idOf(t, mustStatus(t, ts.URL, "POST", "/adoptions", adopter, application, http.StatusCreated))
	{
		st, _ := doReq(t, ts.URL, "POST", "/adoptions", adopter, application)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate application, got %d", st)
		}
	}

	// 6) Aprobación reserva al animal
	mustStatus(t, ts.URL, "PATCH", "/adoptions/"+adoptionID+"/status", shelter, map[string]any{"status": "approved"}, http.StatusOK)
	if st := fieldOf(t, mustStatus(t, ts.URL, "GET", "/animals/"+animalID, citizen, nil, http.StatusOK), "status"); st != "pending_adoption" {
		t.Fatalf("expected pending_adoption, got %v", st)
	}

	// 7) Completar adopta y descuenta del ledger
	mustStatus(t, ts.URL, "PATCH", "/adoptions/"+adoptionID+"/status", shelter, map[string]any{"status": "completed"}, http.StatusOK)
	if st := fieldOf(t, mustStatus(t, ts.URL, "GET", "/animals/"+animalID, citizen, nil, http.StatusOK), "status"); st != "adopted" {
		t.Fatalf("expected adopted, got %v", st)
	}
	{
		body := mustStatus(t, ts.URL, "GET", "/organizations/"+shelter.id, citizen, nil, http.StatusOK)
		var got struct {
			Counters struct {
				CurrentAnimals int64 `json:"currentAnimals"`
			} `json:"counters"`
		}
		_ = json.Unmarshal(body, &got)
		if got.Counters.CurrentAnimals != 0 {
			t.Fatalf("expected currentAnimals=0, got %s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/adoptions/"+adoptionID+"/status", shelter, map[string]any{"status": "pending"})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 leaving a terminal status, got %d", st)
		}
	}

	// 8) Buzón del adoptante
	{
		body := mustStatus(t, ts.URL, "GET", "/me/notifications", adopter, nil, http.StatusOK)
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 2 {
			t.Fatalf("expected 2 notifications, got %s", string(body))
		}
	}
	if n := fieldOf(t, mustStatus(t, ts.URL, "GET", "/me/notifications/unread-count", adopter, nil, http.StatusOK), "count"); n != float64(2) {
		t.Fatalf("expected 2 unread, got %v", n)
	}
	mustStatus(t, ts.URL, "POST", "/me/notifications/read-all", adopter, nil, http.StatusOK)
	if n := fieldOf(t, mustStatus(t, ts.URL, "GET", "/me/notifications/unread-count", adopter, nil, http.StatusOK), "count"); n != float64(0) {
		t.Fatalf("expected 0 unread, got %v", n)
	}
	if n := fieldOf(t, mustStatus(t, ts.URL, "DELETE", "/me/notifications/read", adopter, nil, http.StatusOK), "count"); n != float64(2) {
		t.Fatalf("expected 2 deleted, got %v", n)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", anon, nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health %d %s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/metrics", anon, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("unexpected metrics %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/swagger/doc.json", anon, nil)
	if st != http.StatusOK {
		t.Fatalf("expected swagger doc, got %d", st)
	}
}

func TestHTTP_UnknownIDsAre404(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	for _, path := range []string{"/reports/nope", "/animals/nope", "/medical-records/nope", "/organizations/nope"} {
		st, _ := doReq(t, ts.URL, "GET", path, citizen, nil)
		if st != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, st)
		}
	}
}

func mustStatus(t *testing.T, baseURL, method, path string, who principal, payload any, want int) []byte {
	t.Helper()

	st, body := doReq(t, baseURL, method, path, who, payload)
	if st != want {
		t.Fatalf("%s %s: expected %d, got %d body=%s", method, path, want, st, string(body))
	}
	return body
}

func idOf(t *testing.T, body []byte) string {
	t.Helper()

	id, _ := fieldOf(t, body, "id").(string)
	if id == "" {
		t.Fatalf("missing id body=%s", string(body))
	}
	return id
}

func fieldOf(t *testing.T, body []byte, key string) any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(body))
	}
	return m[key]
}

func doReq(t *testing.T, baseURL, method, path string, who principal, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.id != "" {
		req.Header.Set("X-Debug-User-ID", who.id)
		req.Header.Set("X-Debug-Role", who.role)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
