package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"siam-adherence/internal/adapters/auth/jwtauth"
	"siam-adherence/internal/ports/notify"
	"siam-adherence/internal/router"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

func drain(t *testing.T, r *router.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Drain(ctx); err != nil {
		t.Fatalf("drain notifier: %v", err)
	}
}

func TestHTTP_EndToEnd_MissedDoseNotifiesCaregivers(t *testing.T) {
	mailer := &recordingMailer{}
	r := router.NewRouter(router.Options{AuthVerifier: nil, Mailer: mailer})
	ts := httptest.NewServer(r)
	defer ts.Close()

	userID := "1"
	otherID := "2"

	// 1) Usuario crea medicamento
	medID := createMedication(t, ts.URL, userID, "Losartana", 50)

	// 2) Registra dos responsables
	for _, email := range []string{"a@x.com", "b@x.com"} {
		st, body := doReq(t, ts.URL, "POST", "/responsibles", userID, map[string]any{
			"fullName": "Resp " + email,
			"email":    email,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create responsible, got %d body=%s", st, string(body))
		}
	}

	// 3) Dosis no tomada => 201 y un email por responsable
	{
		st, body := doReq(t, ts.URL, "POST", "/adherence/doses", userID, map[string]any{
			"medicationId": medID,
			"taken":        false,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 register dose, got %d body=%s", st, string(body))
		}
		var resp struct {
			Message      string `json:"message"`
			ID           int64  `json:"id"`
			MedicationID int64  `json:"medicationId"`
			Taken        bool   `json:"taken"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == 0 || resp.MedicationID != medID || resp.Taken {
			t.Fatalf("unexpected register dose response %s", string(body))
		}
	}

	drain(t, r)
	msgs := mailer.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(msgs))
	}
	to := []string{msgs[0].To, msgs[1].To}
	sort.Strings(to)
	if to[0] != "a@x.com" || to[1] != "b@x.com" {
		t.Fatalf("unexpected recipients %v", to)
	}
	for _, m := range msgs {
		if !strings.Contains(m.Text, "Losartana") || !strings.Contains(m.Text, "50") {
			t.Fatalf("notification missing name/dosage: %q", m.Text)
		}
	}

	// 4) Dosis tomada => sin emails nuevos
	{
		st, body := doReq(t, ts.URL, "POST", "/adherence/doses", userID, map[string]any{
			"medicationId": medID,
			"taken":        true,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 register dose, got %d body=%s", st, string(body))
		}
	}
	drain(t, r)
	if got := len(mailer.messages()); got != 2 {
		t.Fatalf("taken dose must not notify, got %d messages", got)
	}

	// 5) Resumen
	{
		st, body := doReq(t, ts.URL, "GET", "/adherence/summary", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 summary, got %d body=%s", st, string(body))
		}
		var rows []struct {
			Name        string `json:"name"`
			TakenCount  int64  `json:"takenCount"`
			MissedCount int64  `json:"missedCount"`
		}
		_ = json.Unmarshal(body, &rows)
		if len(rows) != 1 || rows[0].Name != "Losartana" || rows[0].TakenCount != 1 || rows[0].MissedCount != 1 {
			t.Fatalf("unexpected summary %s", string(body))
		}
	}

	// 6) Omisiones por semana y consumo diario
	{
		st, body := doReq(t, ts.URL, "GET", "/adherence/missed-by-week", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 missed-by-week, got %d body=%s", st, string(body))
		}
		var rows []struct {
			MissedCount int64  `json:"missedCount"`
			Week        string `json:"week"`
		}
		_ = json.Unmarshal(body, &rows)
		if len(rows) != 1 || rows[0].MissedCount != 1 {
			t.Fatalf("unexpected missed-by-week %s", string(body))
		}
		if _, err := time.Parse("2006-01-02", rows[0].Week); err != nil {
			t.Fatalf("week must be YYYY-MM-DD, got %q", rows[0].Week)
		}

		st, body = doReq(t, ts.URL, "GET", "/adherence/daily-consumption", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 daily-consumption, got %d body=%s", st, string(body))
		}
		var daily []struct {
			TakenCount int64  `json:"takenCount"`
			DayOfWeek  string `json:"dayOfWeek"`
		}
		_ = json.Unmarshal(body, &daily)
		if len(daily) != 1 || daily[0].DayOfWeek != time.Now().UTC().Weekday().String() {
			t.Fatalf("unexpected daily consumption %s", string(body))
		}

		st, _ = doReq(t, ts.URL, "GET", "/adherence/daily-consumption?current_week=maybe", userID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid current_week, got %d", st)
		}
	}

	// 7) Otro usuario no ve ni registra sobre el medicamento ajeno
	{
		st, _ := doReq(t, ts.URL, "POST", "/adherence/doses", otherID, map[string]any{
			"medicationId": medID,
			"taken":        false,
		})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for foreign medication, got %d", st)
		}
		st, body := doReq(t, ts.URL, "GET", "/adherence/summary", otherID, nil)
		if st != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("expected empty summary for other user, got %d body=%s", st, string(body))
		}
	}
	drain(t, r)
	if got := len(mailer.messages()); got != 2 {
		t.Fatalf("rejected dose must not notify, got %d messages", got)
	}
}

func TestHTTP_RegisterDose_Validation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	medID := createMedication(t, ts.URL, "1", "Metformina", 500)

	st, _ := doReq(t, ts.URL, "POST", "/adherence/doses", "", map[string]any{"medicationId": medID, "taken": true})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/adherence/doses", "1", map[string]any{"medicationId": medID})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 without taken, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/adherence/doses", "1", map[string]any{"taken": true})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 without medicationId, got %d", st)
	}
}

func TestHTTP_MedicationsAndAlerts(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	medID := createMedication(t, ts.URL, "1", "Dipirona", 1)
	path := "/medications/" + strconv.FormatInt(medID, 10)

	// horarios en portugués se normalizan
	{
		st, body := doReq(t, ts.URL, "GET", path, "1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get medication, got %d body=%s", st, string(body))
		}
		if !strings.Contains(string(body), `"daysOfWeek":["Monday","Wednesday"]`) {
			t.Fatalf("expected canonical weekdays, body=%s", string(body))
		}
	}

	// ajeno => 404
	if st, _ := doReq(t, ts.URL, "GET", path, "2", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign medication, got %d", st)
	}

	// sin horarios => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications", "1", map[string]any{
			"name":      "X",
			"dosage":    1,
			"startDate": "2025-03-01",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 without schedules, got %d", st)
		}
	}

	// alerta sobre medicamento propio
	{
		st, body := doReq(t, ts.URL, "POST", "/alerts", "1", map[string]any{
			"name":         "Manhã",
			"playCount":    3,
			"medicationId": medID,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create alert, got %d body=%s", st, string(body))
		}
		var resp struct {
			MedicationName string `json:"medicationName"`
			IsActive       bool   `json:"isActive"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.MedicationName != "Dipirona" || !resp.IsActive {
			t.Fatalf("unexpected alert %s", string(body))
		}
	}

	// alerta sobre medicamento ajeno => 404
	if st, _ := doReq(t, ts.URL, "POST", "/alerts", "2", map[string]any{
		"name":         "x",
		"medicationId": medID,
	}); st != http.StatusNotFound {
		t.Fatalf("expected 404 alert on foreign medication, got %d", st)
	}

	// borrar medicamento arrastra alertas y registros
	{
		if st, _ := doReq(t, ts.URL, "POST", "/adherence/doses", "1", map[string]any{"medicationId": medID, "taken": true}); st != http.StatusCreated {
			t.Fatalf("expected 201 register dose, got %d", st)
		}
		if st, _ := doReq(t, ts.URL, "DELETE", path, "2", nil); st != http.StatusNotFound {
			t.Fatalf("expected 404 deleting foreign medication, got %d", st)
		}
		if st, _ := doReq(t, ts.URL, "DELETE", path, "1", nil); st != http.StatusNoContent {
			t.Fatalf("expected 204 delete medication, got %d", st)
		}
		_, body := doReq(t, ts.URL, "GET", "/alerts", "1", nil)
		if strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("expected alerts gone, body=%s", string(body))
		}
		_, body = doReq(t, ts.URL, "GET", "/adherence/summary", "1", nil)
		if strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("expected empty summary, body=%s", string(body))
		}
	}
}

func TestHTTP_SignupLoginBearer(t *testing.T) {
	jwt, err := jwtauth.NewManager(jwtauth.Config{Secret: "test-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: jwt, TokenIssuer: jwt}))
	defer ts.Close()

	signup := map[string]any{
		"fullName": "Maria Silva",
		"email":    "maria@example.com",
		"username": "maria",
		"password": "secret1",
	}
	if st, body := doReq(t, ts.URL, "POST", "/signup", "", signup); st != http.StatusCreated {
		t.Fatalf("expected 201 signup, got %d body=%s", st, string(body))
	}
	if st, _ := doReq(t, ts.URL, "POST", "/signup", "", signup); st != http.StatusConflict {
		t.Fatalf("expected 409 duplicate signup, got %d", st)
	}

	long := map[string]any{
		"fullName": "Joao Lima",
		"email":    "joao@example.com",
		"username": "joao",
		"password": strings.Repeat("x", 80),
	}
	if st, body := doReq(t, ts.URL, "POST", "/signup", "", long); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for password over 72 bytes, got %d body=%s", st, string(body))
	}

	if st, _ := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"username": "maria", "password": "nope"}); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad password, got %d", st)
	}

	st, body := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"username": "maria", "password": "secret1"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}
	var login struct {
		Token  string `json:"token"`
		UserID int64  `json:"userId"`
	}
	_ = json.Unmarshal(body, &login)
	if login.Token == "" || login.UserID == 0 {
		t.Fatalf("login: missing token body=%s", string(body))
	}

	// el header de debug no vale cuando hay verifier
	if st, _ := doReq(t, ts.URL, "GET", "/me", "1", nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with debug header in jwt mode, got %d", st)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	meBody, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 /me, got %d body=%s", res.StatusCode, string(meBody))
	}
	if strings.Contains(string(meBody), "password") {
		t.Fatalf("password hash must never be returned: %s", string(meBody))
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}

	_ = createMedication(t, ts.URL, "1", "A", 1)

	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	if !strings.Contains(string(body), "siam_http_requests_total") || !strings.Contains(string(body), `status="201"`) {
		t.Fatalf("expected request counter in metrics output")
	}
}

func createMedication(t *testing.T, baseURL, userID, name string, dosage float64) int64 {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications", userID, map[string]any{
		"name":      name,
		"dosage":    dosage,
		"startDate": "2025-03-01",
		"administrationSchedules": []map[string]any{
			{"time": "08:00", "daysOfWeek": []string{"Quarta-feira", "Segunda"}},
		},
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == 0 {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
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
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
