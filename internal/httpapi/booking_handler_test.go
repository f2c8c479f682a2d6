package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"meetingRoomBooking/internal/booking"
	"meetingRoomBooking/internal/config"
	"meetingRoomBooking/internal/testutil"
	"meetingRoomBooking/models"
	"meetingRoomBooking/repository"
)

const testSecret = "httpapi-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer builds the full router over a fresh in-memory database.
func newTestServer(t *testing.T, name string) (*gin.Engine, func(studentID, name, role string) *models.User) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	cfg := &config.Config{
		Env:  "test",
		Auth: config.AuthConfig{JWTSecret: testSecret, JWTExpiry: time.Hour},
	}
	users := repository.NewUserRepository(d)
	store := repository.NewCachedBookingRepository(repository.NewBookingRepository(d), time.Minute)
	scheduler := booking.NewService(store, booking.RealClock{}, nil)

	router := NewRouter(Dependencies{
		Config:    cfg,
		Users:     users,
		Bookings:  store,
		Scheduler: scheduler,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	addUser := func(studentID, displayName, role string) *models.User {
		return testutil.InsertUser(t, d, studentID, displayName, "", role)
	}
	return router, addUser
}

func doJSON(router *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// tomorrow keeps request dates inside the rolling window regardless of
// when the test runs.
func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format("2006-01-02")
}

func bookingBody(date, start, end string) gin.H {
	return gin.H{"date": date, "start": start, "end": end, "attendees": 3, "purpose": "sync"}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

func TestBookingAPI_CreateAndConflict(t *testing.T) {
	router, addUser := newTestServer(t, "api_conflict")
	alice := addUser("202420001", "Alice Chen", models.RoleUser)
	tok := testutil.BearerToken(t, testSecret, alice)

	w := doJSON(router, http.MethodPost, "/api/v1/bookings", tok, bookingBody(tomorrow(), "09:00", "10:00"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}

	// Overlapping request is refused and names the holder.
	w = doJSON(router, http.MethodPost, "/api/v1/bookings", tok, bookingBody(tomorrow(), "09:30", "10:30"))
	if w.Code != http.StatusConflict {
		t.Fatalf("conflict: status %d body %s", w.Code, w.Body.String())
	}
	e := decodeError(t, w)
	if e.Code != "CONFLICT" {
		t.Errorf("code = %q", e.Code)
	}
	details, _ := json.Marshal(e.Details)
	if !bytes.Contains(details, []byte("Alice Chen")) {
		t.Errorf("conflict details do not name the holder: %s", details)
	}

	// Touching slots coexist.
	w = doJSON(router, http.MethodPost, "/api/v1/bookings", tok, bookingBody(tomorrow(), "10:00", "11:00"))
	if w.Code != http.StatusCreated {
		t.Fatalf("touching slot: status %d body %s", w.Code, w.Body.String())
	}
}

func TestBookingAPI_Validation(t *testing.T) {
	router, addUser := newTestServer(t, "api_validation")
	u := addUser("202420002", "Bo Lin", models.RoleUser)
	tok := testutil.BearerToken(t, testSecret, u)

	past := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	w := doJSON(router, http.MethodPost, "/api/v1/bookings", tok, bookingBody(past, "09:00", "10:00"))
	if w.Code != http.StatusBadRequest || decodeError(t, w).Code != "OUT_OF_WINDOW" {
		t.Errorf("past date: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/v1/bookings", tok, bookingBody(tomorrow(), "11:00", "10:00"))
	if w.Code != http.StatusBadRequest || decodeError(t, w).Code != "INVALID_INTERVAL" {
		t.Errorf("inverted interval: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/v1/bookings", tok, gin.H{"date": tomorrow()})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields: status %d", w.Code)
	}
}

func TestBookingAPI_OwnershipAndAdmin(t *testing.T) {
	router, addUser := newTestServer(t, "api_ownership")
	owner := addUser("202420003", "Carla Reyes", models.RoleUser)
	other := addUser("202420004", "Dev Patel", models.RoleUser)
	admin := addUser("202420005", "Eve Root", models.RoleAdmin)

	ownerTok := testutil.BearerToken(t, testSecret, owner)
	otherTok := testutil.BearerToken(t, testSecret, other)
	adminTok := testutil.BearerToken(t, testSecret, admin)

	w := doJSON(router, http.MethodPost, "/api/v1/bookings", ownerTok, bookingBody(tomorrow(), "13:00", "14:00"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	path := fmt.Sprintf("/api/v1/bookings/%d", created.ID)

	// A stranger can neither edit nor delete.
	w = doJSON(router, http.MethodPut, path, otherTok, bookingBody(tomorrow(), "13:30", "14:30"))
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger edit: status %d", w.Code)
	}
	w = doJSON(router, http.MethodDelete, path, otherTok, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger delete: status %d", w.Code)
	}

	// The owner edits their own booking.
	w = doJSON(router, http.MethodPut, path, ownerTok, bookingBody(tomorrow(), "13:30", "14:30"))
	if w.Code != http.StatusOK {
		t.Errorf("owner edit: status %d body %s", w.Code, w.Body.String())
	}

	// An admin deletes anyone's booking.
	w = doJSON(router, http.MethodDelete, path, adminTok, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin delete: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodDelete, path, adminTok, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing: status %d", w.Code)
	}
}

func TestBookingAPI_ListScoping(t *testing.T) {
	router, addUser := newTestServer(t, "api_list")
	a := addUser("202420006", "Finn Berg", models.RoleUser)
	b := addUser("202420007", "Gia Tran", models.RoleUser)
	admin := addUser("202420008", "Hana Ito", models.RoleAdmin)

	aTok := testutil.BearerToken(t, testSecret, a)
	bTok := testutil.BearerToken(t, testSecret, b)
	adminTok := testutil.BearerToken(t, testSecret, admin)

	if w := doJSON(router, http.MethodPost, "/api/v1/bookings", aTok, bookingBody(tomorrow(), "09:00", "10:00")); w.Code != http.StatusCreated {
		t.Fatalf("seed a: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(router, http.MethodPost, "/api/v1/bookings", bTok, bookingBody(tomorrow(), "10:00", "11:00")); w.Code != http.StatusCreated {
		t.Fatalf("seed b: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Bookings []models.Booking `json:"bookings"`
	}
	w := doJSON(router, http.MethodGet, "/api/v1/bookings", aTok, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Bookings) != 1 || resp.Bookings[0].UserID != a.ID {
		t.Errorf("owner list: %+v", resp.Bookings)
	}

	// ?all= is admin-only.
	w = doJSON(router, http.MethodGet, "/api/v1/bookings?all=1", aTok, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin all: status %d", w.Code)
	}
	w = doJSON(router, http.MethodGet, "/api/v1/bookings?all=1", adminTok, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Bookings) != 2 {
		t.Errorf("admin all: got %d bookings", len(resp.Bookings))
	}

	// The day schedule shows both, ordered by start.
	w = doJSON(router, http.MethodGet, "/api/v1/bookings/day/"+tomorrow(), bTok, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Bookings) != 2 || resp.Bookings[0].Start != "09:00" {
		t.Errorf("day schedule: %+v", resp.Bookings)
	}
}

func TestBookingAPI_AuthGates(t *testing.T) {
	router, addUser := newTestServer(t, "api_gates")

	// No token at all.
	w := doJSON(router, http.MethodGet, "/api/v1/bookings", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status %d", w.Code)
	}

	// A forced password change blocks booking routes but not the
	// change-password endpoint.
	u := addUser("202420009", "Ivo Kral", models.RoleUser)
	u.MustChangePassword = true
	tok := testutil.BearerToken(t, testSecret, u)

	w = doJSON(router, http.MethodGet, "/api/v1/bookings", tok, nil)
	if w.Code != http.StatusForbidden || decodeError(t, w).Code != "PASSWORD_CHANGE_REQUIRED" {
		t.Errorf("forced change gate: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/v1/auth/change-password", tok,
		gin.H{"old_password": "wrong", "new_password": "longenough"})
	if w.Code == http.StatusForbidden {
		t.Errorf("change-password should not be behind the gate, got %d", w.Code)
	}
}
