package ethos

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hallenjay/tokentribute/internal/domain"
)

func apiUser(username string, score int, userkeys ...string) APIUser {
	u := APIUser{
		ID:          7,
		ProfileID:   42,
		DisplayName: "Display " + username,
		Username:    username,
		Score:       score,
		Status:      "ACTIVE",
		Userkeys:    userkeys,
	}
	u.Stats.Review.Received.Positive = 12
	u.Stats.Vouch.Received.Count = 3
	return u
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "tributed-test/1.0", nil, slog.Default()), srv
}

func TestUserByUsername(t *testing.T) {
	var gotHeader string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Ethos-Client")
		if r.URL.Path != "/user/by/username/alice" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(apiUser("alice", 1800, "address:0xA11CE", "twitter:alice"))
	}))

	p, err := client.UserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("UserByUsername: %v", err)
	}
	if gotHeader != "tributed-test/1.0" {
		t.Errorf("X-Ethos-Client = %q", gotHeader)
	}
	if p.ID != "42" {
		t.Errorf("id = %q, want profileId 42", p.ID)
	}
	if p.CredibilityScore != 1800 {
		t.Errorf("score = %d, want 1800", p.CredibilityScore)
	}
	if addr, ok := p.SettlementAddress(); !ok || addr != "0xA11CE" {
		t.Errorf("settlement address = %q, %v", addr, ok)
	}
	if p.Stats.ReviewsPositive != 12 || p.Stats.VouchesReceived != 3 {
		t.Errorf("stats not mapped: %+v", p.Stats)
	}
}

func TestUserByUsernameNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such user", http.StatusNotFound)
	}))

	_, err := client.UserByUsername(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestProfileFallbacks(t *testing.T) {
	u := APIUser{ID: 9, Username: "bob", Status: "ACTIVE"}
	p := u.ToDomainProfile()

	if p.ID != "9" {
		t.Errorf("id = %q, want numeric id fallback", p.ID)
	}
	if p.DisplayName != "bob" {
		t.Errorf("display name = %q, want username fallback", p.DisplayName)
	}
	if p.AvatarURL == "" {
		t.Error("avatar fallback missing")
	}
	if p.ProfileURL != "https://ethos.network/user/bob" {
		t.Errorf("profile url = %q", p.ProfileURL)
	}
}

func TestSearchUsersFiltersInactive(t *testing.T) {
	inactive := apiUser("ghost", 2000)
	inactive.Status = "INACTIVE"
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "defi" {
			t.Errorf("query = %q", got)
		}
		json.NewEncoder(w).Encode(searchResponse{
			Values: []APIUser{apiUser("alice", 1800), inactive},
			Total:  2,
		})
	}))

	got, err := client.SearchUsers(context.Background(), "defi", 10)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(got) != 1 || got[0].Username != "alice" {
		t.Fatalf("got %d profiles, want the single active one", len(got))
	}
}

func TestSearchUsersRejectsShortQuery(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())
	if _, err := client.SearchUsers(context.Background(), "x", 10); err == nil {
		t.Fatal("single-character query should be rejected")
	}
}

func TestTopProfilesAggregatesAndSorts(t *testing.T) {
	// Every keyword search returns an overlapping set; the aggregation must
	// dedupe by username, drop sub-threshold scores, and sort descending.
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Values: []APIUser{
			apiUser("alice", 1800, "address:0xA11CE"),
			apiUser("bob", 2100),
			apiUser("lowscore", 900),
		}})
	}))

	got, err := client.TopProfiles(context.Background(), 1400, 10)
	if err != nil {
		t.Fatalf("TopProfiles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d profiles, want 2", len(got))
	}
	if got[0].Username != "bob" || got[1].Username != "alice" {
		t.Errorf("order = [%s %s], want [bob alice]", got[0].Username, got[1].Username)
	}
}

func TestTopProfilesFallsBackToIDBatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/search":
			http.Error(w, "search unavailable", http.StatusInternalServerError)
		case r.URL.Path == "/users/by/ids" && r.Method == http.MethodPost:
			var req struct {
				UserIDs []int64 `json:"userIds"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
				t.Errorf("bad batch request: %v", err)
			}
			json.NewEncoder(w).Encode([]APIUser{apiUser("carol", 1500)})
		default:
			http.NotFound(w, r)
		}
	}))

	got, err := client.TopProfiles(context.Background(), 1400, 10)
	if err != nil {
		t.Fatalf("TopProfiles: %v", err)
	}
	if len(got) != 1 || got[0].Username != "carol" {
		t.Fatalf("fallback got %v, want carol", got)
	}
}
