package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hallenjay/tokentribute/internal/domain"
)

type stubProfileService struct {
	profiles []domain.Profile
	profile  domain.Profile
	err      error
	minScore int
}

func (s *stubProfileService) TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error) {
	return s.profiles, s.err
}

func (s *stubProfileService) Search(ctx context.Context, query string) ([]domain.Profile, error) {
	return s.profiles, s.err
}

func (s *stubProfileService) ByUsername(ctx context.Context, username string) (domain.Profile, error) {
	return s.profile, s.err
}

func (s *stubProfileService) MinScore() int { return s.minScore }

func TestTopMarksEligibility(t *testing.T) {
	svc := &stubProfileService{
		minScore: 1400,
		profiles: []domain.Profile{
			{
				Username:         "alice",
				CredibilityScore: 1800,
				Keys:             domain.ParseUserKeys([]string{"address:0xA11CE", "twitter:alice"}),
			},
			{
				Username:         "bob",
				CredibilityScore: 900,
				Keys:             domain.ParseUserKeys([]string{"address:0xB0B"}),
			},
			{
				Username:         "carol",
				CredibilityScore: 2100,
				Keys:             domain.ParseUserKeys([]string{"twitter:carol"}),
			},
		},
	}
	h := NewProfileHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	rr := httptest.NewRecorder()

	h.Top(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var views []struct {
		Username string   `json:"username"`
		Userkeys []string `json:"userkeys"`
		Eligible bool     `json:"eligible"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("got %d profiles, want 3", len(views))
	}

	want := map[string]bool{
		"alice": true,  // above threshold with a linked wallet
		"bob":   false, // wallet but below threshold
		"carol": false, // above threshold but no wallet key
	}
	for _, v := range views {
		if v.Eligible != want[v.Username] {
			t.Errorf("%s: eligible = %v, want %v", v.Username, v.Eligible, want[v.Username])
		}
	}
}

func TestTopExposesRawUserkeys(t *testing.T) {
	svc := &stubProfileService{
		minScore: 1400,
		profiles: []domain.Profile{
			{
				Username:         "alice",
				CredibilityScore: 1800,
				Keys:             domain.ParseUserKeys([]string{"address:0xA11CE", "twitter:alice"}),
			},
		},
	}
	h := NewProfileHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	rr := httptest.NewRecorder()

	h.Top(rr, req)

	var views []struct {
		Userkeys []string `json:"userkeys"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(views) != 1 || len(views[0].Userkeys) != 2 {
		t.Fatalf("userkeys not round-tripped: %+v", views)
	}
	if views[0].Userkeys[0] != "address:0xA11CE" {
		t.Fatalf("userkeys[0] = %q, want address:0xA11CE", views[0].Userkeys[0])
	}
}

func TestGetUnknownProfile(t *testing.T) {
	svc := &stubProfileService{err: domain.ErrNotFound, minScore: 1400}
	h := NewProfileHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/ghost", nil)
	req.SetPathValue("username", "ghost")
	rr := httptest.NewRecorder()

	h.Get(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
