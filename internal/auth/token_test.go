package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenVerifierRoundTrip(t *testing.T) {
	branchID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440100")
	v := NewTokenVerifier([]byte("test-secret"), "")

	tests := []struct {
		name  string
		actor Actor
	}{
		{
			name:  "owner",
			actor: Actor{UserID: "owner-1", Role: RoleOwner},
		},
		{
			name:  "staff",
			actor: Actor{UserID: "staff-1", Role: RoleStaff, BranchID: branchID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := v.Issue(tt.actor, time.Hour)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			got, err := v.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.actor {
				t.Errorf("Verify() = %+v, want %+v", got, tt.actor)
			}
		})
	}
}

func TestTokenVerifierIssueRejectsStaffWithoutBranch(t *testing.T) {
	v := NewTokenVerifier([]byte("test-secret"), "")

	if _, err := v.Issue(Actor{UserID: "s", Role: RoleStaff}, time.Hour); err == nil {
		t.Error("Issue() should reject staff without branch")
	}
	if _, err := v.Issue(Actor{UserID: "x", Role: "guest"}, time.Hour); err == nil {
		t.Error("Issue() should reject unknown roles")
	}
}

func TestTokenVerifierVerifyFailures(t *testing.T) {
	v := NewTokenVerifier([]byte("test-secret"), "")
	other := NewTokenVerifier([]byte("other-secret"), "")
	otherIssuer := NewTokenVerifier([]byte("test-secret"), "someone-else")

	owner := Actor{UserID: "owner-1", Role: RoleOwner}

	foreign, err := other.Issue(owner, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	wrongIssuer, err := otherIssuer.Issue(owner, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	expired, err := v.Issue(owner, -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrongSecret", token: foreign},
		{name: "wrongIssuer", token: wrongIssuer},
		{name: "expired", token: expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenVerifierResolve(t *testing.T) {
	v := NewTokenVerifier([]byte("test-secret"), "")
	token, err := v.Issue(Actor{UserID: "owner-1", Role: RoleOwner}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name    string
		setup   func(r *http.Request)
		wantErr error
	}{
		{
			name:    "missing",
			setup:   func(r *http.Request) {},
			wantErr: ErrMissingToken,
		},
		{
			name: "header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
		},
		{
			name: "queryParam",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("access_token", token)
				r.URL.RawQuery = q.Encode()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			tt.setup(req)

			actor, err := v.Resolve(req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !actor.IsOwner() {
				t.Errorf("Resolve() role = %q, want owner", actor.Role)
			}
		})
	}
}

func TestActorCanAccessBranch(t *testing.T) {
	branchA := uuid.MustParse("550e8400-e29b-41d4-a716-446655440101")
	branchB := uuid.MustParse("550e8400-e29b-41d4-a716-446655440102")

	tests := []struct {
		name   string
		actor  Actor
		branch uuid.UUID
		want   bool
	}{
		{name: "ownerAnyBranch", actor: Actor{Role: RoleOwner}, branch: branchB, want: true},
		{name: "staffOwnBranch", actor: Actor{Role: RoleStaff, BranchID: branchA}, branch: branchA, want: true},
		{name: "staffOtherBranch", actor: Actor{Role: RoleStaff, BranchID: branchA}, branch: branchB, want: false},
		{name: "staffNoBranch", actor: Actor{Role: RoleStaff}, branch: uuid.Nil, want: false},
		{name: "unknownRole", actor: Actor{Role: "guest", BranchID: branchA}, branch: branchA, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.CanAccessBranch(tt.branch); got != tt.want {
				t.Errorf("CanAccessBranch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequireActor(t *testing.T) {
	v := NewTokenVerifier([]byte("test-secret"), "")
	token, err := v.Issue(Actor{UserID: "owner-1", Role: RoleOwner}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var seen Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireActor(v, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status with token = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if seen.UserID != "owner-1" {
		t.Errorf("actor in context = %+v", seen)
	}
}
