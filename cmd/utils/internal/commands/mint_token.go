package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/tableside/internal/auth"
	"github.com/appetiteclub/tableside/internal/mongo"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const defaultTokenTTL = 12 * time.Hour

type tokenRequest struct {
	role       auth.Role
	user       string
	branchID   uuid.UUID
	branchSlug string
	ttl        time.Duration
}

func newTokenRequest(role, user, branch, ttl string) (tokenRequest, error) {
	req := tokenRequest{
		role: auth.Role(strings.ToLower(strings.TrimSpace(role))),
		user: strings.TrimSpace(user),
		ttl:  defaultTokenTTL,
	}
	if req.role == "" {
		req.role = auth.RoleStaff
	}
	if req.role != auth.RoleOwner && req.role != auth.RoleStaff {
		return req, fmt.Errorf("unknown role %q", role)
	}
	if req.user == "" {
		return req, errors.New("token.user is required")
	}

	if ttl = strings.TrimSpace(ttl); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return req, fmt.Errorf("invalid token.ttl %q", ttl)
		}
		req.ttl = d
	}

	branch = strings.TrimSpace(branch)
	if id, err := uuid.Parse(branch); err == nil {
		req.branchID = id
	} else {
		req.branchSlug = strings.ToLower(branch)
	}

	if req.role == auth.RoleStaff && req.branchID == uuid.Nil && req.branchSlug == "" {
		return req, errors.New("staff tokens require token.branch")
	}
	return req, nil
}

// MintToken signs a bearer token with the service secret. Branch slugs are
// resolved against the database.
func MintToken(ctx context.Context, config *aqm.Config, logger aqm.Logger) (string, error) {
	secret, _ := config.GetString("auth.jwt.secret")
	if secret == "" {
		return "", errors.New("auth.jwt.secret is not set")
	}
	issuer, _ := config.GetString("auth.jwt.issuer")

	role, _ := config.GetString("token.role")
	user, _ := config.GetString("token.user")
	branch, _ := config.GetString("token.branch")
	ttl, _ := config.GetString("token.ttl")

	req, err := newTokenRequest(role, user, branch, ttl)
	if err != nil {
		return "", err
	}

	if req.branchSlug != "" {
		id, err := lookupBranch(ctx, config, logger, req.branchSlug)
		if err != nil {
			return "", err
		}
		req.branchID = id
	}

	verifier := auth.NewTokenVerifier([]byte(secret), issuer)
	return verifier.Issue(auth.Actor{
		UserID:   req.user,
		Role:     req.role,
		BranchID: req.branchID,
	}, req.ttl)
}

func lookupBranch(ctx context.Context, config *aqm.Config, logger aqm.Logger, slug string) (uuid.UUID, error) {
	base := mongo.NewBaseRepo(config, logger)
	if err := base.Start(ctx); err != nil {
		return uuid.Nil, err
	}
	defer base.Stop(ctx)

	branch, err := mongo.NewCatalogRepos(base).Branches.GetBySlug(ctx, slug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup branch %s: %w", slug, err)
	}
	if branch == nil {
		return uuid.Nil, fmt.Errorf("branch %s not found", slug)
	}
	return branch.ID, nil
}
