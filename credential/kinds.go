package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vanyastaff/nebula/expirable"
	"github.com/vanyastaff/nebula/secret"
)

// Kind is the per-credential-type contract described in spec §4.5:
// every kind can initialize and validate its state; kinds that expire
// can refresh; kinds that can be rotated implement Rotator.
type Kind interface {
	// Name identifies the kind, e.g. "bearer_token", "oauth2", "api_key".
	Name() string

	// Initialize produces the first State from an opaque input. If
	// input implements SecretResolvable, Manager.Register resolves its
	// secretref: fields via the manager's secret.Resolver before this
	// is called, so Initialize itself always sees plain values.
	Initialize(ctx context.Context, input any) (State, error)

	// Validate probes whether state is still usable. It is invoked both
	// outside of rotation (liveness checks) and during the Validating
	// phase of a rotation.
	Validate(ctx context.Context, state State) error
}

// Refresher is implemented by kinds whose state can be refreshed in
// place without a full rotation (e.g. OAuth2 access tokens via a
// refresh token).
type Refresher interface {
	Refresh(ctx context.Context, state State) (State, error)
}

// Rotator is implemented by kinds that support the Draft→Validating→
// Committed rotation state machine.
type Rotator interface {
	// Rotate mints a new State alongside the existing one; it must not
	// have any externally visible effect until CleanupOld is called.
	Rotate(ctx context.Context, old State) (State, error)

	// CleanupOld tears down the previous version's external resources
	// (e.g. revoking an old token) once a rotation is Committed. It
	// runs best-effort; its error is logged, never surfaced as a
	// rotation failure.
	CleanupOld(ctx context.Context, old State) error
}

// ClassifyFailure maps an error from a kind's Validate call onto the
// FailureClass taxonomy spec §4.5 uses to decide retry vs. rollback.
// Kinds may return an error with a FailureClass() FailureClass method
// to give an exact classification; otherwise a generic heuristic is
// used.
func ClassifyFailure(err error) FailureClass {
	var c interface{ FailureClass() FailureClass }
	if errors.As(err, &c) {
		return c.FailureClass()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case err == nil:
		return FailureUnknown
	default:
		return FailureUnknown
	}
}

// BearerTokenInput is the Initialize input for BearerTokenKind: a
// pre-resolved token string (callers resolve secretref: values via
// secret.Resolver before calling Initialize).
type BearerTokenInput struct {
	Token string
}

// ResolveSecrets resolves a secretref: Token via resolver, implementing
// SecretResolvable so Manager.Register can do this transparently.
func (in BearerTokenInput) ResolveSecrets(ctx context.Context, resolver *secret.Resolver) (any, error) {
	token, err := resolver.ResolveValue(ctx, in.Token)
	if err != nil {
		return nil, fmt.Errorf("bearer_token: resolve token: %w", err)
	}
	return BearerTokenInput{Token: token}, nil
}

// BearerTokenKind is a non-rotatable, non-refreshable credential: a
// static bearer token whose only lifecycle operation is validating
// that it parses as a well-formed, non-expired JWT when one is
// supplied, or is simply non-empty for opaque tokens.
type BearerTokenKind struct{}

func (BearerTokenKind) Name() string { return "bearer_token" }

func (BearerTokenKind) Initialize(_ context.Context, input any) (State, error) {
	in, ok := input.(BearerTokenInput)
	if !ok || in.Token == "" {
		return State{}, fmt.Errorf("bearer_token: input must be a non-empty BearerTokenInput")
	}
	now := time.Now()
	state := State{Kind: "bearer_token", Payload: in.Token, CreatedAt: now, Version: 1}
	if claims, err := parseUnverifiedClaims(in.Token); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			state.ExpiresAt = time.Unix(int64(exp), 0)
		}
	}
	return state, nil
}

func (BearerTokenKind) Validate(_ context.Context, state State) error {
	token, _ := state.Payload.(string)
	if token == "" {
		return fmt.Errorf("bearer_token: empty payload")
	}
	if expirable.Expired(state.ExpiresAt, time.Now()) {
		return fmt.Errorf("bearer_token: expired at %s", state.ExpiresAt)
	}
	return nil
}

// parseUnverifiedClaims reads a JWT's claims without verifying its
// signature, used only to surface an expiry hint for display/rotation
// scheduling purposes — never for authorization decisions.
func parseUnverifiedClaims(token string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// OAuth2Input is the Initialize input for OAuth2Kind.
type OAuth2Input struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ResolveSecrets resolves secretref: AccessToken/RefreshToken values
// via resolver, implementing SecretResolvable. RefreshToken is left
// untouched when empty (it is optional on OAuth2Input).
func (in OAuth2Input) ResolveSecrets(ctx context.Context, resolver *secret.Resolver) (any, error) {
	accessToken, err := resolver.ResolveValue(ctx, in.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("oauth2: resolve access token: %w", err)
	}
	refreshToken := in.RefreshToken
	if refreshToken != "" {
		refreshToken, err = resolver.ResolveValue(ctx, refreshToken)
		if err != nil {
			return nil, fmt.Errorf("oauth2: resolve refresh token: %w", err)
		}
	}
	return OAuth2Input{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresAt: in.ExpiresAt}, nil
}

// oauth2Payload is OAuth2Kind's State.Payload shape.
type oauth2Payload struct {
	AccessToken  string
	RefreshToken string
}

// OAuth2RefreshFunc exchanges a refresh token for a new access token.
// Nebula has no built-in HTTP client dependency for token endpoints
// (per spec §1 Non-goals, no outbound transport is part of the core);
// callers supply their own exchange implementation.
type OAuth2RefreshFunc func(ctx context.Context, refreshToken string) (accessToken string, expiresAt time.Time, err error)

// OAuth2Kind is a refreshable and rotatable credential kind: an access
// token with an optional refresh token. Rotate and Refresh both mint a
// new access token via the supplied exchange function; Rotate is used
// when a scheduled rotation policy fires, Refresh when the access
// token is found to be near expiry outside of an explicit rotation.
type OAuth2Kind struct {
	Exchange OAuth2RefreshFunc
}

func (OAuth2Kind) Name() string { return "oauth2" }

func (k OAuth2Kind) Initialize(_ context.Context, input any) (State, error) {
	in, ok := input.(OAuth2Input)
	if !ok || in.AccessToken == "" {
		return State{}, fmt.Errorf("oauth2: input must be a non-empty OAuth2Input")
	}
	return State{
		Kind:      "oauth2",
		Payload:   oauth2Payload{AccessToken: in.AccessToken, RefreshToken: in.RefreshToken},
		CreatedAt: time.Now(),
		ExpiresAt: in.ExpiresAt,
		Version:   1,
	}, nil
}

func (OAuth2Kind) Validate(_ context.Context, state State) error {
	payload, ok := state.Payload.(oauth2Payload)
	if !ok || payload.AccessToken == "" {
		return fmt.Errorf("oauth2: empty access token")
	}
	if expirable.Expired(state.ExpiresAt, time.Now()) {
		return fmt.Errorf("oauth2: access token expired at %s", state.ExpiresAt)
	}
	return nil
}

func (k OAuth2Kind) Refresh(ctx context.Context, state State) (State, error) {
	return k.exchange(ctx, state)
}

func (k OAuth2Kind) Rotate(ctx context.Context, old State) (State, error) {
	return k.exchange(ctx, old)
}

func (k OAuth2Kind) CleanupOld(_ context.Context, _ State) error {
	// No revocation endpoint is wired into the core (see OAuth2RefreshFunc
	// doc); tearing down the old access token, if desired, is the
	// caller's Exchange implementation's responsibility.
	return nil
}

func (k OAuth2Kind) exchange(ctx context.Context, old State) (State, error) {
	if k.Exchange == nil {
		return State{}, fmt.Errorf("oauth2: no Exchange function configured")
	}
	payload, ok := old.Payload.(oauth2Payload)
	if !ok || payload.RefreshToken == "" {
		return State{}, fmt.Errorf("oauth2: no refresh token available")
	}
	accessToken, expiresAt, err := k.Exchange(ctx, payload.RefreshToken)
	if err != nil {
		return State{}, err
	}
	return State{
		Kind:      "oauth2",
		Payload:   oauth2Payload{AccessToken: accessToken, RefreshToken: payload.RefreshToken},
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		Version:   old.Version + 1,
	}, nil
}
