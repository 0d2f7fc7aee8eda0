package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/arenaforge/tournament-engine/models"
	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context")
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	claim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", jwtClaimUserID)
	}

	// Numeric claims arrive as float64 after JSON decoding; some
	// issuers encode ids as strings.
	switch v := claim.(type) {
	case float64:
		if v != float64(int(v)) || int(v) <= 0 {
			return 0, fmt.Errorf("invalid user id in %q claim: %v", jwtClaimUserID, v)
		}
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid user id in %q claim: %q", jwtClaimUserID, v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("unexpected type %T for %q claim", claim, jwtClaimUserID)
	}
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", fmt.Errorf("missing or malformed %q claim in token", jwtClaimRole)
	}

	role := models.UserRole(roleStr)
	switch role {
	case models.UserRoleAdmin, models.UserRoleHost, models.UserRolePlayer:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}
