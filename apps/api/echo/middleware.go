package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core/farm"
)

// revokedMiddleware rejects tokens whose id was revoked by a logout.
func revokedMiddleware(svc *farm.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			revoked, err := svc.IsTokenRevoked(claims.Id)
			if err != nil {
				return errors.Wrap(err, "checking token revocation")
			}
			if revoked {
				return errTokenRevoked
			}
			return next(ctx)
		}
	}
}

// classMiddleware only lets class tokens through to their own class.
func classMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			id, err := pathID(ctx, "id")
			if err != nil {
				return err
			}
			if claims.Role == farm.RoleAdmin || claims.ClassID != id {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// writerMiddleware rejects guests on mutating endpoints.
func writerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != farm.RoleStudent {
				return errGuestReadOnly
			}
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == farm.RoleAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
