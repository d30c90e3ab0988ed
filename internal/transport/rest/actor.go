package rest

import (
	"net/http"

	"github.com/verityhq/dealdesk-backend/internal/domain"
	"github.com/verityhq/dealdesk-backend/internal/service/review"
	"github.com/verityhq/dealdesk-backend/pkg/ctxutil"
)

// identityFrom builds the explicit identity passed into every mutating
// service call. The actor comes from the X-Actor-* headers; absent headers
// mean a system action. Request metadata comes from the middleware context.
func identityFrom(r *http.Request) review.Identity {
	ident := review.Identity{
		Actor: domain.Actor{
			Name:  r.Header.Get("X-Actor-Name"),
			Email: r.Header.Get("X-Actor-Email"),
		},
	}
	if meta, ok := ctxutil.RequestMetaFromCtx(r.Context()); ok {
		ident.Request = &domain.RequestContext{
			IP:        meta.IP,
			UserAgent: meta.UserAgent,
		}
	}
	return ident
}
