package controllers

import (
	"net/http"

	"github.com/ortnersoft/crm-backend/api/middleware"
	"github.com/ortnersoft/crm-backend/api/responses"
	"github.com/ortnersoft/crm-backend/internal/insights"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/logger"
)

// Dashboard returns the aggregated CRM dashboard for the caller's role.
func Dashboard(svc insights.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "insights service unavailable"))
			return
		}

		dashboard, err := svc.Dashboard(r.Context(), middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}
