package handler

import (
	"net/http"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/access"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Autenticação
// ============================================================

func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func authLogoutHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := authSvc.Logout(ctx, SessionFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type meResponse struct {
	Session       *domain.Session      `json:"session"`
	Capabilities  *domain.Capabilities `json:"capabilities"`
	EditablePages map[access.Page]bool `json:"editablePages"`
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		pages := make(map[access.Page]bool, len(access.Pages))
		for _, p := range access.Pages {
			pages[p] = access.CanEdit(sess.Role, sess.Sector, p)
		}
		writeJSON(w, http.StatusOK, meResponse{
			Session:       sess,
			Capabilities:  access.Capabilities(sess.Role, sess.Sector),
			EditablePages: pages,
		})
	}
}

func canEditPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := access.ParsePage(r.URL.Query().Get("page"))
		if !ok {
			writeError(w, http.StatusBadRequest, "página desconhecida")
			return
		}
		sess := SessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"page":    page,
			"canEdit": access.CanEdit(sess.Role, sess.Sector, page),
		})
	}
}
