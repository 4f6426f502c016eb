package handler

import (
	"net/http"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Gestão de usuários - /v1/users e /v1/functions/*
// ============================================================

func listUsersHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users")
		defer span.End()

		users, err := svc.List(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if users == nil {
			users = []domain.UserAccount{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func createUserHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/functions/create-user")
		defer span.End()

		var req domain.CreateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		user, err := svc.Create(ctx, SessionFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.UserFunctionResponse{Success: true, User: user})
	}
}

func updateUserHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/functions/update-user")
		defer span.End()

		var req domain.UpdateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		user, err := svc.Update(ctx, SessionFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.UserFunctionResponse{Success: true, User: user})
	}
}

func deleteUserHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/functions/delete-user")
		defer span.End()

		var req domain.DeleteUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := svc.Delete(ctx, SessionFromContext(ctx), req.UserID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.UserFunctionResponse{Success: true, Message: "usuário removido"})
	}
}

func resetPasswordHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/functions/reset-password")
		defer span.End()

		var req domain.ResetPasswordRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := svc.ResetPassword(ctx, SessionFromContext(ctx), &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.UserFunctionResponse{Success: true, Message: "senha redefinida"})
	}
}
