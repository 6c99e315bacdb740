package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/server/records"
	"github.com/inkwell-app/inkwell/internal/server/users"
	"github.com/inkwell-app/inkwell/internal/wire"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req wire.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.userService.Authenticate(r.Context(), req.UserHash, req.VerificationToken, req.DeviceID, req.DeviceName)
	if err != nil {
		s.writeAuthError(r.Context(), w, err, &wire.RegisterResponse{})
		return
	}

	writeJSON(w, http.StatusOK, &wire.RegisterResponse{
		Success: true,
		UserID:  res.UserID,
		IsNew:   res.IsNew,
	})
}

func (s *Server) handleSyncBatch(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.SyncRequest
		if !s.decode(w, r, &req) {
			return
		}

		auth, err := s.authenticate(r, req.UserHash, req.VerificationToken)
		if err != nil {
			s.writeAuthError(r.Context(), w, err, &wire.SyncResponse{})
			return
		}

		res, err := s.recordsService.SyncBatch(r.Context(), auth.UserID, kind, req.Entries, req.LastSyncAt)
		if err != nil {
			s.logger.Error(r.Context(), "sync batch failed", "kind", kind, "error", err)
			writeJSON(w, http.StatusInternalServerError, &wire.SyncResponse{Error: wire.CodeInternal})
			return
		}

		writeJSON(w, http.StatusOK, &wire.SyncResponse{
			Success:    true,
			Pushed:     res.Pushed,
			Pulled:     len(res.Records),
			Entries:    res.Records,
			ServerTime: res.ServerTime,
		})
	}
}

func (s *Server) handleSyncOne(w http.ResponseWriter, r *http.Request) {
	var req wire.SingleSyncRequest
	if !s.decode(w, r, &req) {
		return
	}

	auth, err := s.authenticate(r, req.UserHash, req.VerificationToken)
	if err != nil {
		s.writeAuthError(r.Context(), w, err, &wire.SingleSyncResponse{})
		return
	}

	synced, err := s.recordsService.SyncOne(r.Context(), auth.UserID, records.KindEntry, req.Entry)
	if err != nil {
		s.logger.Error(r.Context(), "single sync failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, &wire.SingleSyncResponse{Error: wire.CodeInternal})
		return
	}

	writeJSON(w, http.StatusOK, &wire.SingleSyncResponse{Success: true, Synced: synced})
}

// decode unmarshals and validates the request body, answering 400 itself
// when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": wire.CodeInvalidRequest})
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": wire.CodeInvalidRequest})
		return false
	}
	return true
}

func (s *Server) authenticate(r *http.Request, userHash, token string) (*users.AuthResult, error) {
	// An unknown hash on a sync route means a typo'd account, not a signup.
	return s.userService.Verify(r.Context(), userHash, token)
}

// writeAuthError maps service errors to the wire error codes. The envelope
// shape differs per route, so the caller passes the zero response value.
func (s *Server) writeAuthError(ctx context.Context, w http.ResponseWriter, err error, resp any) {
	var (
		status = http.StatusInternalServerError
		code   = wire.CodeInternal
	)
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, wire.CodeInvalidCredentials
	case errors.Is(err, common.ErrAccountLocked):
		status, code = http.StatusForbidden, wire.CodeAccountLocked
	case errors.Is(err, common.ErrUserNotFound):
		status, code = http.StatusNotFound, wire.CodeUserNotFound
	default:
		s.logger.Error(ctx, "authentication failed", "error", err)
	}

	switch v := resp.(type) {
	case *wire.RegisterResponse:
		v.Error = code
		writeJSON(w, status, v)
	case *wire.SyncResponse:
		v.Error = code
		writeJSON(w, status, v)
	case *wire.SingleSyncResponse:
		v.Error = code
		writeJSON(w, status, v)
	default:
		writeJSON(w, status, map[string]any{"success": false, "error": code})
	}
}
