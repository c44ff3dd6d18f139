// Package api is the HTTP surface: a single POST dispatcher over the reward
// services, plus health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"adwheel/apperr"
	"adwheel/auth"
	"adwheel/models"
	"adwheel/service"

	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 64 << 10

// Handler dispatches parsed request bodies to the workflow services by the
// declared type discriminator.
type Handler struct {
	verifier *auth.Verifier
	users    service.UserService
	ads      service.AdService
	spins    service.SpinService
	payouts  service.WithdrawService
}

func NewHandler(verifier *auth.Verifier, users service.UserService, ads service.AdService, spins service.SpinService, payouts service.WithdrawService) *Handler {
	return &Handler{
		verifier: verifier,
		users:    users,
		ads:      ads,
		spins:    spins,
		payouts:  payouts,
	}
}

type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// userPayload is the client-facing projection of a user row.
type userPayload struct {
	ID              int64   `json:"user_id"`
	Balance         float64 `json:"balance"`
	AdsWatchedToday int     `json:"ads_watched_today"`
	SpinsToday      int     `json:"spins_today"`
	ReferralsCount  int     `json:"referrals_count"`
	IsBanned        bool    `json:"is_banned"`
	RefBy           *int64  `json:"ref_by,omitempty"`
}

func newUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:              u.ID,
		Balance:         u.Balance,
		AdsWatchedToday: u.AdsWatchedToday,
		SpinsToday:      u.SpinsToday,
		ReferralsCount:  u.ReferralsCount,
		IsBanned:        u.IsBanned,
		RefBy:           u.RefBy,
	}
}

// Handle serves POST /api.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.fail(w, "malformed", apperr.Wrap(apperr.Validation, err, "malformed request body"), start)
		return
	}

	data, err := h.dispatch(r.Context(), &req)
	if err != nil {
		h.fail(w, req.Type, err, start)
		return
	}

	writeJSON(w, http.StatusOK, envelope{OK: true, Data: data})
	observe(req.Type, http.StatusOK, start)
}

// authExempt lists the request types trusted without an initData signature.
func authExempt(reqType string) bool {
	return reqType == "commission" || reqType == "generateActionId"
}

func (h *Handler) dispatch(ctx context.Context, req *request) (any, error) {
	if req.Type == "" {
		return nil, apperr.New(apperr.Validation, "missing request type")
	}
	if !authExempt(req.Type) {
		if err := h.verifier.Verify(req.InitData); err != nil {
			return nil, err
		}
	}

	// Commission identifies users through referrer_id/referee_id instead.
	var userID int64
	if req.Type != "commission" {
		var err error
		if userID, err = req.UserID.int64("user_id"); err != nil {
			return nil, err
		}
	}

	switch req.Type {
	case "getUserData":
		user, err := h.users.GetUserData(ctx, userID)
		if err != nil {
			return nil, err
		}
		return newUserPayload(user), nil

	case "register":
		var refBy *int64
		if req.RefBy.isSet() {
			v, err := req.RefBy.int64("ref_by")
			if err != nil {
				return nil, err
			}
			refBy = &v
		}
		res, err := h.users.Register(ctx, userID, refBy)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"already_registered": res.AlreadyRegistered,
			"user":               newUserPayload(res.User),
		}, nil

	case "watchAd":
		res, err := h.ads.WatchAd(ctx, userID, req.ActionID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"new_balance":   res.NewBalance,
			"new_ads_count": res.NewAdsCount,
		}, nil

	case "commission":
		referrerID, err := req.ReferrerID.int64("referrer_id")
		if err != nil {
			return nil, err
		}
		refereeID, err := req.RefereeID.int64("referee_id")
		if err != nil {
			return nil, err
		}
		res, err := h.users.Commission(ctx, referrerID, refereeID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"commission":  res.Amount,
			"new_balance": res.NewBalance,
		}, nil

	case "registerSpin":
		spins, err := h.spins.RegisterSpin(ctx, userID, req.ActionID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"spins_today": spins}, nil

	case "spinResult":
		// action_id here is informational; the spin token was already spent
		// by registerSpin.
		outcome, err := h.spins.SpinResult(ctx, userID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"prize":  outcome.Prize,
			"sector": outcome.Sector,
		}, nil

	case "withdraw":
		amount, err := req.Amount.float64("amount")
		if err != nil {
			return nil, err
		}
		res, err := h.payouts.Withdraw(ctx, userID, req.ActionID, amount, req.BinanceID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"new_balance": res.NewBalance,
			"status":      res.Status,
		}, nil

	case "generateActionId":
		kind, ok := models.ParseActionKind(req.ActionType)
		if !ok {
			return nil, apperr.New(apperr.Validation, "missing or invalid action_type")
		}
		actionID, err := h.users.GenerateAction(ctx, userID, kind)
		if err != nil {
			return nil, err
		}
		return map[string]any{"action_id": actionID}, nil

	default:
		return nil, apperr.New(apperr.Validation, "unknown request type")
	}
}

func (h *Handler) fail(w http.ResponseWriter, reqType string, err error, start time.Time) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	entry := log.WithFields(log.Fields{
		"type":   reqType,
		"status": status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	writeJSON(w, status, envelope{OK: false, Error: apperr.Message(err)})
	observe(reqType, status, start)
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}
