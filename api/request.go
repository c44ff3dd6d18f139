package api

import (
	"strconv"
	"strings"

	"adwheel/apperr"
)

// request is the single-endpoint body. Which fields matter depends on Type.
type request struct {
	Type       string  `json:"type"`
	UserID     numeric `json:"user_id"`
	InitData   string  `json:"initData"`
	ActionID   string  `json:"action_id"`
	RefBy      numeric `json:"ref_by"`
	Amount     numeric `json:"amount"`
	BinanceID  string  `json:"binanceId"`
	ReferrerID numeric `json:"referrer_id"`
	RefereeID  numeric `json:"referee_id"`
	ActionType string  `json:"action_type"`
}

// numeric accepts a JSON number or a quoted string holding one. Mini-app
// clients send ids both ways.
type numeric string

func (n *numeric) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*n = numeric(strings.TrimSpace(s))
	return nil
}

func (n numeric) isSet() bool { return n != "" }

func (n numeric) int64(field string) (int64, error) {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.Validation, "missing or invalid "+field)
	}
	return v, nil
}

func (n numeric) float64(field string) (float64, error) {
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, apperr.New(apperr.Validation, "missing or invalid "+field)
	}
	return v, nil
}
