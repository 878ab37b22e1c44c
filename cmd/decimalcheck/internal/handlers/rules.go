package handlers

import (
	"net/http"

	apperrors "github.com/thalib/decimalcheck/cmd/decimalcheck/internal/errors"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/matcher"
)

// RulesHandler lists the configured rules
type RulesHandler struct {
	rules *matcher.RuleSet
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(rules *matcher.RuleSet) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// RuleInfo describes one named rule
type RuleInfo struct {
	Name             string `json:"name"`
	MaxTotalDigits   int    `json:"max_total_digits"`
	MaxDecimalPlaces *int   `json:"max_decimal_places,omitempty"`
}

// RulesListResponse is the response of GET /rules:list
type RulesListResponse struct {
	Default RuleInfo   `json:"default"`
	Rules   []RuleInfo `json:"rules"`
}

// List handles GET /rules:list
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	resp := RulesListResponse{
		Default: ruleInfo(h.rules.DefaultName(), h.rules.Default()),
		Rules:   []RuleInfo{},
	}

	for _, name := range h.rules.Names() {
		m, err := h.rules.Lookup(name)
		if err != nil {
			continue
		}
		resp.Rules = append(resp.Rules, ruleInfo(name, m))
	}

	apperrors.WriteJSON(w, http.StatusOK, resp)
}

func ruleInfo(name string, m *matcher.DecimalNumberMatcher) RuleInfo {
	cfg := m.Config()
	return RuleInfo{
		Name:             name,
		MaxTotalDigits:   cfg.MaxTotalDigits,
		MaxDecimalPlaces: cfg.MaxDecimalPlaces,
	}
}
