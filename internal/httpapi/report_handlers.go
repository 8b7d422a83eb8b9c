package httpapi

import (
	"net/http"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/achievement"
)

type reportSummary struct {
	Accounts       int            `json:"accounts"`
	AccountsByRole map[string]int `json:"accounts_by_role"`
	Schools        int            `json:"schools"`
	Submissions    map[string]int `json:"submissions"`
	ApprovedPoints int            `json:"approved_points"`
}

// handleReportsSummary serves the aggregate moderation overview for roles
// holding the view-reports capability.
func (a *API) handleReportsSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor, ok := a.requireAccount(w, r)
	if !ok {
		return
	}
	if !actor.Role.Can(account.CapViewReports) {
		writeError(w, r, http.StatusForbidden, "reports access requires a directing role")
		return
	}

	accs, err := a.accounts.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	recs, err := a.achievements.List(r.Context(), actor)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	sum := reportSummary{
		Accounts:       len(accs),
		AccountsByRole: make(map[string]int),
		Submissions: map[string]int{
			string(achievement.StatusPending):  0,
			string(achievement.StatusApproved): 0,
			string(achievement.StatusRejected): 0,
		},
	}
	schools := make(map[string]struct{})
	for _, acc := range accs {
		sum.AccountsByRole[string(acc.Role)]++
		if acc.School != "" {
			schools[acc.School] = struct{}{}
		}
	}
	sum.Schools = len(schools)
	for _, rec := range recs {
		sum.Submissions[string(rec.Status)]++
		if rec.Status == achievement.StatusApproved {
			sum.ApprovedPoints += rec.Points
		}
	}
	writeJSON(w, http.StatusOK, sum)
}
