// Package leaderboard derives teacher and school rankings from approved
// achievement points. Rankings are computed on demand from current data,
// never cached or incrementally maintained.
package leaderboard

import (
	"context"
	"math"
	"sort"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/achievement"
)

// AccountLister supplies the accounts to rank.
type AccountLister interface {
	List(ctx context.Context) ([]*account.Account, error)
}

// ApprovedLister supplies only approved records; pending and rejected
// records never contribute points.
type ApprovedLister interface {
	ListApproved(ctx context.Context) ([]*achievement.Record, error)
}

// TeacherScore is one leaderboard row. Accounts with no approved records
// appear with a zero score.
type TeacherScore struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	School    string `json:"school"`
	Score     int    `json:"score"`
}

// SchoolScore aggregates teachers sharing a school value.
type SchoolScore struct {
	School   string  `json:"school"`
	Total    int     `json:"total"`
	Teachers int     `json:"teachers"`
	Average  float64 `json:"average"`
}

// Board is a complete leaderboard snapshot.
type Board struct {
	Teachers []TeacherScore `json:"teachers"`
	Schools  []SchoolScore  `json:"schools"`
}

// Aggregator computes leaderboards.
type Aggregator struct {
	accounts AccountLister
	records  ApprovedLister
}

// NewAggregator wires the aggregator to its data sources.
func NewAggregator(accounts AccountLister, records ApprovedLister) *Aggregator {
	return &Aggregator{accounts: accounts, records: records}
}

// Compute builds the board: teachers sorted by score descending, schools by
// average descending. Ties keep the order accounts were fetched in.
func (a *Aggregator) Compute(ctx context.Context) (*Board, error) {
	accs, err := a.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := a.records.ListApproved(ctx)
	if err != nil {
		return nil, err
	}

	points := make(map[string]int, len(accs))
	for _, rec := range recs {
		points[rec.OwnerID] += rec.Points
	}

	teachers := make([]TeacherScore, 0, len(accs))
	for _, acc := range accs {
		teachers = append(teachers, TeacherScore{
			AccountID: acc.ID,
			Name:      acc.Name(),
			School:    acc.School,
			Score:     points[acc.ID],
		})
	}

	bySchool := make(map[string]*SchoolScore)
	var schoolOrder []string
	for _, t := range teachers {
		s, ok := bySchool[t.School]
		if !ok {
			s = &SchoolScore{School: t.School}
			bySchool[t.School] = s
			schoolOrder = append(schoolOrder, t.School)
		}
		s.Total += t.Score
		s.Teachers++
	}
	schools := make([]SchoolScore, 0, len(schoolOrder))
	for _, name := range schoolOrder {
		s := bySchool[name]
		if s.Teachers > 0 {
			s.Average = math.Round(float64(s.Total)/float64(s.Teachers)*100) / 100
		}
		schools = append(schools, *s)
	}

	sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Score > teachers[j].Score })
	sort.SliceStable(schools, func(i, j int) bool { return schools[i].Average > schools[j].Average })

	return &Board{Teachers: teachers, Schools: schools}, nil
}
