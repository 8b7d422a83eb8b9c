package leaderboard

import (
	"context"
	"testing"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/achievement"
	"ustazhub.kz/internal/scoring"
)

func seedAccount(t *testing.T, store *account.InMemory, id, school string) {
	t.Helper()
	err := store.Create(context.Background(), &account.Account{
		ID:       id,
		Username: id,
		Role:     account.RoleTeacher,
		School:   school,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
}

func seedRecord(t *testing.T, store *achievement.InMemory, owner string, points int, status achievement.Status) {
	t.Helper()
	rec := &achievement.Record{
		OwnerID: owner,
		Classification: scoring.Classification{
			Type:     scoring.TypeStudentResult,
			Category: scoring.CategoryOlympiad,
		},
		Title:  "seed",
		Points: points,
		Status: achievement.StatusPending,
	}
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	if status != achievement.StatusPending {
		if err := store.UpdateStatus(context.Background(), rec.ID, status); err != nil {
			t.Fatalf("set status: %v", err)
		}
	}
}

func TestComputeOnlyApprovedPointsCount(t *testing.T) {
	accounts := account.NewInMemory()
	records := achievement.NewInMemory()
	seedAccount(t, accounts, "a", "School 1")
	seedAccount(t, accounts, "b", "School 1")

	seedRecord(t, records, "a", 45, achievement.StatusApproved)
	seedRecord(t, records, "b", 50, achievement.StatusPending)
	seedRecord(t, records, "b", 40, achievement.StatusRejected)

	board, err := NewAggregator(accounts, records).Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(board.Teachers) != 2 {
		t.Fatalf("teachers = %d, want 2", len(board.Teachers))
	}
	if board.Teachers[0].AccountID != "a" || board.Teachers[0].Score != 45 {
		t.Fatalf("top row = %+v, want a with 45", board.Teachers[0])
	}
	if board.Teachers[1].AccountID != "b" || board.Teachers[1].Score != 0 {
		t.Fatalf("second row = %+v, want b with 0", board.Teachers[1])
	}
}

func TestComputeSchoolAverages(t *testing.T) {
	accounts := account.NewInMemory()
	records := achievement.NewInMemory()
	seedAccount(t, accounts, "a", "School 1")
	seedAccount(t, accounts, "b", "School 1")
	seedAccount(t, accounts, "c", "School 2")

	seedRecord(t, records, "a", 35, achievement.StatusApproved)
	seedRecord(t, records, "b", 10, achievement.StatusApproved)
	seedRecord(t, records, "c", 25, achievement.StatusApproved)

	board, err := NewAggregator(accounts, records).Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(board.Schools) != 2 {
		t.Fatalf("schools = %d, want 2", len(board.Schools))
	}
	// School 2 averages 25, School 1 averages 22.5
	if board.Schools[0].School != "School 2" || board.Schools[0].Average != 25 {
		t.Fatalf("top school = %+v", board.Schools[0])
	}
	if board.Schools[1].School != "School 1" || board.Schools[1].Average != 22.5 {
		t.Fatalf("second school = %+v", board.Schools[1])
	}
	if board.Schools[1].Total != 45 || board.Schools[1].Teachers != 2 {
		t.Fatalf("school 1 aggregate = %+v", board.Schools[1])
	}
}

func TestComputeAverageRounding(t *testing.T) {
	accounts := account.NewInMemory()
	records := achievement.NewInMemory()
	seedAccount(t, accounts, "a", "School 1")
	seedAccount(t, accounts, "b", "School 1")
	seedAccount(t, accounts, "c", "School 1")

	seedRecord(t, records, "a", 10, achievement.StatusApproved)
	seedRecord(t, records, "b", 10, achievement.StatusApproved)
	seedRecord(t, records, "c", 15, achievement.StatusApproved)

	board, err := NewAggregator(accounts, records).Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// 35/3 rounds to 11.67
	if got := board.Schools[0].Average; got != 11.67 {
		t.Fatalf("average = %v, want 11.67", got)
	}
}

func TestComputeStableTieOrder(t *testing.T) {
	accounts := account.NewInMemory()
	records := achievement.NewInMemory()
	seedAccount(t, accounts, "first", "School 1")
	seedAccount(t, accounts, "second", "School 2")

	seedRecord(t, records, "first", 20, achievement.StatusApproved)
	seedRecord(t, records, "second", 20, achievement.StatusApproved)

	board, err := NewAggregator(accounts, records).Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if board.Teachers[0].AccountID != "first" || board.Teachers[1].AccountID != "second" {
		t.Fatalf("tie order changed: %+v", board.Teachers)
	}
}
