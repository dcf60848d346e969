package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/testutil"
)

func TestPostLogRepository_RecordSubmission(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	accounts := NewAccountRepository(db)
	logs := NewPostLogRepository(db)
	ctx := context.Background()
	a := newAccount(t, accounts, "poster@example.com")

	scheduled := time.Now().Add(time.Hour).Truncate(time.Second)
	l := &post.Log{
		AccountID:      a.ID,
		Content:        "hello",
		Platforms:      []account.Platform{account.PlatformX, account.PlatformFacebook, account.PlatformInstagram},
		ExternalPostID: "late_1",
		Status:         post.StatusScheduled,
		ScheduledAt:    &scheduled,
		MediaURLs:      []string{"https://cdn.test/a.png"},
	}
	if err := logs.RecordSubmission(ctx, l); err != nil {
		t.Fatalf("RecordSubmission() error = %v", err)
	}
	if l.ID == 0 {
		t.Error("RecordSubmission() did not set log ID")
	}

	got, _ := accounts.GetByID(ctx, a.ID)
	if got.PostsUsed != 3 {
		t.Errorf("PostsUsed = %d, want 3", got.PostsUsed)
	}

	list, total, err := logs.ListByAccount(ctx, a.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByAccount() error = %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("ListByAccount() = %d rows, total %d", len(list), total)
	}
	if len(list[0].Platforms) != 3 || list[0].MediaURLs[0] != "https://cdn.test/a.png" {
		t.Errorf("ListByAccount()[0] = %+v", list[0])
	}
	if list[0].ScheduledAt == nil || !list[0].ScheduledAt.Equal(scheduled) {
		t.Errorf("ScheduledAt = %v, want %v", list[0].ScheduledAt, scheduled)
	}
}

func TestPostLogRepository_RecordSubmission_RollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	logs := NewPostLogRepository(db)
	ctx := context.Background()

	// no such account: the increment touches zero rows
	db.Exec("PRAGMA foreign_keys=OFF;")
	err := logs.RecordSubmission(ctx, &post.Log{
		AccountID:      404,
		Content:        "orphan",
		Platforms:      []account.Platform{account.PlatformX},
		ExternalPostID: "late_x",
		Status:         post.StatusScheduled,
	})
	if err == nil {
		t.Fatal("RecordSubmission() error = nil, want error")
	}

	var n int
	db.QueryRow("SELECT COUNT(*) FROM post_logs").Scan(&n)
	if n != 0 {
		t.Errorf("post_logs has %d rows after rollback, want 0", n)
	}
}

func TestPostLogRepository_ListByAccount_Pagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	accounts := NewAccountRepository(db)
	logs := NewPostLogRepository(db)
	ctx := context.Background()
	a := newAccount(t, accounts, "many@example.com")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		l := &post.Log{
			AccountID:      a.ID,
			Content:        "post",
			Platforms:      []account.Platform{account.PlatformX},
			ExternalPostID: "late",
			Status:         post.StatusPublished,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := logs.RecordSubmission(ctx, l); err != nil {
			t.Fatalf("RecordSubmission() error = %v", err)
		}
	}

	page, total, err := logs.ListByAccount(ctx, a.ID, 2, 1)
	if err != nil {
		t.Fatalf("ListByAccount() error = %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("ListByAccount() = %d rows, total %d, want 2/5", len(page), total)
	}
	if !page[0].CreatedAt.After(page[1].CreatedAt) {
		t.Error("ListByAccount() not newest first")
	}

	n, err := logs.CountSince(ctx, a.ID, base.Add(3*time.Minute).Truncate(time.Second))
	if err != nil || n != 2 {
		t.Errorf("CountSince() = %d, %v, want 2", n, err)
	}
}
