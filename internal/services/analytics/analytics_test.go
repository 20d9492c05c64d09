package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	"github.com/yungbote/trustlens-backend/internal/data/repos/testutil"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
)

func TestHistogram(t *testing.T) {
	got := Histogram([]float64{0, 0.19, 0.2, 0.5, 0.79, 0.8, 1})
	want := []int64{2, 1, 1, 1, 2}
	if len(got) != 5 {
		t.Fatalf("buckets: %d", len(got))
	}
	for i := range want {
		if got[i].Count != want[i] {
			t.Fatalf("bucket %s: got=%d want=%d", got[i].Bucket, got[i].Count, want[i])
		}
	}
	if got[4].Bucket != "80-100" {
		t.Fatalf("bucket label: %s", got[4].Bucket)
	}
}

func TestDailyCounts(t *testing.T) {
	start := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
	}
	got := DailyCounts(stamps, start, 7)
	if got[0].Date != "2024-03-01" || got[0].Analyses != 2 {
		t.Fatalf("day 0: %+v", got[0])
	}
	if got[6].Date != "2024-03-07" || got[6].Analyses != 1 {
		t.Fatalf("day 6: %+v", got[6])
	}
	var total int64
	for _, d := range got {
		total += d.Analyses
	}
	if total != 3 {
		t.Fatalf("out-of-range stamps counted: total=%d", total)
	}
}

func TestReport(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "a@example.com")
	repo := repos.NewHistoryRepo(db, log)

	now := time.Now().UTC()
	items := []*review.HistoryItem{
		{UserID: u.ID, Timestamp: now, ReviewText: "x", ProductOrService: "p", Platform: review.PlatformAmazon, TrustScore: 0.9, PredictedLabel: review.LabelGenuine, Explanation: "e"},
		{UserID: u.ID, Timestamp: now.Add(-24 * time.Hour), ReviewText: "x", ProductOrService: "p", Platform: review.PlatformAmazon, TrustScore: 0.1, PredictedLabel: review.LabelFake, Explanation: "e"},
		{UserID: u.ID, Timestamp: now.Add(-30 * 24 * time.Hour), ReviewText: "x", ProductOrService: "p", Platform: review.PlatformAmazon, TrustScore: 0.6, PredictedLabel: review.LabelGenuine, Explanation: "e"},
	}
	if _, err := repo.Create(dbctx.Context{Ctx: ctx}, items); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rep, err := NewService(log, repo).Report(ctx)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.Classification.Genuine != 2 || rep.Classification.Fake != 1 {
		t.Fatalf("classification: %+v", rep.Classification)
	}
	if len(rep.Usage) != 7 || rep.Usage[6].Date != now.Format("2006-01-02") || rep.Usage[6].Analyses != 1 {
		t.Fatalf("usage: %+v", rep.Usage)
	}
	var histTotal int64
	for _, b := range rep.Credibility {
		histTotal += b.Count
	}
	if histTotal != 3 {
		t.Fatalf("histogram total: %d", histTotal)
	}
}
