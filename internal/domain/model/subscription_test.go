package model

import (
	"testing"
	"time"
)

func TestComputeStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	grace := func(exp time.Time) *time.Time {
		g := exp.Add(GraceWindow)
		return &g
	}

	cases := []struct {
		name       string
		sub        *Subscription
		wantStatus SubscriptionStatus
		wantActive bool
		wantGrace  bool
	}{
		{"nil record", nil, SubscriptionStatusExpired, false, false},
		{"zero expiry", &Subscription{AutoRenew: true}, SubscriptionStatusExpired, false, false},
		{
			"running with auto renew",
			&Subscription{ExpiresAt: now.Add(24 * time.Hour), AutoRenew: true},
			SubscriptionStatusActive, true, false,
		},
		{
			"running after soft cancel",
			&Subscription{ExpiresAt: now.Add(24 * time.Hour), AutoRenew: false},
			SubscriptionStatusCanceled, true, false,
		},
		{
			"inside grace window",
			&Subscription{ExpiresAt: now.Add(-24 * time.Hour), GraceUntil: grace(now.Add(-24 * time.Hour)), AutoRenew: true},
			SubscriptionStatusGrace, false, true,
		},
		{
			"past grace window",
			&Subscription{ExpiresAt: now.Add(-31 * 24 * time.Hour), GraceUntil: grace(now.Add(-31 * 24 * time.Hour)), AutoRenew: true},
			SubscriptionStatusExpired, false, false,
		},
		{
			"lapsed with no grace recorded",
			&Subscription{ExpiresAt: now.Add(-time.Hour), AutoRenew: true},
			SubscriptionStatusExpired, false, false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, active, inGrace := ComputeStatus(tc.sub, now)
			if status != tc.wantStatus || active != tc.wantActive || inGrace != tc.wantGrace {
				t.Fatalf("got (%s, %v, %v), want (%s, %v, %v)",
					status, active, inGrace, tc.wantStatus, tc.wantActive, tc.wantGrace)
			}
		})
	}
}

func TestExtend(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	txID := "txn-1"

	t.Run("fresh subscription counts from now", func(t *testing.T) {
		sub := Extend(nil, "u1", "monthly", SourceWeb, 30, &txID, now)
		if want := now.Add(30 * 24 * time.Hour); !sub.ExpiresAt.Equal(want) {
			t.Fatalf("expires %v, want %v", sub.ExpiresAt, want)
		}
		if sub.GraceUntil == nil || !sub.GraceUntil.Equal(sub.ExpiresAt.Add(GraceWindow)) {
			t.Fatalf("grace until %v", sub.GraceUntil)
		}
		if !sub.AutoRenew || sub.Status != SubscriptionStatusActive {
			t.Fatalf("unexpected state %+v", sub)
		}
	})

	t.Run("running subscription stacks on its expiry", func(t *testing.T) {
		existing := &Subscription{
			ID: "s1", UserID: "u1", PlanCode: "monthly", Source: SourceWeb,
			StartedAt: now.Add(-20 * 24 * time.Hour),
			ExpiresAt: now.Add(10 * 24 * time.Hour),
			AutoRenew: true,
		}
		sub := Extend(existing, "u1", "monthly", SourcePromo, 30, &txID, now)
		if want := now.Add(40 * 24 * time.Hour); !sub.ExpiresAt.Equal(want) {
			t.Fatalf("expires %v, want %v (10 remaining + 30 added)", sub.ExpiresAt, want)
		}
		if !sub.StartedAt.Equal(existing.StartedAt) {
			t.Fatal("original start date must be preserved")
		}
	})

	t.Run("lapsed subscription counts from now", func(t *testing.T) {
		existing := &Subscription{
			ID: "s1", UserID: "u1", PlanCode: "monthly", Source: SourceWeb,
			StartedAt: now.Add(-90 * 24 * time.Hour),
			ExpiresAt: now.Add(-30 * 24 * time.Hour),
		}
		sub := Extend(existing, "u1", "monthly", SourceWeb, 30, &txID, now)
		if want := now.Add(30 * 24 * time.Hour); !sub.ExpiresAt.Equal(want) {
			t.Fatalf("expires %v, want %v", sub.ExpiresAt, want)
		}
		if !sub.StartedAt.Equal(now) {
			t.Fatal("a lapsed subscription restarts its start date")
		}
	})

	t.Run("extension re-enables auto renew", func(t *testing.T) {
		existing := &Subscription{
			ID: "s1", UserID: "u1", PlanCode: "monthly", Source: SourceWeb,
			StartedAt: now.Add(-10 * 24 * time.Hour),
			ExpiresAt: now.Add(5 * 24 * time.Hour),
			AutoRenew: false,
			Status:    SubscriptionStatusCanceled,
		}
		sub := Extend(existing, "u1", "monthly", SourceWeb, 30, &txID, now)
		if !sub.AutoRenew || sub.Status != SubscriptionStatusActive {
			t.Fatalf("expected re-enabled auto renew, got %+v", sub)
		}
	})
}

func TestComputeEntitlement(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no record", func(t *testing.T) {
		ent := ComputeEntitlement(nil, now)
		if ent.CanDownload || ent.IsPremium || ent.InGrace {
			t.Fatalf("expected empty entitlement, got %+v", ent)
		}
	})

	t.Run("premium", func(t *testing.T) {
		ent := ComputeEntitlement(&Subscription{ExpiresAt: now.Add(time.Hour)}, now)
		if !ent.IsPremium || !ent.CanDownload || ent.InGrace {
			t.Fatalf("expected premium download, got %+v", ent)
		}
	})

	t.Run("grace", func(t *testing.T) {
		g := now.Add(time.Hour)
		ent := ComputeEntitlement(&Subscription{ExpiresAt: now.Add(-time.Hour), GraceUntil: &g}, now)
		if ent.IsPremium || !ent.InGrace || !ent.CanDownload {
			t.Fatalf("expected grace download, got %+v", ent)
		}
	})
}
