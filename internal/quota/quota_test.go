package quota

import (
	"reflect"
	"testing"
	"time"

	"github.com/shauryatech/notifyctl/internal/model"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func membership(channel string, used, total int, validTill time.Time, status string) model.Membership {
	return model.Membership{
		QuotaUsed:  used,
		QuotaTotal: total,
		ValidTill:  validTill,
		Status:     status,
		Plan:       model.Plan{Channel: channel},
	}
}

func TestCompute_ZeroTotalNoDivision(t *testing.T) {
	t.Parallel()
	u := Compute(membership("sms", 5, 0, now.AddDate(0, 1, 0), "active"), now)
	if u.Percentage != 0 {
		t.Fatalf("percentage with zero total: want 0, got %v", u.Percentage)
	}
}

func TestCompute_ExpiringBoundaries(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		m    model.Membership
		want bool
	}{
		{"exactly 7 days left", membership("sms", 0, 100, now.AddDate(0, 0, 7), "active"), true},
		{"8 days left", membership("sms", 0, 100, now.Add(8*24*time.Hour), "active"), false},
		{"exactly 90 percent", membership("sms", 90, 100, now.AddDate(0, 1, 0), "active"), true},
		{"89 percent", membership("sms", 89, 100, now.AddDate(0, 1, 0), "active"), false},
		{"already past valid till", membership("sms", 0, 100, now.AddDate(0, 0, -1), "active"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compute(tc.m, now).Expiring; got != tc.want {
				t.Fatalf("expiring: want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCompute_DaysRemainingCeil(t *testing.T) {
	t.Parallel()
	// 12 hours out rounds up to a full day
	u := Compute(membership("sms", 0, 100, now.Add(12*time.Hour), "active"), now)
	if u.DaysRemaining != 1 {
		t.Fatalf("want 1 day, got %d", u.DaysRemaining)
	}
}

func TestSummarize_ScenarioQuotaWarning(t *testing.T) {
	t.Parallel()
	ms := []model.Membership{
		membership("sms", 90, 100, now.AddDate(0, 0, 30), "active"),
	}
	s := Summarize(ms, now)
	if s.SMS.Quota != 100 || s.SMS.Used != 90 || s.SMS.Remaining != 10 {
		t.Fatalf("sms totals: %+v", s.SMS)
	}
	// flagged on usage alone, 30 days out
	if s.SMS.Expiring != 1 {
		t.Fatalf("want 1 expiring membership, got %d", s.SMS.Expiring)
	}
	if s.ActivePlans != 1 {
		t.Fatalf("want 1 active plan, got %d", s.ActivePlans)
	}
}

func TestSummarize_EmptyList(t *testing.T) {
	t.Parallel()
	s := Summarize(nil, now)
	if s.SMS != (ChannelTotals{}) || s.WhatsApp != (ChannelTotals{}) {
		t.Fatalf("empty input must yield zero totals: %+v", s)
	}
	if s.ActivePlans != 0 || len(s.UnknownChannel) != 0 {
		t.Fatalf("empty input: %+v", s)
	}
}

func TestSummarize_NegativeRemainingNotClamped(t *testing.T) {
	t.Parallel()
	ms := []model.Membership{
		membership("whatsapp", 150, 100, now.AddDate(0, 1, 0), "active"),
	}
	s := Summarize(ms, now)
	if s.WhatsApp.Remaining != -50 {
		t.Fatalf("remaining must not be clamped: want -50, got %d", s.WhatsApp.Remaining)
	}
}

func TestSummarize_ChannelPartitioning(t *testing.T) {
	t.Parallel()
	unknown := membership("push", 1, 10, now.AddDate(0, 1, 0), "active")
	ms := []model.Membership{
		membership("SMS", 10, 100, now.AddDate(0, 1, 0), "Active"),
		membership("WhatsApp", 20, 200, now.AddDate(0, 1, 0), "expired"),
		unknown,
	}
	s := Summarize(ms, now)
	if s.SMS.Quota != 100 || s.WhatsApp.Quota != 200 {
		t.Fatalf("case-insensitive partitioning failed: %+v", s)
	}
	if len(s.UnknownChannel) != 1 || s.UnknownChannel[0].Plan.Channel != "push" {
		t.Fatalf("unknown channel not surfaced: %+v", s.UnknownChannel)
	}
	// unknown-channel membership still counts toward active plans
	if s.ActivePlans != 2 {
		t.Fatalf("want 2 active plans, got %d", s.ActivePlans)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	t.Parallel()
	ms := []model.Membership{
		membership("sms", 10, 100, now.AddDate(0, 1, 0), "active"),
		membership("whatsapp", 5, 50, now.AddDate(0, 0, 3), "active"),
	}
	a := Summarize(ms, now)
	b := Summarize(ms, now)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("summarize not idempotent:\n%+v\n%+v", a, b)
	}
}
