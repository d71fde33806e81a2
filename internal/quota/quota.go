// Package quota derives per-channel usage and expiry metrics from membership
// records. It is purely functional: callers recompute whenever the membership
// list changes.
package quota

import (
	"math"
	"strings"
	"time"

	"github.com/shauryatech/notifyctl/internal/model"
)

// Warning thresholds for the expiring flag. Both boundaries are inclusive.
const (
	ExpiryWarningDays   = 7
	UsageWarningPercent = 90.0
)

// Usage holds the derived metrics for a single membership.
type Usage struct {
	Percentage    float64 // used/total*100; 0 when total is 0
	DaysRemaining int     // ceil of time until ValidTill, in days
	Expiring      bool
}

// Compute derives the usage metrics for one membership as of now.
func Compute(m model.Membership, now time.Time) Usage {
	var u Usage
	if m.QuotaTotal > 0 {
		u.Percentage = float64(m.QuotaUsed) / float64(m.QuotaTotal) * 100
	}
	u.DaysRemaining = int(math.Ceil(m.ValidTill.Sub(now).Hours() / 24))
	u.Expiring = u.DaysRemaining <= ExpiryWarningDays || u.Percentage >= UsageWarningPercent
	return u
}

// ChannelTotals aggregates quota across all memberships of one channel.
// Remaining is not clamped: overconsumption shows up as a negative value.
type ChannelTotals struct {
	Quota     int
	Used      int
	Remaining int
	Expiring  int // memberships flagged expiring
}

func (t *ChannelTotals) add(m model.Membership, now time.Time) {
	t.Quota += m.QuotaTotal
	t.Used += m.QuotaUsed
	t.Remaining = t.Quota - t.Used
	if Compute(m, now).Expiring {
		t.Expiring++
	}
}

// Summary is the dashboard view over a client's memberships.
type Summary struct {
	SMS      ChannelTotals
	WhatsApp ChannelTotals

	// ActivePlans counts memberships with status "active" (case-insensitive),
	// regardless of channel.
	ActivePlans int

	// UnknownChannel collects memberships whose plan channel is neither sms
	// nor whatsapp. They are excluded from both channel totals; callers
	// decide whether to log or display them.
	UnknownChannel []model.Membership
}

// Summarize partitions memberships by the embedded plan's channel
// (case-insensitive) and totals quota per channel.
func Summarize(memberships []model.Membership, now time.Time) Summary {
	var s Summary
	for _, m := range memberships {
		switch strings.ToLower(m.Plan.Channel) {
		case model.ChannelSMS:
			s.SMS.add(m, now)
		case model.ChannelWhatsApp:
			s.WhatsApp.add(m, now)
		default:
			s.UnknownChannel = append(s.UnknownChannel, m)
		}
		if strings.EqualFold(m.Status, model.StatusActive) {
			s.ActivePlans++
		}
	}
	return s
}
