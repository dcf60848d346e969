package account

import (
	"encoding/json"
	"sort"
	"time"
)

// Account is the entitlement record of one user: plan tier, active add-ons,
// usage counters and the external references tying it to the payment and
// posting providers.
type Account struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Name         *string `json:"name,omitempty"`
	PasswordHash string  `json:"-"`

	Plan      Plan     `json:"plan"`
	Addons    AddonSet `json:"addons"`
	PostsUsed int      `json:"posts_used"`
	IsLocked  bool     `json:"is_locked"`

	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`

	BillingSubscriptionID *string    `json:"billing_subscription_id,omitempty"`
	BillingCustomerID     *string    `json:"billing_customer_id,omitempty"`
	BillingPriceID        *string    `json:"billing_price_id,omitempty"`
	BillingPeriodEnd      *time.Time `json:"billing_period_end,omitempty"`

	ExternalProfileID *string `json:"external_profile_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Limit returns the monthly quota of the account's plan.
func (a *Account) Limit() int {
	return QuotaFor(a.Plan)
}

// HasSubscription reports whether a paid subscription is attached.
func (a *Account) HasSubscription() bool {
	return a.BillingSubscriptionID != nil && *a.BillingSubscriptionID != ""
}

// HasProfile reports whether onboarding with the posting provider is done.
func (a *Account) HasProfile() bool {
	return a.ExternalProfileID != nil && *a.ExternalProfileID != ""
}

// Plan is a subscription tier.
type Plan string

// Plans
const (
	PlanFree       Plan = "free"
	PlanEssentials Plan = "essentials"
	PlanPro        Plan = "pro"
	PlanBusiness   Plan = "business"
)

// UnboundedQuota stands in for "no limit" so quota arithmetic stays total.
const UnboundedQuota = 999999

var planQuotas = map[Plan]int{
	PlanFree:       10,
	PlanEssentials: 100,
	PlanPro:        500,
	PlanBusiness:   UnboundedQuota,
}

// FreeLimit is the quota of the free tier. Downgrades and the trial sweep
// lock accounts whose usage exceeds it.
var FreeLimit = planQuotas[PlanFree]

// QuotaFor returns the monthly post quota of plan. Unknown plans get the
// free quota.
func QuotaFor(plan Plan) int {
	if q, ok := planQuotas[plan]; ok {
		return q
	}
	return FreeLimit
}

// ParsePlan returns the plan named s and whether it is known.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(s)
	_, ok := planQuotas[p]
	return p, ok
}

// PaidPlans lists the plans that can be bought, cheapest first.
func PaidPlans() []Plan {
	return []Plan{PlanEssentials, PlanPro, PlanBusiness}
}

// Addon is an optional paid capability.
type Addon string

// Add-ons
const (
	AddonReddit    Addon = "reddit"
	AddonLinkedIn  Addon = "linkedin"
	AddonAnalytics Addon = "analytics"
)

// Addons lists every add-on in catalogue order.
func Addons() []Addon {
	return []Addon{AddonReddit, AddonLinkedIn, AddonAnalytics}
}

// ParseAddon returns the add-on named s and whether it is known.
func ParseAddon(s string) (Addon, bool) {
	for _, a := range Addons() {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// AddonSet is a set of add-ons. The zero value is empty and usable.
type AddonSet map[Addon]struct{}

// NewAddonSet builds a set from the given add-ons.
func NewAddonSet(addons ...Addon) AddonSet {
	s := make(AddonSet, len(addons))
	for _, a := range addons {
		s[a] = struct{}{}
	}
	return s
}

// Has reports whether a is in the set.
func (s AddonSet) Has(a Addon) bool {
	_, ok := s[a]
	return ok
}

// Slice returns the add-ons in catalogue order.
func (s AddonSet) Slice() []Addon {
	out := make([]Addon, 0, len(s))
	for _, a := range Addons() {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	// keep unknown values visible rather than dropping them
	var extra []string
	for a := range s {
		if _, known := ParseAddon(string(a)); !known {
			extra = append(extra, string(a))
		}
	}
	sort.Strings(extra)
	for _, e := range extra {
		out = append(out, Addon(e))
	}
	return out
}

// Strings returns the add-ons as strings in catalogue order.
func (s AddonSet) Strings() []string {
	addons := s.Slice()
	out := make([]string, len(addons))
	for i, a := range addons {
		out[i] = string(a)
	}
	return out
}

// MarshalJSON encodes the set as an ordered array.
func (s AddonSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of add-on names. null decodes to an empty set.
func (s *AddonSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(AddonSet, len(names))
	for _, n := range names {
		set[Addon(n)] = struct{}{}
	}
	*s = set
	return nil
}

// ParseAddonSet keeps the known add-ons among names and drops the rest.
func ParseAddonSet(names []string) AddonSet {
	s := make(AddonSet, len(names))
	for _, n := range names {
		if a, ok := ParseAddon(n); ok {
			s[a] = struct{}{}
		}
	}
	return s
}

// Platform identifies a social network the posting provider publishes to.
type Platform string

// Platforms
const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformX         Platform = "x"
	PlatformFacebook  Platform = "facebook"
	PlatformYouTube   Platform = "youtube"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformThreads   Platform = "threads"
	PlatformPinterest Platform = "pinterest"
	PlatformReddit    Platform = "reddit"
	PlatformBluesky   Platform = "bluesky"
)

// Platforms returns the canonical platform order.
func Platforms() []Platform {
	return []Platform{
		PlatformInstagram,
		PlatformTikTok,
		PlatformX,
		PlatformFacebook,
		PlatformYouTube,
		PlatformLinkedIn,
		PlatformThreads,
		PlatformPinterest,
		PlatformReddit,
		PlatformBluesky,
	}
}

var gatedPlatforms = map[Platform]Addon{
	PlatformReddit:   AddonReddit,
	PlatformLinkedIn: AddonLinkedIn,
}

// RequiredAddon returns the add-on gating p, if any.
func RequiredAddon(p Platform) (Addon, bool) {
	a, ok := gatedPlatforms[p]
	return a, ok
}

// ParsePlatform returns the platform named s and whether it is known.
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range Platforms() {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// SortPlatforms returns the distinct entries of ps in canonical order.
// Unknown platforms sort after known ones, alphabetically.
func SortPlatforms(ps []Platform) []Platform {
	rank := make(map[Platform]int, len(Platforms()))
	for i, p := range Platforms() {
		rank[p] = i
	}
	seen := make(map[Platform]struct{}, len(ps))
	out := make([]Platform, 0, len(ps))
	for _, p := range ps {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, iKnown := rank[out[i]]
		rj, jKnown := rank[out[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// UsageStats summarises quota consumption for display.
type UsageStats struct {
	PostsUsed       int        `json:"posts_used"`
	PostsLimit      int        `json:"posts_limit"`
	PercentageUsed  int        `json:"percentage_used"`
	PostsLast30Days int64      `json:"posts_last_30_days"`
	IsLocked        bool       `json:"is_locked"`
	TrialEndsAt     *time.Time `json:"trial_ends_at,omitempty"`
}

// ActivityWindow is the rolling window behind UsageStats.PostsLast30Days.
const ActivityWindow = 30 * 24 * time.Hour
