// Package policy decides whether an account may spend quota on a post.
// It reads only the account snapshot it is given.
package policy

import (
	"fmt"

	"github.com/pulsesocial/pulse/internal/domain/account"
)

// Reason says why a request was denied.
type Reason string

// Denial reasons. An empty Reason means the request is allowed.
const (
	ReasonNone   Reason = ""
	ReasonLocked Reason = "locked"
	ReasonQuota  Reason = "quota"
	ReasonAddon  Reason = "addon"
)

// Decision is the result of Evaluate.
type Decision struct {
	Reason Reason

	// Set for quota denials and allowed requests
	PostsUsed  int
	PostsLimit int
	Cost       int

	// Set for add-on denials
	MissingAddon account.Addon
	Platform     account.Platform
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Reason == ReasonNone
}

// Message is the user-facing explanation of a denial.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonLocked:
		return "Your account is locked. Upgrade your plan to continue posting."
	case ReasonQuota:
		return fmt.Sprintf("Monthly post limit reached (%d/%d). Upgrade your plan to post more.", d.PostsUsed, d.PostsLimit)
	case ReasonAddon:
		return fmt.Sprintf("Posting to %s requires the %s add-on.", d.Platform, d.MissingAddon)
	default:
		return ""
	}
}

// RequiredAddons returns the add-ons a request to platforms would use, in
// canonical platform order.
func RequiredAddons(platforms []account.Platform) []account.Addon {
	var out []account.Addon
	seen := make(map[account.Addon]bool)
	for _, p := range account.SortPlatforms(platforms) {
		if a, ok := account.RequiredAddon(p); ok && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

// Evaluate decides whether acct may post to platforms. Checks run in a
// fixed order: lock, then quota, then add-ons. Cost is one unit per
// distinct platform.
func Evaluate(acct *account.Account, platforms []account.Platform) Decision {
	if acct.IsLocked {
		return Decision{Reason: ReasonLocked}
	}

	ordered := account.SortPlatforms(platforms)
	limit := acct.Limit()
	cost := len(ordered)

	if acct.PostsUsed+cost > limit {
		return Decision{
			Reason:     ReasonQuota,
			PostsUsed:  acct.PostsUsed,
			PostsLimit: limit,
			Cost:       cost,
		}
	}

	for _, p := range ordered {
		addon, gated := account.RequiredAddon(p)
		if gated && !acct.Addons.Has(addon) {
			return Decision{
				Reason:       ReasonAddon,
				MissingAddon: addon,
				Platform:     p,
			}
		}
	}

	return Decision{
		PostsUsed:  acct.PostsUsed,
		PostsLimit: limit,
		Cost:       cost,
	}
}
