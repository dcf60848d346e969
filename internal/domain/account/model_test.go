package account

import (
	"encoding/json"
	"testing"
)

func TestQuotaFor(t *testing.T) {
	tests := []struct {
		plan Plan
		want int
	}{
		{PlanFree, 10},
		{PlanEssentials, 100},
		{PlanPro, 500},
		{PlanBusiness, UnboundedQuota},
		{Plan("legacy"), 10},
	}

	for _, tt := range tests {
		if got := QuotaFor(tt.plan); got != tt.want {
			t.Errorf("QuotaFor(%q) = %d, want %d", tt.plan, got, tt.want)
		}
	}
	if FreeLimit != QuotaFor(PlanFree) {
		t.Errorf("FreeLimit = %d, want %d", FreeLimit, QuotaFor(PlanFree))
	}
}

func TestAddonSet_JSON(t *testing.T) {
	set := NewAddonSet(AddonAnalytics, AddonReddit)

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["reddit","analytics"]` {
		t.Errorf("Marshal() = %s, want catalogue order", data)
	}

	var empty AddonSet
	data, _ = json.Marshal(empty)
	if string(data) != `[]` {
		t.Errorf("Marshal(nil set) = %s, want []", data)
	}

	var decoded AddonSet
	if err := json.Unmarshal([]byte(`null`), &decoded); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Errorf("Unmarshal(null) = %v, want empty set", decoded)
	}
}

func TestSortPlatforms(t *testing.T) {
	got := SortPlatforms([]Platform{PlatformReddit, "mastodon", PlatformInstagram, PlatformReddit, PlatformX})
	want := []Platform{PlatformInstagram, PlatformX, PlatformReddit, "mastodon"}

	if len(got) != len(want) {
		t.Fatalf("SortPlatforms() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortPlatforms()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseAddonSet_DropsUnknown(t *testing.T) {
	set := ParseAddonSet([]string{"reddit", "tiktok", "analytics"})
	if !set.Has(AddonReddit) || !set.Has(AddonAnalytics) || len(set) != 2 {
		t.Errorf("ParseAddonSet() = %v", set.Strings())
	}
}
