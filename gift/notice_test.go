package gift

import "testing"

func TestKindOf(t *testing.T) {
	tests := []struct {
		msgID string
		want  Kind
	}{
		{"subgift", KindSubGift},
		{"anonsubgift", KindAnonSubGift},
		{"submysterygift", KindUnknown},
		{"resub", KindUnknown},
		{"SUBGIFT", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.msgID); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.msgID, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := KindSubGift.String(); got != "sub gift" {
		t.Errorf("KindSubGift = %q", got)
	}
	if got := KindAnonSubGift.String(); got != "anonymous sub gift" {
		t.Errorf("KindAnonSubGift = %q", got)
	}
	if got := KindUnknown.String(); got != "unknown" {
		t.Errorf("KindUnknown = %q", got)
	}
}

func TestPlanOf(t *testing.T) {
	tests := []struct {
		raw  string
		want Plan
	}{
		{"Prime", PlanPrime},
		{"1000", PlanTier1},
		{"2000", PlanTier2},
		{"3000", PlanTier3},
		{"prime", PlanUnknown},
		{"4000", PlanUnknown},
		{"", PlanUnknown},
	}
	for _, tt := range tests {
		if got := PlanOf(tt.raw); got != tt.want {
			t.Errorf("PlanOf(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizePlanName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`foo\sbar`, "foo bar"},
		{`Channel\sSubscription\s(xqc)`, "Channel Subscription (xqc)"},
		{"plain", "plain"},
		{"", "unknown"},
		{`\s`, " "},
	}
	for _, tt := range tests {
		if got := NormalizePlanName(tt.raw); got != tt.want {
			t.Errorf("NormalizePlanName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNoticeSenderFallback(t *testing.T) {
	tests := []struct {
		name   string
		notice Notice
		want   string
	}{
		{"display name preferred", Notice{DisplayName: "Gifty", Login: "gifty"}, "Gifty"},
		{"login fallback", Notice{Login: "gifty"}, "gifty"},
		{"anonymous fallback", Notice{}, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.notice.Sender(); got != tt.want {
				t.Errorf("Sender() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWatcherRelevant(t *testing.T) {
	w := Watcher{Recipient: "farmer"}

	tests := []struct {
		name   string
		params map[string]string
		want   bool
	}{
		{
			name:   "addressed to recipient",
			params: map[string]string{"msg-param-recipient-user-name": "farmer"},
			want:   true,
		},
		{
			name:   "addressed to someone else",
			params: map[string]string{"msg-param-recipient-user-name": "other"},
			want:   false,
		},
		{
			name:   "case-only difference is not a match",
			params: map[string]string{"msg-param-recipient-user-name": "Farmer"},
			want:   false,
		},
		{
			name:   "no recipient tag at all",
			params: map[string]string{"msg-param-sub-plan": "1000"},
			want:   false,
		},
		{
			name:   "nil params",
			params: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notice{Channel: "somechannel", MsgID: "subgift", Params: tt.params}
			if got := w.Relevant(n); got != tt.want {
				t.Errorf("Relevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNoticeAccessors(t *testing.T) {
	n := Notice{
		Channel: "somechannel",
		MsgID:   "anonsubgift",
		Params: map[string]string{
			"msg-param-recipient-user-name":    "farmer",
			"msg-param-recipient-display-name": "Farmer",
			"msg-param-sub-plan":               "2000",
			"msg-param-sub-plan-name":          `Tier\s2\sSub`,
		},
	}

	if n.Kind() != KindAnonSubGift {
		t.Errorf("Kind() = %v", n.Kind())
	}
	if n.Plan() != PlanTier2 {
		t.Errorf("Plan() = %v", n.Plan())
	}
	if got := n.PlanName(); got != "Tier 2 Sub" {
		t.Errorf("PlanName() = %q", got)
	}
	if got := n.RecipientDisplay(); got != "Farmer" {
		t.Errorf("RecipientDisplay() = %q", got)
	}

	// absent plan label must not abort handling; it maps to a placeholder
	delete(n.Params, "msg-param-sub-plan-name")
	if got := n.PlanName(); got != "unknown" {
		t.Errorf("PlanName() with absent label = %q, want %q", got, "unknown")
	}

	delete(n.Params, "msg-param-recipient-display-name")
	if got := n.RecipientDisplay(); got != "unknown" {
		t.Errorf("RecipientDisplay() with absent tag = %q", got)
	}
}
