// Package gift classifies gift-subscription user notices and decides whether
// they are addressed to the configured recipient. Classification is pure:
// no I/O, no state beyond the configured recipient login.
package gift

import "strings"

// Tag keys carried on a USERNOTICE for gifted subscriptions.
const (
	paramRecipientUserName    = "msg-param-recipient-user-name"
	paramRecipientDisplayName = "msg-param-recipient-display-name"
	paramSubPlan              = "msg-param-sub-plan"
	paramSubPlanName          = "msg-param-sub-plan-name"
)

// Kind is the recognized class of a gift notice.
type Kind int

const (
	KindUnknown Kind = iota
	KindSubGift
	KindAnonSubGift
)

func (k Kind) String() string {
	switch k {
	case KindSubGift:
		return "sub gift"
	case KindAnonSubGift:
		return "anonymous sub gift"
	default:
		return "unknown"
	}
}

// KindOf maps the raw msg-id of a user notice to a Kind. Anything other than
// the two recognized gift ids is KindUnknown.
func KindOf(msgID string) Kind {
	switch msgID {
	case "subgift":
		return KindSubGift
	case "anonsubgift":
		return KindAnonSubGift
	default:
		return KindUnknown
	}
}

// Plan is the subscription tier of a gifted sub.
type Plan int

const (
	PlanUnknown Plan = iota
	PlanPrime
	PlanTier1
	PlanTier2
	PlanTier3
)

func (p Plan) String() string {
	switch p {
	case PlanPrime:
		return "prime"
	case PlanTier1:
		return "tier1"
	case PlanTier2:
		return "tier2"
	case PlanTier3:
		return "tier3"
	default:
		return "unknown"
	}
}

// PlanOf maps the raw msg-param-sub-plan tag value to a Plan.
func PlanOf(raw string) Plan {
	switch raw {
	case "Prime":
		return PlanPrime
	case "1000":
		return PlanTier1
	case "2000":
		return PlanTier2
	case "3000":
		return PlanTier3
	default:
		return PlanUnknown
	}
}

// NormalizePlanName turns the IRCv3-escaped plan label into display text.
// Spaces arrive as the literal two characters `\s`; an absent label maps to
// "unknown".
func NormalizePlanName(raw string) string {
	if raw == "" {
		return "unknown"
	}
	return strings.ReplaceAll(raw, `\s`, " ")
}

// Notice is the transient view of one inbound USERNOTICE. It lives only for
// the duration of handling that message.
type Notice struct {
	Channel     string
	Login       string
	DisplayName string
	MsgID       string
	Params      map[string]string
}

// Sender returns the display identity of the gifter, falling back to the
// login name and finally "anonymous" for anonymous gifts.
func (n Notice) Sender() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	if n.Login != "" {
		return n.Login
	}
	return "anonymous"
}

// Recipient returns the intended recipient login and whether the notice
// carried one at all.
func (n Notice) Recipient() (string, bool) {
	r, ok := n.Params[paramRecipientUserName]
	return r, ok
}

// RecipientDisplay returns the recipient's display name, or "unknown" when
// the tag is absent.
func (n Notice) RecipientDisplay() string {
	if d, ok := n.Params[paramRecipientDisplayName]; ok && d != "" {
		return d
	}
	return "unknown"
}

// Kind classifies the notice's msg-id.
func (n Notice) Kind() Kind { return KindOf(n.MsgID) }

// Plan classifies the notice's subscription tier.
func (n Notice) Plan() Plan { return PlanOf(n.Params[paramSubPlan]) }

// PlanName returns the normalized free-text plan label.
func (n Notice) PlanName() string { return NormalizePlanName(n.Params[paramSubPlanName]) }

// Watcher filters notices for one recipient login.
type Watcher struct {
	// Recipient is the login the session farms gifts for. Matching is exact;
	// Twitch logins are lowercase so no folding is applied.
	Recipient string
}

// Relevant reports whether the notice is a gift addressed to the watched
// recipient. Notices without a recipient tag are never relevant, whatever
// their other fields say.
func (w Watcher) Relevant(n Notice) bool {
	r, ok := n.Recipient()
	return ok && r == w.Recipient
}
