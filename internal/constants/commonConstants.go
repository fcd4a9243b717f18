package constants

type (
	EventStatus string
	MealPolicy  string
	MealTier    string
	CachePrefix string
	APIStatus   string
)

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"

	MealPolicyNone       MealPolicy = "none"
	MealPolicyFree       MealPolicy = "free"
	MealPolicyPaidShared MealPolicy = "paid_shared"

	// MealTierNone is "attending without the meal". The other tiers carry
	// the event's meal policy value verbatim.
	MealTierNone       MealTier = "none"
	MealTierFree       MealTier = "free"
	MealTierPaidShared MealTier = "paid_shared"

	CachePrefixActiveEvents CachePrefix = "EVENTS_ACTIVE"
	CachePrefixReminderSent CachePrefix = "REMINDER_SENT_"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// ServesMeal reports whether attendees may choose to join the meal.
func (p MealPolicy) ServesMeal() bool {
	return p == MealPolicyFree || p == MealPolicyPaidShared
}

// Label is the Portuguese description shown in summaries.
func (p MealPolicy) Label() string {
	switch p {
	case MealPolicyFree:
		return "Sim (gratuito)"
	case MealPolicyPaidShared:
		return "Sim (pago / dividido)"
	default:
		return "Não"
	}
}

// ParseMealPolicy accepts the stored values only.
func ParseMealPolicy(v string) (MealPolicy, bool) {
	switch MealPolicy(v) {
	case MealPolicyNone, MealPolicyFree, MealPolicyPaidShared:
		return MealPolicy(v), true
	}
	return "", false
}

// WithMeal reports whether the attendee joins the meal.
func (t MealTier) WithMeal() bool {
	return t == MealTierFree || t == MealTierPaidShared
}

// Label is the Portuguese description shown in attendee lists.
func (t MealTier) Label() string {
	switch t {
	case MealTierFree:
		return "com ágape (gratuito)"
	case MealTierPaidShared:
		return "com ágape (pago)"
	default:
		return "sem ágape"
	}
}

// AllowedBy reports whether tier t can be recorded for an event with policy p.
func (t MealTier) AllowedBy(p MealPolicy) bool {
	if t == MealTierNone {
		return true
	}
	return p.ServesMeal() && string(t) == string(p)
}
