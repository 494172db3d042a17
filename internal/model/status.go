package model

// DateRule records which date resolution branch produced a sale date.
type DateRule string

// Date resolution rules.
const (
	DateRuleMissing          DateRule = "missing"
	DateRuleClaimedEqMsgDate DateRule = "claimed_eq_msgdate"
	DateRuleNextDayMorning   DateRule = "next_day_morning_keep_claimed"
	DateRuleClaimFarOff      DateRule = "claim_far_off_use_msgdate"
	DateRuleSmallMismatch    DateRule = "small_mismatch_keep_claimed"
)

// AllDateRules lists every DateRule in a stable order.
var AllDateRules = []DateRule{
	DateRuleMissing,
	DateRuleClaimedEqMsgDate,
	DateRuleNextDayMorning,
	DateRuleClaimFarOff,
	DateRuleSmallMismatch,
}

// SubmissionStatus classifies how timely a submission was.
type SubmissionStatus string

// Submission statuses.
const (
	SubmissionUnknown SubmissionStatus = "unknown"
	SubmissionOnTime  SubmissionStatus = "on_time"
	SubmissionLate    SubmissionStatus = "late"
	SubmissionNextDay SubmissionStatus = "next_day"
	SubmissionOther   SubmissionStatus = "other"
)

// AllSubmissionStatuses lists every SubmissionStatus in a stable order.
var AllSubmissionStatuses = []SubmissionStatus{
	SubmissionOnTime,
	SubmissionLate,
	SubmissionNextDay,
	SubmissionOther,
	SubmissionUnknown,
}

// ParseStatus summarizes which numeric fields failed extraction.
type ParseStatus string

// Parse statuses.
const (
	ParsedOK       ParseStatus = "parsed_ok"
	MissingUnits   ParseStatus = "missing_units"
	MissingRevenue ParseStatus = "missing_revenue"
	MissingBoth    ParseStatus = "missing_both"
)

// AllParseStatuses lists every ParseStatus in a stable order.
var AllParseStatuses = []ParseStatus{
	ParsedOK,
	MissingUnits,
	MissingRevenue,
	MissingBoth,
}

// ParseStatusFor derives the parse status from field nullness.
// A record missing both fields is missing_both, never one of the single-field statuses.
func ParseStatusFor(units *int, revenue *float64) ParseStatus {
	switch {
	case units == nil && revenue == nil:
		return MissingBoth
	case revenue == nil:
		return MissingRevenue
	case units == nil:
		return MissingUnits
	default:
		return ParsedOK
	}
}
