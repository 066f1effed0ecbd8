package model

import "time"

// ForceChannel is a channel every user must be a member of before any link
// resolves. The set is global, never per-link.
type ForceChannel struct {
	ChannelID  int64
	InviteLink string
	Title      string
	Username   string
	// Verifiable records whether the bot could query membership for this
	// channel when it was configured.
	Verifiable bool
	AddedBy    int64
	AddedAt    time.Time
}

// MembershipStatus is the three-valued outcome of one membership query.
// Unknown covers query failure, timeout, and missing bot permission; policy
// treats anything but Member as a deny.
type MembershipStatus int

const (
	MembershipUnknown MembershipStatus = iota
	MembershipMember
	MembershipNotMember
)

func (s MembershipStatus) String() string {
	switch s {
	case MembershipMember:
		return "member"
	case MembershipNotMember:
		return "not_member"
	default:
		return "unknown"
	}
}
