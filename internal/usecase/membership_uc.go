// File: internal/usecase/membership_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/adapter"
	"telegram-file-gate/internal/domain/ports/repository"
	"telegram-file-gate/internal/infra/logging"
	"telegram-file-gate/internal/infra/metrics"
)

// Compile-time check
var _ MembershipUseCase = (*membershipUC)(nil)

// MembershipUseCase verifies force-channel membership. One external call per
// required channel per resolution; results are never cached, since
// membership can change between requests.
type MembershipUseCase interface {
	// CheckAll queries every configured force channel and returns the ones
	// the user does not verifiably belong to. Fail-closed: a query error or
	// timeout counts as missing. ok is true iff missing is empty.
	CheckAll(ctx context.Context, userID int64) (ok bool, missing []*model.ForceChannel, err error)
	// VerifyChannelAdmin reports whether userID administers channelID,
	// fail-closed on query errors.
	VerifyChannelAdmin(ctx context.Context, channelID, userID int64) bool
}

type membershipUC struct {
	channels repository.ChannelRepository
	member   adapter.MembershipAdapter
	timeout  time.Duration // per-channel call budget
	log      *zerolog.Logger
}

func NewMembershipUseCase(channels repository.ChannelRepository, member adapter.MembershipAdapter, timeout time.Duration, logger *zerolog.Logger) *membershipUC {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &membershipUC{channels: channels, member: member, timeout: timeout, log: logger}
}

type channelResult struct {
	idx    int
	status model.MembershipStatus
}

func (u *membershipUC) CheckAll(ctx context.Context, userID int64) (bool, []*model.ForceChannel, error) {
	defer logging.TraceDuration(u.log, "MembershipUC.CheckAll")()

	channels, err := u.channels.ListAll(ctx, repository.NoTX)
	if err != nil {
		return false, nil, err
	}
	if len(channels) == 0 {
		return true, nil, nil
	}

	// Fan out one verification call per channel. Each call gets its own
	// timeout; non-completion maps to Unknown.
	results := make(chan channelResult, len(channels))
	for i, ch := range channels {
		go func(i int, channelID int64) {
			callCtx, cancel := context.WithTimeout(ctx, u.timeout)
			defer cancel()
			status, err := u.member.ChatMember(callCtx, channelID, userID)
			if err != nil {
				status = model.MembershipUnknown
			}
			metrics.IncMembershipCheck(status.String())
			results <- channelResult{idx: i, status: status}
		}(i, ch.ChannelID)
	}

	statuses := make([]model.MembershipStatus, len(channels))
	for range channels {
		select {
		case r := <-results:
			statuses[r.idx] = r.status
		case <-ctx.Done():
			// Abandoned resolution: in-flight calls complete on their own
			// timeout and their results are discarded.
			return false, nil, ctx.Err()
		}
	}
	// Report misses in configuration order so the caller can present every
	// join link at once, deterministically.
	var missing []*model.ForceChannel
	for i, st := range statuses {
		if st != model.MembershipMember {
			missing = append(missing, channels[i])
		}
	}
	if len(missing) > 0 {
		u.log.Debug().Int64("user", userID).Int("missing", len(missing)).Msg("force-join check failed")
		return false, missing, nil
	}
	return true, nil, nil
}

func (u *membershipUC) VerifyChannelAdmin(ctx context.Context, channelID, userID int64) bool {
	callCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	ok, err := u.member.IsChannelAdmin(callCtx, channelID, userID)
	if err != nil {
		u.log.Warn().Err(err).Int64("channel", channelID).Msg("channel admin check failed")
		return false
	}
	return ok
}
