package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands.
// Methods that answer a chat return strings so the Telegram adapter just
// forwards them; the deep-link resolution path returns the raw decision
// because delivery is the adapter's job.
type BotFacade struct {
	UserUC     usecase.UserUseCase
	AccessUC   usecase.AccessUseCase
	RegistryUC usecase.RegistryUseCase
	LinkUC     usecase.LinkUseCase
	SessionUC  usecase.SessionUseCase
	TokenUC    usecase.TokenUseCase
	LedgerUC   usecase.EntitlementUseCase
	ChannelUC  usecase.ChannelUseCase
	SettingsUC usecase.SettingsUseCase
	StatsUC    usecase.StatsUseCase
	BroadcastUC usecase.BroadcastUseCase

	// BotUsername builds t.me deep links for freshly minted codes.
	BotUsername string
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	accessUC usecase.AccessUseCase,
	registryUC usecase.RegistryUseCase,
	linkUC usecase.LinkUseCase,
	sessionUC usecase.SessionUseCase,
	tokenUC usecase.TokenUseCase,
	ledgerUC usecase.EntitlementUseCase,
	channelUC usecase.ChannelUseCase,
	settingsUC usecase.SettingsUseCase,
	statsUC usecase.StatsUseCase,
	broadcastUC usecase.BroadcastUseCase,
	botUsername string,
) *BotFacade {
	return &BotFacade{
		UserUC:      userUC,
		AccessUC:    accessUC,
		RegistryUC:  registryUC,
		LinkUC:      linkUC,
		SessionUC:   sessionUC,
		TokenUC:     tokenUC,
		LedgerUC:    ledgerUC,
		ChannelUC:   channelUC,
		SettingsUC:  settingsUC,
		StatsUC:     statsUC,
		BroadcastUC: broadcastUC,
		BotUsername: botUsername,
	}
}

// DeepLink renders the shareable start URL for a code.
func (b *BotFacade) DeepLink(code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", b.BotUsername, code)
}

func (b *BotFacade) linkPairText(normal, premium string) string {
	return fmt.Sprintf("Link: %s\nPremium link: %s", b.DeepLink(normal), b.DeepLink(premium))
}

// HandleStart registers or refreshes the user and returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, firstName, username string) (string, error) {
	u, err := b.UserUC.RegisterOrFetch(ctx, tgID, firstName, username)
	if err != nil {
		return "", fmt.Errorf("register/fetch user: %w", err)
	}
	name := u.FirstName
	if name == "" {
		name = u.Username
	}
	return fmt.Sprintf("Hello %s!\nSend me a link you received to get its content.", name), nil
}

// ResolveAccess runs the deep-link decision for a start payload. The caller
// registers the user first so the entitlement ledger has a row to consult.
func (b *BotFacade) ResolveAccess(ctx context.Context, code string, tgID int64, firstName, username string) (*usecase.Decision, error) {
	if _, err := b.UserUC.RegisterOrFetch(ctx, tgID, firstName, username); err != nil {
		return nil, fmt.Errorf("register/fetch user: %w", err)
	}
	return b.AccessUC.Resolve(ctx, code, tgID)
}

// MarkDelivered bumps the usage counters after the adapter finished sending.
func (b *BotFacade) MarkDelivered(ctx context.Context, code string) error {
	return b.RegistryUC.MarkUsed(ctx, code)
}

// Caption returns the operator caption template, "" when unset.
func (b *BotFacade) Caption(ctx context.Context) (string, error) {
	return b.SettingsUC.Caption(ctx)
}

// AutoDelete returns the delete-after interval, 0 when disabled.
func (b *BotFacade) AutoDelete(ctx context.Context) (time.Duration, error) {
	return b.SettingsUC.AutoDelete(ctx)
}

// IsStaff reports whether tgID may use admin commands.
func (b *BotFacade) IsStaff(ctx context.Context, tgID int64) (bool, error) {
	return b.LedgerUC.IsStaff(ctx, tgID)
}

// IsOwner reports whether tgID is the configured owner.
func (b *BotFacade) IsOwner(tgID int64) bool {
	return b.LedgerUC.IsOwner(tgID)
}

// HandleAdminFile ingests a file an admin sent. When the admin has an open
// custom-batch session the file joins the session; otherwise a code pair is
// minted for it immediately.
func (b *BotFacade) HandleAdminFile(ctx context.Context, adminID int64, tgFileID, uniqueID string, kind model.FileKind, name string) (string, error) {
	fileID, err := b.LinkUC.IngestFile(ctx, tgFileID, uniqueID, kind, name, adminID)
	if err != nil {
		return "", fmt.Errorf("ingest file: %w", err)
	}

	n, err := b.SessionUC.Append(ctx, adminID, fileID)
	switch {
	case err == nil:
		return fmt.Sprintf("Added to batch (%d so far). Send more files, or press Generate.", n), nil
	case errors.Is(err, domain.ErrNoActiveSession):
		// No session open; mint a standalone pair.
	default:
		return "", fmt.Errorf("append to session: %w", err)
	}

	normal, premium, err := b.LinkUC.MintFilePair(ctx, fileID, adminID)
	if err != nil {
		return "", fmt.Errorf("mint link pair: %w", err)
	}
	return b.linkPairText(normal, premium), nil
}

// HandleBatch mints a code pair for a contiguous channel post range.
// Usage: /batch <channel_id> <first_post_id> <last_post_id>
func (b *BotFacade) HandleBatch(ctx context.Context, adminID, channelID int64, startID, endID int) (string, error) {
	normal, premium, total, err := b.LinkUC.MintRangePair(ctx, adminID, channelID, startID, endID)
	switch {
	case errors.Is(err, domain.ErrNotChannelAdmin):
		return "You must be an admin of that channel to link its posts.", nil
	case errors.Is(err, domain.ErrRangeInvalid):
		return "The last post id must not be smaller than the first.", nil
	case errors.Is(err, domain.ErrRangeTooLarge):
		return "That range covers too many posts.", nil
	case err != nil:
		return "", fmt.Errorf("mint range pair: %w", err)
	}
	return fmt.Sprintf("Linked %d post(s).\n%s", total, b.linkPairText(normal, premium)), nil
}

// HandleCustomBatchStart opens (or restarts) the admin's staging session.
func (b *BotFacade) HandleCustomBatchStart(ctx context.Context, adminID int64) (string, error) {
	if err := b.SessionUC.Start(ctx, adminID); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return "Batch mode on. Send me the files one by one, then press Generate.", nil
}

// HandleCustomBatchDone freezes the session into a batch and mints its pair.
func (b *BotFacade) HandleCustomBatchDone(ctx context.Context, adminID int64) (string, error) {
	normal, premium, count, err := b.SessionUC.Finalize(ctx, adminID)
	switch {
	case errors.Is(err, domain.ErrNoActiveSession):
		return "No batch in progress. Start one with /custombatch.", nil
	case errors.Is(err, domain.ErrEmptySession):
		return "The batch is empty. Send at least one file first.", nil
	case err != nil:
		return "", fmt.Errorf("finalize session: %w", err)
	}
	return fmt.Sprintf("Batch of %d file(s) ready.\n%s", count, b.linkPairText(normal, premium)), nil
}

// HandleCustomBatchCancel drops the staging session.
func (b *BotFacade) HandleCustomBatchCancel(ctx context.Context, adminID int64) (string, error) {
	if err := b.SessionUC.Cancel(ctx, adminID); err != nil {
		return "", fmt.Errorf("cancel session: %w", err)
	}
	return "Batch cancelled.", nil
}

// HandleAddAdmin promotes a user. Owner only; enforced by the route table.
func (b *BotFacade) HandleAddAdmin(ctx context.Context, targetID int64) (string, error) {
	if err := b.LedgerUC.AddAdmin(ctx, targetID); err != nil {
		return "", fmt.Errorf("add admin: %w", err)
	}
	return fmt.Sprintf("User %d is now an admin.", targetID), nil
}

func (b *BotFacade) HandleRemoveAdmin(ctx context.Context, targetID int64) (string, error) {
	err := b.LedgerUC.RemoveAdmin(ctx, targetID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("User %d is not known.", targetID), nil
	case err != nil:
		return "", fmt.Errorf("remove admin: %w", err)
	}
	return fmt.Sprintf("User %d is no longer an admin.", targetID), nil
}

// HandleAddPremium grants premium time directly, stacking on any remainder.
func (b *BotFacade) HandleAddPremium(ctx context.Context, targetID int64, d time.Duration) (string, error) {
	until, err := b.LedgerUC.Grant(ctx, targetID, d)
	if err != nil {
		return "", fmt.Errorf("grant premium: %w", err)
	}
	return fmt.Sprintf("User %d has premium until %s.", targetID, until.Format(time.RFC1123)), nil
}

func (b *BotFacade) HandleRemovePremium(ctx context.Context, targetID int64) (string, error) {
	err := b.LedgerUC.Revoke(ctx, targetID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("User %d is not known.", targetID), nil
	case err != nil:
		return "", fmt.Errorf("revoke premium: %w", err)
	}
	return fmt.Sprintf("Premium removed for user %d.", targetID), nil
}

// HandleGenCode issues one-time redemption tokens.
func (b *BotFacade) HandleGenCode(ctx context.Context, creatorID int64, count int) (string, error) {
	tokens, err := b.TokenUC.Issue(ctx, creatorID, count)
	if err != nil {
		return "", fmt.Errorf("issue tokens: %w", err)
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Generated %d code(s). Each grants premium once:\n", len(tokens)))
	for _, t := range tokens {
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// HandleRedeem consumes a token for the calling user.
func (b *BotFacade) HandleRedeem(ctx context.Context, userID int64, token string) (string, error) {
	until, err := b.TokenUC.Redeem(ctx, token, userID)
	switch {
	case errors.Is(err, domain.ErrTokenNotFound):
		return "That code does not exist.", nil
	case errors.Is(err, domain.ErrTokenAlreadyUsed):
		return "That code has already been used.", nil
	case err != nil:
		return "", fmt.Errorf("redeem: %w", err)
	}
	return fmt.Sprintf("Premium activated until %s. Enjoy!", until.Format(time.RFC1123)), nil
}

// HandleForceChannelAdd registers a required channel.
func (b *BotFacade) HandleForceChannelAdd(ctx context.Context, adminID, channelID int64, inviteLink, title, username string) (string, error) {
	verifiable, err := b.ChannelUC.Add(ctx, channelID, inviteLink, title, username, adminID)
	if err != nil {
		return "", fmt.Errorf("add force channel: %w", err)
	}
	if !verifiable {
		return fmt.Sprintf("Channel %d added, but I cannot read its member list. Make me an admin there or every link will stay locked.", channelID), nil
	}
	return fmt.Sprintf("Channel %d added. Users must join it before opening links.", channelID), nil
}

func (b *BotFacade) HandleForceChannelRemove(ctx context.Context, channelID int64) (string, error) {
	err := b.ChannelUC.Remove(ctx, channelID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("Channel %d is not in the list.", channelID), nil
	case err != nil:
		return "", fmt.Errorf("remove force channel: %w", err)
	}
	return fmt.Sprintf("Channel %d removed.", channelID), nil
}

func (b *BotFacade) HandleForceChannelList(ctx context.Context) (string, error) {
	chs, err := b.ChannelUC.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list force channels: %w", err)
	}
	if len(chs) == 0 {
		return "No required channels configured.", nil
	}
	sb := strings.Builder{}
	sb.WriteString("Required channels:\n")
	for _, ch := range chs {
		label := ch.Title
		if label == "" {
			label = fmt.Sprintf("%d", ch.ChannelID)
		}
		if ch.Verifiable {
			sb.WriteString(fmt.Sprintf("- %s (%d)\n", label, ch.ChannelID))
		} else {
			sb.WriteString(fmt.Sprintf("- %s (%d) [unverifiable]\n", label, ch.ChannelID))
		}
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleSetCaption(ctx context.Context, text string) (string, error) {
	if err := b.SettingsUC.SetCaption(ctx, text); err != nil {
		return "", fmt.Errorf("set caption: %w", err)
	}
	return "Caption saved. It will be attached to every delivered file.", nil
}

func (b *BotFacade) HandleRemoveCaption(ctx context.Context) (string, error) {
	if err := b.SettingsUC.RemoveCaption(ctx); err != nil {
		return "", fmt.Errorf("remove caption: %w", err)
	}
	return "Caption removed.", nil
}

// HandleSetTime configures auto-deletion of delivered content. Zero disables.
func (b *BotFacade) HandleSetTime(ctx context.Context, d time.Duration) (string, error) {
	if err := b.SettingsUC.SetAutoDelete(ctx, d); err != nil {
		return "", fmt.Errorf("set auto-delete: %w", err)
	}
	if d <= 0 {
		return "Auto-delete disabled.", nil
	}
	return fmt.Sprintf("Delivered files will be deleted after %s.", d), nil
}

// HandleStats renders the global counters.
func (b *BotFacade) HandleStats(ctx context.Context) (string, error) {
	s, err := b.StatsUC.Collect(ctx)
	if err != nil {
		return "", fmt.Errorf("collect stats: %w", err)
	}
	return fmt.Sprintf(
		"Users: %d\nAdmins: %d\nActive premium: %d\nFiles: %d\nBatches: %d\nLinks: %d\nCodes: %d (%d used)",
		s.Users, s.Admins, s.ActivePremium, s.Files, s.Batches, s.Links, s.TokensTotal, s.TokensUsed,
	), nil
}

// HandleBroadcast queues a message to every known user.
func (b *BotFacade) HandleBroadcast(ctx context.Context, message string) (string, error) {
	n, err := b.BroadcastUC.BroadcastMessage(ctx, message)
	if err != nil {
		return "", fmt.Errorf("broadcast: %w", err)
	}
	return fmt.Sprintf("Broadcasting to %d user(s).", n), nil
}
