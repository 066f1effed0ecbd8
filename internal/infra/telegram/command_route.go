package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-file-gate/internal/domain/ports/adapter"
)

type commandHandler func(ctx context.Context, msg *tgbotapi.Message, args string) (string, error)

type commandRoute struct {
	handler   commandHandler
	adminOnly bool
	ownerOnly bool
}

const helpText = `Commands:
/start - open a link you received
/redeem <code> - activate a premium code
/help - this message`

const adminHelpText = helpText + `

Admin commands:
/getlink - send a file to mint its links
/batch <channel_id> <first> <last> - link a channel post range
/custombatch - collect several files under one link
/gencode [n] - issue premium codes
/addpremium <user_id> <duration> - grant premium
/removepremium <user_id>
/forcech add <channel_id> [invite] [title] | del <channel_id> | list
/setcaption <text> | /removecaption
/settime <duration> - auto-delete delivered files (0 to disable)
/stats`

func (b *Bot) buildRoutes() map[string]commandRoute {
	return map[string]commandRoute{
		"start":  {handler: b.cmdStart},
		"help":   {handler: b.cmdHelp},
		"redeem": {handler: b.cmdRedeem},

		"getlink":       {handler: b.cmdGetLink, adminOnly: true},
		"batch":         {handler: b.cmdBatch, adminOnly: true},
		"custombatch":   {handler: b.cmdCustomBatch, adminOnly: true},
		"gencode":       {handler: b.cmdGenCode, adminOnly: true},
		"addpremium":    {handler: b.cmdAddPremium, adminOnly: true},
		"removepremium": {handler: b.cmdRemovePremium, adminOnly: true},
		"forcech":       {handler: b.cmdForceChannel, adminOnly: true},
		"setcaption":    {handler: b.cmdSetCaption, adminOnly: true},
		"removecaption": {handler: b.cmdRemoveCaption, adminOnly: true},
		"settime":       {handler: b.cmdSetTime, adminOnly: true},
		"stats":         {handler: b.cmdStats, adminOnly: true},

		"addadmin":    {handler: b.cmdAddAdmin, ownerOnly: true},
		"removeadmin": {handler: b.cmdRemoveAdmin, ownerOnly: true},
		"broadcast":   {handler: b.cmdBroadcast, ownerOnly: true},
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	route, ok := b.routes[msg.Command()]
	if !ok {
		return b.gw.SendMessage(ctx, msg.Chat.ID, "Unknown command. Send /help.")
	}

	if route.ownerOnly && !b.facade.IsOwner(msg.From.ID) {
		return b.gw.SendMessage(ctx, msg.Chat.ID, "Only the bot owner can do that.")
	}
	if route.adminOnly {
		staff, err := b.facade.IsStaff(ctx, msg.From.ID)
		if err != nil {
			return err
		}
		if !staff {
			return b.gw.SendMessage(ctx, msg.Chat.ID, "This command is for admins.")
		}
	}

	reply, err := route.handler(ctx, msg, strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		b.log.Error().Err(err).Str("command", msg.Command()).Msg("command failed")
		return b.gw.SendMessage(ctx, msg.Chat.ID, "Something went wrong. Try again later.")
	}
	if reply == "" {
		return nil
	}
	return b.gw.SendMessage(ctx, msg.Chat.ID, reply)
}

func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message, args string) (string, error) {
	if args != "" {
		// Deep-link payload; the delivery flow answers the chat itself.
		return "", b.deliver(ctx, msg.Chat.ID, msg.From, args)
	}
	return b.facade.HandleStart(ctx, msg.From.ID, msg.From.FirstName, msg.From.UserName)
}

func (b *Bot) cmdHelp(ctx context.Context, msg *tgbotapi.Message, _ string) (string, error) {
	staff, err := b.facade.IsStaff(ctx, msg.From.ID)
	if err != nil {
		return "", err
	}
	if staff {
		return adminHelpText, nil
	}
	return helpText, nil
}

func (b *Bot) cmdRedeem(ctx context.Context, msg *tgbotapi.Message, args string) (string, error) {
	if args == "" {
		return "Usage: /redeem <code>", nil
	}
	return b.facade.HandleRedeem(ctx, msg.From.ID, args)
}

func (b *Bot) cmdGetLink(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	return "Send me the file and I will reply with its links.", nil
}

func (b *Bot) cmdBatch(ctx context.Context, msg *tgbotapi.Message, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return "Usage: /batch <channel_id> <first_post_id> <last_post_id>", nil
	}
	channelID, err1 := strconv.ParseInt(fields[0], 10, 64)
	startID, err2 := strconv.Atoi(fields[1])
	endID, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "All three arguments must be numbers.", nil
	}
	return b.facade.HandleBatch(ctx, msg.From.ID, channelID, startID, endID)
}

func (b *Bot) cmdCustomBatch(ctx context.Context, msg *tgbotapi.Message, _ string) (string, error) {
	reply, err := b.facade.HandleCustomBatchStart(ctx, msg.From.ID)
	if err != nil {
		return "", err
	}
	rows := [][]adapter.InlineButton{
		{{Text: "Generate", Data: "batch:done"}},
		{{Text: "Cancel", Data: "batch:cancel"}},
	}
	return "", b.gw.SendButtons(ctx, msg.Chat.ID, reply, rows)
}

func (b *Bot) cmdGenCode(ctx context.Context, msg *tgbotapi.Message, args string) (string, error) {
	count := 1
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			return "Usage: /gencode [count]", nil
		}
		count = n
	}
	return b.facade.HandleGenCode(ctx, msg.From.ID, count)
}

func (b *Bot) cmdAddPremium(ctx context.Context, msg *tgbotapi.Message, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "Usage: /addpremium <user_id> <duration> (e.g. 30d, 12h)", nil
	}
	targetID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return "The user id must be a number.", nil
	}
	d, err := parseSpan(fields[1])
	if err != nil || d <= 0 {
		return "Bad duration. Use forms like 30d, 12h or 45m.", nil
	}
	reply, err := b.facade.HandleAddPremium(ctx, targetID, d)
	if err != nil {
		return "", err
	}
	// Best effort; the user may never have opened a chat with the bot.
	if err := b.gw.SendMessage(ctx, targetID, "You have been granted premium access. Enjoy!"); err != nil {
		b.log.Debug().Err(err).Int64("target", targetID).Msg("premium notification undeliverable")
	}
	return reply, nil
}

func (b *Bot) cmdRemovePremium(ctx context.Context, msg *tgbotapi.Message, args string) (string, error) {
	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "Usage: /removepremium <user_id>", nil
	}
	return b.facade.HandleRemovePremium(ctx, targetID)
}

func (b *Bot) cmdForceChannel(ctx context.Context, msg *tgbotapi.Message, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "Usage: /forcech add <channel_id> [invite_link] [title] | del <channel_id> | list", nil
	}
	switch fields[0] {
	case "add":
		if len(fields) < 2 {
			return "Usage: /forcech add <channel_id> [invite_link] [title]", nil
		}
		channelID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return "The channel id must be a number.", nil
		}
		var invite, title string
		if len(fields) > 2 {
			invite = fields[2]
		}
		if len(fields) > 3 {
			title = strings.Join(fields[3:], " ")
		}
		return b.facade.HandleForceChannelAdd(ctx, msg.From.ID, channelID, invite, title, "")
	case "del":
		if len(fields) != 2 {
			return "Usage: /forcech del <channel_id>", nil
		}
		channelID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return "The channel id must be a number.", nil
		}
		return b.facade.HandleForceChannelRemove(ctx, channelID)
	case "list":
		return b.facade.HandleForceChannelList(ctx)
	default:
		return "Usage: /forcech add <channel_id> [invite_link] [title] | del <channel_id> | list", nil
	}
}

func (b *Bot) cmdSetCaption(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	if args == "" {
		return "Usage: /setcaption <text>", nil
	}
	return b.facade.HandleSetCaption(ctx, args)
}

func (b *Bot) cmdRemoveCaption(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	return b.facade.HandleRemoveCaption(ctx)
}

func (b *Bot) cmdSetTime(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	if args == "" {
		return "Usage: /settime <duration> (e.g. 10m, 1h, 0 to disable)", nil
	}
	d, err := parseSpan(args)
	if err != nil {
		return "Bad duration. Use forms like 10m, 1h or 0.", nil
	}
	return b.facade.HandleSetTime(ctx, d)
}

func (b *Bot) cmdStats(ctx context.Context, _ *tgbotapi.Message, _ string) (string, error) {
	return b.facade.HandleStats(ctx)
}

func (b *Bot) cmdAddAdmin(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "Usage: /addadmin <user_id>", nil
	}
	return b.facade.HandleAddAdmin(ctx, targetID)
}

func (b *Bot) cmdRemoveAdmin(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "Usage: /removeadmin <user_id>", nil
	}
	return b.facade.HandleRemoveAdmin(ctx, targetID)
}

func (b *Bot) cmdBroadcast(ctx context.Context, _ *tgbotapi.Message, args string) (string, error) {
	if args == "" {
		return "Usage: /broadcast <message>", nil
	}
	return b.facade.HandleBroadcast(ctx, args)
}

// parseSpan reads admin-friendly durations. "30d" means thirty days, a bare
// number means days, everything else goes through time.ParseDuration.
func parseSpan(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("bad day span %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
