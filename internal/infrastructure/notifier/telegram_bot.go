package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"bid_market/internal/worker"
	"bid_market/pkg/contextx"
	"bid_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// TelegramBot pushes high-value bid alerts to an ops chat. Purely an
// operator affordance; delivery failures are logged and dropped.
type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Run drains the alerts channel until it closes or ctx is done.
func (b *TelegramBot) Run(ctx context.Context, alerts <-chan worker.BidAlert) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert, ok := <-alerts:
			if !ok {
				return nil
			}
			if err := b.SendAlert(ctx, alert); err != nil {
				logger(ctx).Error("failed to send bid alert", logx.Error(err))
			}
		}
	}
}

func (b *TelegramBot) SendAlert(ctx context.Context, alert worker.BidAlert) error {
	ev := alert.Event

	text := fmt.Sprintf(
		"💰 <b>High bid placed</b>\n\n"+
			"<b>Listing:</b> %s\n"+
			"<b>Amount:</b> €%.2f\n"+
			"<b>Bidder:</b> %s",
		ev.ListingID,
		float64(ev.Amount)/100,
		ev.BidderID,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText sends a plain text message, used for the startup check.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	_, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(b.chatID), text))
	return err
}
