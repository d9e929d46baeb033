package notify

import (
	"context"
	"fmt"

	"github.com/gmarket/backend/internal/config"
	"github.com/gmarket/backend/internal/domain"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"
)

// Service pushes deposit events to an admin Telegram chat. It is optional:
// New returns nil when no bot token is configured, and every method is
// nil-receiver safe. Delivery failures are logged and swallowed, alerts must
// never fail a payment flow.
type Service struct {
	bot    *telego.Bot
	chatID int64
}

func New(cfg *config.Config) (*Service, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return nil, nil
	}
	bot, err := telego.NewBot(cfg.TelegramToken, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("can't create telegram bot: %w", err)
	}
	return &Service{bot: bot, chatID: cfg.TelegramChatID}, nil
}

func (s *Service) DepositCreated(ctx context.Context, deposit *domain.Deposit) {
	if s == nil {
		return
	}
	text := fmt.Sprintf("New deposit awaiting confirmation\nOrder: %s\nAmount: %.2f USD (%s)\nDeadline: %s",
		deposit.OrderID, deposit.AmountUSD, deposit.Currency, deposit.TimeoutAt.Format("15:04:05 02-01-2006"))
	s.send(ctx, text)
}

func (s *Service) DepositConfirmed(ctx context.Context, deposit *domain.Deposit, source string) {
	if s == nil {
		return
	}
	text := fmt.Sprintf("Deposit confirmed (%s)\nOrder: %s\nAmount: %.2f USD (%s)",
		source, deposit.OrderID, deposit.AmountUSD, deposit.Currency)
	s.send(ctx, text)
}

func (s *Service) send(ctx context.Context, text string) {
	if _, err := s.bot.SendMessage(ctx, tu.Message(tu.ID(s.chatID), text)); err != nil {
		zap.L().Error("can't send telegram notification", zap.Error(err))
	}
}
