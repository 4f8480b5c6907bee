package service

import (
	"context"
	"log"

	"anoa.com/momentum/internal/entity"
	giftDto "anoa.com/momentum/internal/modules/gift/dto"
	giftRepo "anoa.com/momentum/internal/modules/gift/repository"
	ledgerService "anoa.com/momentum/internal/modules/ledger/service"
	notifService "anoa.com/momentum/internal/modules/notification/service"
	userRepo "anoa.com/momentum/internal/modules/user/repository"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// Giftable cost band. Badges outside it cannot be gifted.
const (
	MinGiftCost = 30
	MaxGiftCost = 70
)

type Gifts interface {
	// Send deducts the badge cost from the sender first; when the balance
	// is insufficient no gift row exists at all.
	Send(ctx context.Context, fromUserID uuid.UUID, req giftDto.SendGiftRequest) (*entity.BadgeGift, error)
	Sent(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error)
	Received(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error)
	AvailableBadges(ctx context.Context) ([]entity.Badge, error)
}

type giftService struct {
	gifts     giftRepo.GiftRepository
	users     userRepo.UserRepository
	ledger    ledgerService.Ledger
	notifier  notifService.NotificationService
	sanitizer *bluemonday.Policy
}

func NewGiftService(
	gifts giftRepo.GiftRepository,
	users userRepo.UserRepository,
	ledger ledgerService.Ledger,
	notifier notifService.NotificationService,
) Gifts {
	return &giftService{
		gifts:     gifts,
		users:     users,
		ledger:    ledger,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *giftService) Send(ctx context.Context, fromUserID uuid.UUID, req giftDto.SendGiftRequest) (*entity.BadgeGift, error) {
	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		return nil, apperror.ErrInvalidInput
	}
	if toUserID == fromUserID {
		return nil, apperror.ErrInvalidInput
	}
	badgeID, err := uuid.Parse(req.BadgeID)
	if err != nil {
		return nil, apperror.ErrInvalidInput
	}

	recipient, err := s.users.FindByID(ctx, toUserID.String())
	if err != nil {
		return nil, err
	}

	badge, err := s.gifts.FindBadge(ctx, badgeID)
	if err != nil {
		return nil, err
	}
	if !badge.IsActive || badge.Cost < MinGiftCost || badge.Cost > MaxGiftCost {
		return nil, apperror.ErrInvalidInput
	}

	message := s.sanitizer.Sanitize(req.Message)
	if len(message) > 200 {
		return nil, apperror.ErrInvalidInput
	}

	occasion := req.Occasion
	if occasion == "" {
		occasion = "other"
	}

	txn, err := s.ledger.Deduct(ctx, fromUserID, badge.Cost, entity.TxGiftSent,
		"Gifted badge "+badge.Name,
		ledgerService.WithBadge(badgeID),
		ledgerService.WithRelatedUser(toUserID))
	if err != nil {
		return nil, err
	}

	gift := &entity.BadgeGift{
		FromUserID:    fromUserID,
		ToUserID:      toUserID,
		BadgeID:       badgeID,
		Message:       message,
		PointsCost:    badge.Cost,
		Occasion:      occasion,
		IsAnonymous:   req.IsAnonymous,
		TransactionID: &txn.ID,
	}
	if err := s.gifts.Create(ctx, gift); err != nil {
		// The deduct already landed. Compensate so the sender is whole.
		if _, refundErr := s.ledger.Grant(ctx, fromUserID, badge.Cost, entity.TxAward,
			"Refund for failed gift", ledgerService.WithBadge(badgeID)); refundErr != nil {
			log.Printf("gift: refund after failed gift for %s: %v", fromUserID, refundErr)
		}
		return nil, err
	}

	if err := s.ledger.GrantBadge(ctx, toUserID, badgeID, 1); err != nil {
		log.Printf("gift: grant badge %s to %s: %v", badgeID, toUserID, err)
	}

	sender := "Someone"
	if !req.IsAnonymous {
		if fromUser, err := s.users.FindByID(ctx, fromUserID.String()); err == nil {
			sender = fromUser.Username
		}
	}
	data := map[string]interface{}{
		"gift_id":  gift.ID,
		"badge_id": badgeID.String(),
		"occasion": occasion,
	}
	if err := s.notifier.Notify(ctx, recipient.ID, entity.NotifBadgeReceived,
		"You received a badge!",
		sender+" sent you the "+badge.Name+" badge",
		data, entity.PriorityNormal); err != nil {
		log.Printf("gift: notify %s: %v", recipient.ID, err)
	}

	return gift, nil
}

func (s *giftService) Sent(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.gifts.ListSent(ctx, userID, limit, offset)
}

func (s *giftService) Received(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.gifts.ListReceived(ctx, userID, limit, offset)
}

func (s *giftService) AvailableBadges(ctx context.Context) ([]entity.Badge, error) {
	return s.gifts.GiftableBadges(ctx, MinGiftCost, MaxGiftCost)
}
