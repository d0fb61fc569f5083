package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/supabase"
)

var referralCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

// DefaultReferralCredits is what both sides of a redeemed referral receive.
const DefaultReferralCredits = 5

type ReferralService struct {
	referrals ReferralStore
	rpc       RPCCaller
	credits   int
	logger    *zap.Logger
}

func NewReferralService(referrals ReferralStore, rpc RPCCaller, logger *zap.Logger) *ReferralService {
	return &ReferralService{
		referrals: referrals,
		rpc:       rpc,
		credits:   DefaultReferralCredits,
		logger:    logger,
	}
}

func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that code exists, is active, has uses left and does not
// belong to userID. It returns the normalized code.
func (s *ReferralService) Validate(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	code = NormalizeReferralCode(code)
	if !referralCodePattern.MatchString(code) {
		return code, invalid(ErrInvalidReferralCode)
	}

	ref, err := s.referrals.GetReferralCode(ctx, code)
	if errors.Is(err, supabase.ErrNotFound) {
		return code, ErrReferralInvalid
	}
	if err != nil {
		return code, fmt.Errorf("failed to look up referral code: %w", err)
	}

	switch {
	case !ref.IsActive:
		return code, ErrReferralInvalid
	case ref.Exhausted():
		return code, ErrReferralExhausted
	case ref.OwnerID == userID:
		return code, ErrReferralOwnCode
	}
	return code, nil
}

// Redeem validates code and books the referral through process_referral,
// which credits both accounts atomically.
func (s *ReferralService) Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.ReferralRedeemResponse, error) {
	code, err := s.Validate(ctx, userID, code)
	if err != nil {
		return nil, err
	}

	var resp models.ReferralRedeemResponse
	err = s.rpc.Call(ctx, "process_referral", map[string]any{
		"p_code":    code,
		"p_user_id": userID.String(),
		"p_credits": s.credits,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem referral: %w", err)
	}
	if !resp.Success {
		return &resp, fmt.Errorf("%w: %s", ErrReferralRejected, resp.Message)
	}

	s.logger.Info("referral redeemed",
		zap.String("user_id", userID.String()),
		zap.String("code", code),
		zap.Int("credits", resp.CreditsAwarded))
	return &resp, nil
}
