package services

import (
	"context"
	"strings"

	"milk-backend/utils"

	"github.com/skip2/go-qrcode"
)

const cardSize = 256

// LoyaltyCard renders the MilkID of an existing ledger as a PNG QR code for
// scanning at the till.
func (s *LedgerService) LoyaltyCard(ctx context.Context, milkID string) ([]byte, error) {
	milkID = strings.TrimSpace(milkID)
	if !utils.IsMilkID(milkID) {
		return nil, invalid("Nieprawidłowy milkId")
	}
	ledger, err := s.Get(ctx, milkID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(ledger.MilkID, qrcode.Medium, cardSize)
}
