package services

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/coradis/storefront/services/storefront-service/models"
)

// Randomizer is the source of randomness for codes and reward draws.
type Randomizer interface {
	IntN(n int) int
}

type defaultRandomizer struct{}

func (defaultRandomizer) IntN(n int) int { return rand.IntN(n) }

// DiscountTier grants Percent off every Every-th order.
type DiscountTier struct {
	Every   int64
	Percent int
	Reason  string
}

// LoyaltyTiers is checked in order; the first matching tier wins.
var LoyaltyTiers = []DiscountTier{
	{
		Every:   10,
		Percent: 10,
		Reason:  "🎉 Félicitations ! Vous avez atteint 10 commandes et bénéficiez de -10% sur cette commande !",
	},
}

const (
	// FCFA spent per loyalty point.
	PointsRate int64 = 1000
	// FCFA value of one loyalty point.
	PointValue int64 = 100

	referralCodeLength   = 6
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// DiscountFor returns the discount earned with totalOrders completed orders.
func DiscountFor(totalOrders int64) models.Discount {
	for _, tier := range LoyaltyTiers {
		if totalOrders > 0 && tier.Every > 0 && totalOrders%tier.Every == 0 {
			reason := tier.Reason
			return models.Discount{HasDiscount: true, Percent: tier.Percent, Reason: &reason}
		}
	}
	return models.Discount{}
}

// DiscountAmount is floor(base * percent / 100).
func DiscountAmount(base int64, percent int) int64 {
	if percent <= 0 || base <= 0 {
		return 0
	}
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}

// PointsFor is the number of loyalty points an order total earns.
func PointsFor(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(PointsRate)).Floor().IntPart()
}

// PointsValue converts a points balance into the FCFA it is worth.
func PointsValue(points int64) int64 {
	return points * PointValue
}

func GenerateReferralCode(r Randomizer) string {
	var b strings.Builder
	b.Grow(referralCodeLength)
	for i := 0; i < referralCodeLength; i++ {
		b.WriteByte(referralCodeAlphabet[r.IntN(len(referralCodeAlphabet))])
	}
	return b.String()
}

// DrawReward picks one scratch card prize uniformly.
func DrawReward(r Randomizer) models.Reward {
	return models.Rewards[r.IntN(len(models.Rewards))]
}

// GenerateOTPCode returns a six digit code in [100000, 999999].
func GenerateOTPCode(r Randomizer) string {
	return strconv.Itoa(100000 + r.IntN(900000))
}

// NormalizePhone brings an Ivorian number into +225 international form:
// spaces, dashes and parentheses are dropped, a leading 0 becomes +225 and a
// number without a leading + gets +225 prepended.
func NormalizePhone(phone string) string {
	n := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, phone)

	if strings.HasPrefix(n, "0") {
		n = "+225" + n[1:]
	}
	if !strings.HasPrefix(n, "+") {
		n = "+225" + n
	}
	return n
}
