package parser

import (
	"regexp"
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// LineKind is what a dated export line describes.
type LineKind int

const (
	KindUnknown LineKind = iota
	KindTrip
	KindSubscription
	KindBonusXP
	KindHotel
	KindShopping
	KindPartner
	KindRedemption
	KindXPDeduction
	KindLevelReached
	KindRollover
	KindRequalification
	KindCard
	KindCredit
	KindDebit
)

var kindNames = map[LineKind]string{
	KindUnknown:         "unknown",
	KindTrip:            "trip",
	KindSubscription:    "subscription",
	KindBonusXP:         "bonus_xp",
	KindHotel:           "hotel",
	KindShopping:        "shopping",
	KindPartner:         "partner",
	KindRedemption:      "redemption",
	KindXPDeduction:     "xp_deduction",
	KindLevelReached:    "level_reached",
	KindRollover:        "rollover",
	KindRequalification: "requalification",
	KindCard:            "card",
	KindCredit:          "credit",
	KindDebit:           "debit",
}

func (k LineKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Category maps earning kinds onto their monthly bucket. Trip and
// requalification kinds are not earnings and return ok=false.
func (k LineKind) Category() (models.Category, bool) {
	switch k {
	case KindSubscription:
		return models.CategorySubscription, true
	case KindBonusXP:
		return models.CategoryBonusXP, true
	case KindHotel:
		return models.CategoryHotel, true
	case KindShopping:
		return models.CategoryShopping, true
	case KindPartner:
		return models.CategoryPartner, true
	case KindRedemption, KindDebit:
		return models.CategoryDebit, true
	case KindCard:
		return models.CategoryCardSpend, true
	case KindCredit:
		return models.CategoryOther, true
	}
	return "", false
}

// IsRequalification reports whether k is one of the tier-change signals.
func (k LineKind) IsRequalification() bool {
	switch k {
	case KindXPDeduction, KindLevelReached, KindRollover, KindRequalification:
		return true
	}
	return false
}

// Classification is a dated line split into its date, kind and figures.
type Classification struct {
	Date        time.Time
	Kind        LineKind
	Description string
	quantities  quantities
}

func (c Classification) Miles() int { return c.quantities.Miles }
func (c Classification) XP() int    { return c.quantities.XP }
func (c Classification) UXP() int   { return c.quantities.UXP }

// matcher is one step of the classification ladder.
type matcher struct {
	kind  LineKind
	match func(folded string, q quantities) bool
}

func keywords(words ...string) func(string, quantities) bool {
	return func(folded string, _ quantities) bool {
		return containsAny(folded, words)
	}
}

var (
	subscriptionWords = []string{
		"subscription", "abonnement", "suscripcion", "abbonamento", "assinatura", "miles complete",
	}
	bonusXPWords = []string{
		"bonus xp", "xp bonus", "xp-bonus", "bonus-xp", "bonus d'xp", "xp extra", "extra xp",
		"bonificacion xp", "bonus di xp", "bonus de xp",
	}
	hotelWords = []string{
		"hotel", "accor", "marriott", "hilton", "hyatt", "ihg", "radisson", "booking.com",
		"hotels.com", "kaligo", "rocketmiles",
	}
	shoppingWords = []string{
		"shopping", "shop", "store", "winkel", "boutique", "einkauf", "compras", "acquisti",
		"amazon", "bol.com", "zalando", "e-shop", "webshop",
	}
	partnerWords = []string{
		"partner", "hertz", "sixt", "avis", "europcar", "uber eats", "uber ride", "eurostar", "sncf", "thalys",
		"revolut", "lounge", "ns international",
	}
	redemptionWords = []string{
		"redemption", "reward ticket", "award ticket", "billet prime", "prijsticket", "beloningsticket",
		"pramienticket", "billete premio", "biglietto premio", "bilhete premio", "transfer",
		"overboeking", "transfert", "ubertragung", "transferencia", "trasferimento", "miles used",
		"upgrade", "donation", "expired", "expiration", "vervallen",
	}
	deductionWords = []string{
		"xp counter", "xp deducted", "xp-teller", "xp teller", "compteur xp", "compteur d'xp",
		"xp-zahler", "xp zahler", "contador de xp", "contador xp", "contatore xp",
	}
	reachedWords = []string{
		"reached", "new level", "bereikt", "nieuw niveau", "atteint", "nouveau niveau",
		"erreicht", "neuer status", "alcanzado", "nuevo nivel", "raggiunto", "nuovo livello",
		"alcancado", "novo nivel",
	}
	rolloverWords = []string{
		"surplus", "rollover", "roll-over", "carried over", "carry over", "overschot",
		"excedent", "uberschuss", "excedente", "eccedenza", "eccedenti", "xp overdracht",
	}
	requalWords = []string{
		"requalif", "renewed", "renouvel", "verlengd", "herkwalific", "verlangert",
		"renovado", "renovacion", "rinnovato", "rinnovo", "level maintained", "status retained",
	}
	cardWords = []string{
		"american express", "amex", "visa", "mastercard", "master card", "credit card", "creditcard",
		"carte de credit", "kreditkarte", "tarjeta", "carta di credito", "cartao", "card",
		"expenses", "spending", "uitgaven", "depenses", "ausgaben", "gastos", "spese", "despesas",
	}
)

// classifiers is the ordered classification ladder; the first match wins.
var classifiers = []matcher{
	{KindTrip, keywords(tripMarkers...)},
	{KindSubscription, keywords(subscriptionWords...)},
	{KindBonusXP, keywords(bonusXPWords...)},
	{KindHotel, keywords(hotelWords...)},
	{KindShopping, keywords(shoppingWords...)},
	{KindPartner, keywords(partnerWords...)},
	{KindRedemption, keywords(redemptionWords...)},
	{KindXPDeduction, func(folded string, q quantities) bool {
		return (q.HasXP && q.XP < 0) || containsAny(folded, deductionWords)
	}},
	{KindLevelReached, func(folded string, _ quantities) bool {
		_, ok := findTier(folded)
		return ok && containsAny(folded, reachedWords)
	}},
	{KindRollover, keywords(rolloverWords...)},
	{KindRequalification, keywords(requalWords...)},
	{KindCard, keywords(cardWords...)},
}

// Classify reads the date at the start of line and assigns the remainder to
// exactly one LineKind. Lines without a leading date return ok=false.
func Classify(line string) (Classification, bool) {
	date, rest, ok := DateAtStart(line)
	if !ok {
		return Classification{}, false
	}
	q := extractQuantities(rest)
	return Classification{
		Date:        date,
		Kind:        classifyDescription(fold(rest), q),
		Description: rest,
		quantities:  q,
	}, true
}

func classifyDescription(folded string, q quantities) LineKind {
	for _, c := range classifiers {
		if c.match(folded, q) {
			return c.kind
		}
	}
	if q.Miles < 0 {
		return KindDebit
	}
	return KindCredit
}

var (
	tierWordPattern = regexp.MustCompile(`\b(explorer|silver|zilver|argent|silber|plata|argento|prata|gold|goud|oro|ouro|platinum|platina|platine|platin|platino)\b`)
	// "or" is only a tier name right after a French level word
	frenchGoldPattern = regexp.MustCompile(`\b(?:niveau|statut)\s*:?\s*or\b`)
)

var tierWords = map[string]models.Tier{
	"explorer": models.TierExplorer,
	"silver":   models.TierSilver, "zilver": models.TierSilver, "argent": models.TierSilver,
	"silber": models.TierSilver, "plata": models.TierSilver, "argento": models.TierSilver, "prata": models.TierSilver,
	"gold": models.TierGold, "goud": models.TierGold, "oro": models.TierGold, "ouro": models.TierGold,
	"platinum": models.TierPlatinum, "platina": models.TierPlatinum, "platine": models.TierPlatinum,
	"platin": models.TierPlatinum, "platino": models.TierPlatinum,
}

// findTier returns the first tier named in folded text.
func findTier(folded string) (models.Tier, bool) {
	loc := tierWordPattern.FindStringSubmatchIndex(folded)
	french := frenchGoldPattern.FindStringIndex(folded)
	if french != nil && (loc == nil || french[0] < loc[0]) {
		return models.TierGold, true
	}
	if loc == nil {
		return "", false
	}
	return tierWords[folded[loc[2]:loc[3]]], true
}
