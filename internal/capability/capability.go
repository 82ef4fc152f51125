package capability

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NotFound is the marker every field of an unresolved capability carries.
const NotFound = "not found"

// PricingUnit describes how Pricing amounts are expressed.
const PricingUnit = "USD per 1M tokens; image price per image"

// Flag is a tri-state support marker. The zero value is FlagUnknown.
type Flag int8

const (
	FlagUnknown Flag = iota
	FlagNo
	FlagYes
)

// Supported reports a definite yes.
func (f Flag) Supported() bool {
	return f == FlagYes
}

func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagYes:
		return []byte("true"), nil
	case FlagNo:
		return []byte("false"), nil
	default:
		return json.Marshal(NotFound)
	}
}

// Score is a relative 1-5 rating. Zero means the score is unknown.
type Score int

func (s Score) MarshalJSON() ([]byte, error) {
	if s <= 0 {
		return json.Marshal(NotFound)
	}
	return json.Marshal(int(s))
}

// Price is an optional unit cost.
type Price struct {
	amount decimal.NullDecimal
}

// USD parses a decimal amount. It panics on malformed input and is meant for
// static tables only.
func USD(amount string) Price {
	return Price{amount: decimal.NewNullDecimal(decimal.RequireFromString(amount))}
}

// Amount returns the cost and whether it is known.
func (p Price) Amount() (decimal.Decimal, bool) {
	return p.amount.Decimal, p.amount.Valid
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.amount.Valid {
		return json.Marshal(NotFound)
	}
	return p.amount.Decimal.MarshalJSON()
}

// Modalities lists which content kinds a model accepts or produces.
type Modalities struct {
	Text  Flag `json:"text"`
	Image Flag `json:"image"`
}

// Pricing is the per-unit cost breakdown of a model.
type Pricing struct {
	Input  Price  `json:"input"`
	Output Price  `json:"output"`
	Image  Price  `json:"image"`
	Unit   string `json:"unit"`
}

// Capability is the static metadata attached to a model.
type Capability struct {
	Input     Modalities `json:"input"`
	Output    Modalities `json:"output"`
	Reasoning Score      `json:"reasoning"`
	Speed     Score      `json:"speed"`
	Pricing   Pricing    `json:"pricing"`
}

// Unknown returns the sentinel record used when no table entry matches.
func Unknown() Capability {
	return Capability{
		Pricing: Pricing{Unit: NotFound},
	}
}

// IsUnknown reports whether c is the sentinel record.
func (c Capability) IsUnknown() bool {
	_, in := c.Pricing.Input.Amount()
	_, out := c.Pricing.Output.Amount()
	_, img := c.Pricing.Image.Amount()
	return c.Input == Modalities{} && c.Output == Modalities{} &&
		c.Reasoning <= 0 && c.Speed <= 0 &&
		!in && !out && !img && c.Pricing.Unit == NotFound
}
