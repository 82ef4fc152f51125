package capability

import "strings"

// Entry binds a model-name prefix to its capability record.
type Entry struct {
	Prefix     string
	Capability Capability
}

// Table is evaluated in declaration order; the first matching prefix wins, so
// longer overlapping prefixes must come before shorter ones.
type Table []Entry

// Lookup returns the first entry whose prefix starts modelID.
func (t Table) Lookup(modelID string) (Entry, bool) {
	for _, entry := range t {
		if entry.Prefix != "" && strings.HasPrefix(modelID, entry.Prefix) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Resolve returns the capability for modelID, or the Unknown sentinel.
func (t Table) Resolve(modelID string) Capability {
	if entry, ok := t.Lookup(modelID); ok {
		return entry.Capability
	}
	return Unknown()
}

// Resolve looks modelID up in the Default table.
func Resolve(modelID string) Capability {
	return Default.Resolve(modelID)
}

var (
	textIn      = Modalities{Text: FlagYes, Image: FlagNo}
	textImageIn = Modalities{Text: FlagYes, Image: FlagYes}
	textOut     = Modalities{Text: FlagYes, Image: FlagNo}
	imageOut    = Modalities{Text: FlagNo, Image: FlagYes}
)

func tokens(input, output string) Pricing {
	return Pricing{Input: USD(input), Output: USD(output), Unit: PricingUnit}
}

// Default is the built-in OpenAI capability table.
var Default = Table{
	{Prefix: "gpt-4o-mini", Capability: Capability{Input: textImageIn, Output: textOut, Reasoning: 3, Speed: 5, Pricing: tokens("0.15", "0.60")}},
	{Prefix: "gpt-4o", Capability: Capability{Input: textImageIn, Output: textOut, Reasoning: 4, Speed: 4, Pricing: tokens("2.50", "10.00")}},
	{Prefix: "gpt-4.1-mini", Capability: Capability{Input: textImageIn, Output: textOut, Reasoning: 3, Speed: 5, Pricing: tokens("0.40", "1.60")}},
	{Prefix: "gpt-4.1", Capability: Capability{Input: textImageIn, Output: textOut, Reasoning: 4, Speed: 4, Pricing: tokens("2.00", "8.00")}},
	{Prefix: "gpt-4-turbo", Capability: Capability{Input: textImageIn, Output: textOut, Reasoning: 4, Speed: 3, Pricing: tokens("10.00", "30.00")}},
	{Prefix: "gpt-4-vision-preview", Capability: Capability{Input: textImageIn, Output: textOut, Reasoning: 4, Speed: 3, Pricing: tokens("10.00", "30.00")}},
	{Prefix: "gpt-4-32k", Capability: Capability{Input: textIn, Output: textOut, Reasoning: 4, Speed: 2, Pricing: tokens("60.00", "120.00")}},
	{Prefix: "gpt-4", Capability: Capability{Input: textIn, Output: textOut, Reasoning: 4, Speed: 2, Pricing: tokens("30.00", "60.00")}},
	{Prefix: "gpt-3.5-turbo-instruct", Capability: Capability{Input: textIn, Output: textOut, Reasoning: 2, Speed: 5, Pricing: tokens("1.50", "2.00")}},
	{Prefix: "gpt-3.5-turbo", Capability: Capability{Input: textIn, Output: textOut, Reasoning: 2, Speed: 5, Pricing: tokens("0.50", "1.50")}},
	{Prefix: "o1-mini", Capability: Capability{Input: textIn, Output: textOut, Reasoning: 4, Speed: 3, Pricing: tokens("1.10", "4.40")}},
	{Prefix: "o1", Capability: Capability{Input: textImageIn, Output: textOut, Reasoning: 5, Speed: 1, Pricing: tokens("15.00", "60.00")}},
	{Prefix: "o3-mini", Capability: Capability{Input: textIn, Output: textOut, Reasoning: 5, Speed: 3, Pricing: tokens("1.10", "4.40")}},
	{Prefix: "dall-e-3", Capability: Capability{Input: textIn, Output: imageOut, Reasoning: 1, Speed: 2, Pricing: Pricing{Image: USD("0.040"), Unit: PricingUnit}}},
	{Prefix: "dall-e-2", Capability: Capability{Input: textIn, Output: imageOut, Reasoning: 1, Speed: 3, Pricing: Pricing{Image: USD("0.020"), Unit: PricingUnit}}},
	{Prefix: "text-embedding-3-small", Capability: Capability{Input: textIn, Output: Modalities{Text: FlagNo, Image: FlagNo}, Reasoning: 1, Speed: 5, Pricing: Pricing{Input: USD("0.02"), Unit: PricingUnit}}},
	{Prefix: "text-embedding-3-large", Capability: Capability{Input: textIn, Output: Modalities{Text: FlagNo, Image: FlagNo}, Reasoning: 1, Speed: 5, Pricing: Pricing{Input: USD("0.13"), Unit: PricingUnit}}},
}
