package llm

// Token pricing per 1M tokens (USD) as of 2025. Embedding models are priced
// per input token only.
var pricing = map[string]modelPrice{
	// Gemini
	"gemini-2.0-flash":      {Input: 0.10, Output: 0.40},
	"gemini-2.0-flash-lite": {Input: 0.0, Output: 0.0},
	"gemini-1.5-pro":        {Input: 1.25, Output: 5.00},
	"gemini-1.5-flash":      {Input: 0.075, Output: 0.30},
	"text-embedding-004":    {Input: 0.0, Output: 0.0},

	// OpenAI
	"gpt-4o":                 {Input: 2.50, Output: 10.00},
	"gpt-4o-mini":            {Input: 0.15, Output: 0.60},
	"gpt-4-turbo":            {Input: 10.00, Output: 30.00},
	"o1-mini":                {Input: 3.00, Output: 12.00},
	"text-embedding-3-small": {Input: 0.02, Output: 0.0},
	"text-embedding-3-large": {Input: 0.13, Output: 0.0},
}

type modelPrice struct {
	Input  float64 // per 1M input tokens
	Output float64 // per 1M output tokens
}

// EstimateCost returns the estimated cost in USD for the given model and
// token counts. Unknown models cost zero rather than guessing.
func EstimateCost(model string, tokensIn, tokensOut int) float64 {
	p, ok := pricing[model]
	if !ok {
		return 0
	}
	return (float64(tokensIn) * p.Input / 1_000_000) + (float64(tokensOut) * p.Output / 1_000_000)
}
