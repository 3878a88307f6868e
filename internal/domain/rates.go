package domain

// TrustMode reports which certificate-validation policy served the page.
type TrustMode string

const (
	TrustVerified         TrustMode = "verified"
	TrustInsecureFallback TrustMode = "insecure_fallback"
)

// Valid reports whether m is one of the known trust modes.
func (m TrustMode) Valid() bool {
	return m == TrustVerified || m == TrustInsecureFallback
}

// FetchResult is the raw page together with the trust mode that produced it.
type FetchResult struct {
	Body      string
	TrustMode TrustMode
}

// Currency is one of the reference currencies published by the page.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	CNY Currency = "CNY"
	TRY Currency = "TRY"
	RUB Currency = "RUB"
)

var currencies = []Currency{USD, EUR, CNY, TRY, RUB}

// Currencies returns the closed currency set in publication order.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// Valid reports whether c belongs to the closed currency set.
func (c Currency) Valid() bool {
	for _, known := range currencies {
		if c == known {
			return true
		}
	}
	return false
}

// DateValue carries the publication date; nil fields were not found.
type DateValue struct {
	DisplayText *string
	ISOText     *string
}

// RateTable maps a currency to its rate text exactly as published.
// Missing currencies are absent, never empty entries.
type RateTable map[Currency]string

// OutputRecord is the single unit handed to a sink per run.
type OutputRecord struct {
	SourceURL string    `json:"source_url"`
	TrustMode TrustMode `json:"ssl_mode"`
	DateText  *string   `json:"fecha_valor_text"`
	DateISO   *string   `json:"fecha_valor_iso"`
	Rates     RateTable `json:"rates"`
}

// Date returns the record's publication date.
func (r OutputRecord) Date() DateValue {
	return DateValue{DisplayText: r.DateText, ISOText: r.DateISO}
}
