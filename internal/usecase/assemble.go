package usecase

import (
	"fmt"

	"BCVRates/internal/domain"
)

// Assemble composes the output record of a run. It only fails on inputs
// that no caller should produce.
func Assemble(url string, mode domain.TrustMode, date domain.DateValue, rates domain.RateTable) (domain.OutputRecord, error) {
	if url == "" {
		return domain.OutputRecord{}, fmt.Errorf("assemble: source url is empty")
	}
	if !mode.Valid() {
		return domain.OutputRecord{}, fmt.Errorf("assemble: unknown trust mode %q", mode)
	}

	copied := make(domain.RateTable, len(rates))
	for code, value := range rates {
		if !code.Valid() {
			return domain.OutputRecord{}, fmt.Errorf("assemble: unknown currency %q", code)
		}
		copied[code] = value
	}

	return domain.OutputRecord{
		SourceURL: url,
		TrustMode: mode,
		DateText:  date.DisplayText,
		DateISO:   date.ISOText,
		Rates:     copied,
	}, nil
}
