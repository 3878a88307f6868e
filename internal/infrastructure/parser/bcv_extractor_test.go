package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"BCVRates/internal/domain"
)

const bcvPage = `
<html><body>
<div class="view-content">
  <div id="euro" class="col-sm-12 col-xs-12">
    <div class="field-content"><div class="row recuadrotsmc">
      <div class="col-sm-6 col-xs-6"><span> EUR </span></div>
      <div class="col-sm-6 col-xs-6 centrado"><strong> 41,87654321 </strong></div>
    </div></div>
  </div>
  <div id="yuan" class="col-sm-12 col-xs-12">
    <div class="field-content"><div class="row recuadrotsmc">
      <div class="col-sm-6 col-xs-6"><span> CNY </span></div>
      <div class="col-sm-6 col-xs-6 centrado"><strong> 5,04123456 </strong></div>
    </div></div>
  </div>
  <div id="lira" class="col-sm-12 col-xs-12">
    <div class="field-content"><div class="row recuadrotsmc">
      <div class="col-sm-6 col-xs-6"><span> TRY </span></div>
      <div class="col-sm-6 col-xs-6 centrado"><strong> 1,12345678 </strong></div>
    </div></div>
  </div>
  <div id="rublo" class="col-sm-12 col-xs-12">
    <div class="field-content"><div class="row recuadrotsmc">
      <div class="col-sm-6 col-xs-6"><span> RUB </span></div>
      <div class="col-sm-6 col-xs-6 centrado"><strong> 0,39876543 </strong></div>
    </div></div>
  </div>
  <div id="dolar" class="col-sm-12 col-xs-12">
    <div class="field-content"><div class="row recuadrotsmc">
      <div class="col-sm-6 col-xs-6"><span> USD </span></div>
      <div class="col-sm-6 col-xs-6 centrado"><strong> 36,53570000 </strong></div>
    </div></div>
  </div>
  <div class="pull-right dinpro center">
    Fecha Valor: <span class="date-display-single" property="dc:date" datatype="xsd:dateTime" content="2024-05-02T00:00:00-04:00">Jueves,
      02 Mayo  2024</span>
  </div>
</div>
</body></html>`

func TestExtractRatesAllCurrencies(t *testing.T) {
	t.Parallel()

	got := NewBCVExtractor(nil).ExtractRates(bcvPage)
	want := domain.RateTable{
		domain.USD: "36,53570000",
		domain.EUR: "41,87654321",
		domain.CNY: "5,04123456",
		domain.TRY: "1,12345678",
		domain.RUB: "0,39876543",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExtractRates mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractRates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		markup string
		want   domain.RateTable
	}{
		{
			name:   "dolar and euro",
			markup: `<div id="dolar"><span>USD</span><strong> 134,56 </strong></div><div id="euro"><strong>145,01</strong></div>`,
			want:   domain.RateTable{domain.USD: "134,56", domain.EUR: "145,01"},
		},
		{
			name:   "no known ids",
			markup: `<div id="other"><strong>1,00</strong></div><p>nothing here</p>`,
			want:   domain.RateTable{},
		},
		{
			name:   "empty markup",
			markup: ``,
			want:   domain.RateTable{},
		},
		{
			name:   "id without emphasized value",
			markup: `<div id="yuan"><span>5,00</span></div>`,
			want:   domain.RateTable{},
		},
		{
			name:   "case-insensitive id",
			markup: `<div id="DOLAR"><strong>36,5</strong></div>`,
			want:   domain.RateTable{domain.USD: "36,5"},
		},
		{
			name:   "first occurrence wins",
			markup: `<div id="lira"><strong>1,1</strong></div><div id="lira"><strong>9,9</strong></div>`,
			want:   domain.RateTable{domain.TRY: "1,1"},
		},
		{
			name:   "value following a sibling marker",
			markup: `<span id="rublo">RUB</span><strong>0,4</strong>`,
			want:   domain.RateTable{domain.RUB: "0,4"},
		},
		{
			name:   "bold element counts as emphasized",
			markup: `<div id="euro"><b>
				41,8
			</b></div>`,
			want: domain.RateTable{domain.EUR: "41,8"},
		},
		{
			name:   "empty strong is skipped",
			markup: `<div id="dolar"><strong>  </strong><strong>36,1</strong></div>`,
			want:   domain.RateTable{domain.USD: "36,1"},
		},
		{
			name:   "scan does not leak into the next currency",
			markup: `<div id="dolar"><span>USD</span></div><div id="euro"><strong>41,8</strong></div>`,
			want:   domain.RateTable{domain.EUR: "41,8"},
		},
		{
			name:   "nested markup inside the value",
			markup: `<div id="dolar"><strong>36,<small>53</small></strong></div>`,
			want:   domain.RateTable{domain.USD: "36,53"},
		},
		{
			name:   "unclosed markup",
			markup: `<div id="yuan"><div><strong> 5,04 `,
			want:   domain.RateTable{domain.CNY: "5,04"},
		},
	}

	extractor := NewBCVExtractor(nil)
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := extractor.ExtractRates(tc.markup)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ExtractRates mismatch (-want +got):\n%s", diff)
			}
			for code := range got {
				if !code.Valid() {
					t.Fatalf("unexpected currency code %q", code)
				}
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	t.Parallel()

	extractor := NewBCVExtractor(nil)

	date := extractor.ExtractDate(`<span class="date-display-single" content="2024-05-01">01 de mayo de 2024</span>`)
	if date.DisplayText == nil || *date.DisplayText != "01 de mayo de 2024" {
		t.Fatalf("unexpected display text: %v", date.DisplayText)
	}
	if date.ISOText == nil || *date.ISOText != "2024-05-01" {
		t.Fatalf("unexpected iso text: %v", date.ISOText)
	}

	date = extractor.ExtractDate(bcvPage)
	if date.DisplayText == nil || *date.DisplayText != "Jueves, 02 Mayo 2024" {
		t.Fatalf("unexpected display text: %v", date.DisplayText)
	}
	if date.ISOText == nil || *date.ISOText != "2024-05-02T00:00:00-04:00" {
		t.Fatalf("unexpected iso text: %v", date.ISOText)
	}
}

func TestExtractDateMissingMarker(t *testing.T) {
	t.Parallel()

	date := NewBCVExtractor(nil).ExtractDate(`<div><span class="date">01 de mayo de 2024</span></div>`)
	if date.DisplayText != nil || date.ISOText != nil {
		t.Fatalf("expected no date, got text=%v iso=%v", date.DisplayText, date.ISOText)
	}
}

func TestExtractDateIndependentFields(t *testing.T) {
	t.Parallel()

	extractor := NewBCVExtractor(nil)

	onlyText := extractor.ExtractDate(`<span class="date-display-single">01 <em>de</em>
		mayo</span>`)
	if onlyText.ISOText != nil {
		t.Fatalf("expected no iso text, got %q", *onlyText.ISOText)
	}
	if onlyText.DisplayText == nil || *onlyText.DisplayText != "01 de mayo" {
		t.Fatalf("unexpected display text: %v", onlyText.DisplayText)
	}

	onlyISO := extractor.ExtractDate(`<div class="date-display-single" content="2024-05-01"></div>`)
	if onlyISO.DisplayText != nil {
		t.Fatalf("expected no display text, got %q", *onlyISO.DisplayText)
	}
	if onlyISO.ISOText == nil || *onlyISO.ISOText != "2024-05-01" {
		t.Fatalf("unexpected iso text: %v", onlyISO.ISOText)
	}

	blank := extractor.ExtractDate(`<span class="date-display-single" content="">   </span>`)
	if blank.DisplayText != nil || blank.ISOText != nil {
		t.Fatalf("expected blank markers to be absent, got text=%v iso=%v", blank.DisplayText, blank.ISOText)
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: " 134,56 ", want: "134,56"},
		{in: "36,5\u00a0", want: "36,5"},
		{in: "Jueves,\n\t02   Mayo 2024", want: "Jueves, 02 Mayo 2024"},
		{in: "a  b", want: "a b"},
	}

	for _, tc := range testCases {
		tc := tc
		got := NormalizeText(tc.in)
		if got != tc.want {
			t.Fatalf("NormalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if again := NormalizeText(got); again != got {
			t.Fatalf("NormalizeText not idempotent: %q -> %q", got, again)
		}
	}
}
