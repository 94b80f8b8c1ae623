package format

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// LocaleConfig selects the locale and currency used for display.
type LocaleConfig struct {
	Locale   string `json:"locale" yaml:"locale" jsonschema:"title=Locale,description=BCP 47 language tag used for digit grouping,default=en-US" validate:"required,bcp47_language_tag"`
	Currency string `json:"currency" yaml:"currency" jsonschema:"title=Currency,description=ISO 4217 code of the account currency,default=USD" validate:"required,iso4217"`
}

// DefaultConfig returns the en-US / USD configuration.
func DefaultConfig() LocaleConfig {
	return LocaleConfig{
		Locale:   "en-US",
		Currency: "USD",
	}
}

// Validate validates the LocaleConfig struct.
func (c *LocaleConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormatter, "invalid formatter config", err)
	}

	return nil
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"RUB": "₽",
	"TRY": "₺",
	"UAH": "₴",
}

// Formatter renders the calculator's numbers for one locale and currency.
// It holds no mutable state and is safe for concurrent use.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
	symbol  string
	scale   int
}

// NewFormatter creates a Formatter from a validated config.
func NewFormatter(config LocaleConfig) (*Formatter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tag, err := language.Parse(config.Locale)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidFormatter, err, "unsupported locale %q", config.Locale)
	}

	unit, err := currency.ParseISO(config.Currency)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidFormatter, err, "unsupported currency %q", config.Currency)
	}

	scale, _ := currency.Standard.Rounding(unit)

	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String() + " "
	}

	return &Formatter{
		tag:     tag,
		unit:    unit,
		printer: message.NewPrinter(tag),
		symbol:  symbol,
		scale:   scale,
	}, nil
}

// Locale returns the language tag the formatter was built with.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// CurrencyCode returns the ISO 4217 code of the formatter's currency.
func (f *Formatter) CurrencyCode() string {
	return f.unit.String()
}

// Number renders v with exactly decimals fraction digits and locale grouping.
// NaN and infinities render as zero.
func (f *Formatter) Number(v float64, decimals int) string {
	rounded, negative := round(v, decimals)
	out := f.printer.Sprint(number.Decimal(rounded, number.Scale(decimals)))

	if negative {
		return "-" + out
	}

	return out
}

// Currency renders v as an amount of the configured currency, e.g. "-$1,234.50".
func (f *Formatter) Currency(v float64) string {
	rounded, negative := round(v, f.scale)
	out := f.symbol + f.printer.Sprint(number.Decimal(rounded, number.Scale(f.scale)))

	if negative {
		return "-" + out
	}

	return out
}

// SignedCurrency is Currency with an explicit "+" on positive amounts.
func (f *Formatter) SignedCurrency(v float64) string {
	out := f.Currency(v)
	if !strings.HasPrefix(out, "-") && !isZero(v, f.scale) {
		return "+" + out
	}

	return out
}

// Percent renders v (already in percent units) with two decimals, e.g. "12.50%".
func (f *Formatter) Percent(v float64) string {
	return f.Number(v, 2) + "%"
}

// SignedPercent is Percent with an explicit "+" on positive values.
func (f *Formatter) SignedPercent(v float64) string {
	out := f.Percent(v)
	if !strings.HasPrefix(out, "-") && !isZero(v, 2) {
		return "+" + out
	}

	return out
}

// Price renders a market price with the given number of decimals.
func (f *Formatter) Price(v float64, decimals int) string {
	return f.Number(v, decimals)
}

// Quantity renders an instrument quantity with up to eight decimals and no
// trailing zeros.
func (f *Formatter) Quantity(v float64) string {
	rounded, negative := round(v, 8)
	out := f.printer.Sprint(number.Decimal(rounded, number.MaxFractionDigits(8)))

	if negative {
		return "-" + out
	}

	return out
}

// round returns |v| rounded to decimals places and whether the rounded value
// is negative. Non-finite input rounds to zero.
func round(v float64, decimals int) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	d := decimal.NewFromFloat(v).Round(int32(decimals))
	abs, _ := d.Abs().Float64()

	return abs, d.IsNegative()
}

func isZero(v float64, decimals int) bool {
	rounded, _ := round(v, decimals)

	return rounded == 0
}
