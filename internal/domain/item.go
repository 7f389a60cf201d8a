package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultCurrency is applied to items that do not name one.
const DefaultCurrency = "USD"

// Item is a single product in the catalog.
type Item struct {
	ID            string           `json:"id" yaml:"id" validate:"required"`
	Name          string           `json:"name" yaml:"name" validate:"required"`
	Description   string           `json:"description" yaml:"description"`
	Category      string           `json:"category" yaml:"category" validate:"required"`
	Price         float64          `json:"price" yaml:"price" validate:"gte=0"`
	Currency      string           `json:"currency" yaml:"currency" validate:"omitempty,len=3"`
	StockQuantity int              `json:"stock_quantity" yaml:"stock_quantity" validate:"gte=0"`
	Brand         string           `json:"brand,omitempty" yaml:"brand,omitempty"`
	Attributes    map[string]Value `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// InStock reports whether at least one unit is available.
func (it Item) InStock() bool { return it.StockQuantity > 0 }

// CurrencyOrDefault returns the item currency, falling back to USD.
func (it Item) CurrencyOrDefault() string {
	if it.Currency == "" {
		return DefaultCurrency
	}
	return it.Currency
}

// Text renders the item into the single string that gets embedded.
// Attribute keys are emitted in ascending order.
func (it Item) Text() string {
	brand := it.Brand
	if brand == "" {
		brand = "N/A"
	}
	stock := "No"
	if it.InStock() {
		stock = "Yes"
	}
	attrs := "None"
	if len(it.Attributes) > 0 {
		keys := make([]string, 0, len(it.Attributes))
		for k := range it.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + it.Attributes[k].String()
		}
		attrs = strings.Join(parts, ", ")
	}
	return fmt.Sprintf(
		"Product: %s. Brand: %s. Category: %s. Description: %s. Price: %s %s. In Stock: %s. Attributes: %s.",
		it.Name, brand, it.Category, it.Description,
		strconv.FormatFloat(it.Price, 'f', -1, 64), it.CurrencyOrDefault(),
		stock, attrs,
	)
}

// Clone returns a copy that shares no mutable state with it.
func (it Item) Clone() Item {
	out := it
	if it.Attributes != nil {
		out.Attributes = make(map[string]Value, len(it.Attributes))
		for k, v := range it.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

var validate = validator.New()

// Validate checks the item's required fields and numeric bounds.
func (it Item) Validate() error {
	if err := validate.Struct(it); err != nil {
		return fmt.Errorf("%w: item %q: %v", ErrInvalidArgument, it.ID, err)
	}
	return nil
}
