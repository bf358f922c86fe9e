package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income     TransactionType = "Income"
	Expense    TransactionType = "Expense"
	Investment TransactionType = "Investment"
	Saving     TransactionType = "Saving"
)

const (
	dateLayout           = "2006-01-02"
	MaxDescriptionLength = 200
	MaxCategoryLength    = 100
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category,omitempty"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description,omitempty"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
		UserID      string          `json:"user_id"`
	}

	// TransactionInput holds the fields a user may set on create or update.
	TransactionInput struct {
		Type        TransactionType
		Category    string
		Amount      decimal.Decimal
		Description string
		Date        Date
	}
)

// AllTransactionTypes returns every type in display order.
func AllTransactionTypes() []TransactionType {
	return []TransactionType{Income, Expense, Investment, Saving}
}

// ParseTransactionType matches a type name case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.TrimSpace(s)
	for _, t := range AllTransactionTypes() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Investment, Saving:
		return true
	}
	return false
}

// Sign is -1 for Expense and +1 for every other type. Unknown values panic:
// they cannot pass validation, so reaching here with one is a programming error.
func (t TransactionType) Sign() int64 {
	switch t {
	case Expense:
		return -1
	case Income, Investment, Saving:
		return 1
	default:
		panic(fmt.Sprintf("core: unknown transaction type %q", string(t)))
	}
}

// Signed applies the type's sign to amount.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t.Sign() < 0 {
		return amount.Neg()
	}
	return amount
}

func (t TransactionType) String() string { return string(t) }

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(tx.Type))
	}
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if tx.Type == Expense && strings.TrimSpace(tx.Category) == "" {
		return ErrMissingCategory
	}
	if len(tx.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if len(tx.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// SignedAmount is the contribution of tx to a daily net total.
func (tx Transaction) SignedAmount() decimal.Decimal {
	return tx.Type.Signed(tx.Amount)
}

// Apply copies the editable fields of in onto tx.
func (tx Transaction) Apply(in TransactionInput) Transaction {
	tx.Type = in.Type
	tx.Category = strings.TrimSpace(in.Category)
	tx.Amount = in.Amount
	tx.Description = strings.TrimSpace(in.Description)
	tx.Date = in.Date
	return tx
}

// Validate checks input by validating the transaction it would produce.
func (in TransactionInput) Validate() error {
	return Transaction{}.Apply(in).Validate()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the calendar part is kept.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
