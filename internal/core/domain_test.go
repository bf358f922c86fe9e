package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("case %d expected ErrInvalidDate, got %v", i, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-09-30")
	if err != nil || d.String() != "2025-09-30" {
		t.Fatalf("got %v %v", d, err)
	}
	for _, bad := range []string{"", "2025-13-01", "30/09/2025", "2025-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 9, 1))
	if err != nil || string(b) != `"2025-09-01"` {
		t.Fatalf("marshal: %s %v", b, err)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2025-09-01T10:00:00+02:00"`), &d); err != nil || d.String() != "2025-09-01" {
		t.Fatalf("unmarshal timestamp: %v %v", d, err)
	}
	if err := json.Unmarshal([]byte(`""`), &d); err != nil || !d.IsZero() {
		t.Fatalf("unmarshal empty: %v %v", d, err)
	}
}

func TestParseTransactionType(t *testing.T) {
	for _, in := range []string{"Income", "expense", " SAVING ", "investment"} {
		if _, err := ParseTransactionType(in); err != nil {
			t.Fatalf("%q: %v", in, err)
		}
	}
	if _, err := ParseTransactionType("Transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestTransactionTypeSign(t *testing.T) {
	want := map[TransactionType]int64{Income: 1, Expense: -1, Investment: 1, Saving: 1}
	for _, tt := range AllTransactionTypes() {
		if got := tt.Sign(); got != want[tt] {
			t.Fatalf("%s sign = %d, want %d", tt, got, want[tt])
		}
	}

	amt := decimal.RequireFromString("10.5")
	if got := Expense.Signed(amt); !got.Equal(amt.Neg()) {
		t.Fatalf("Expense.Signed = %s", got)
	}
	if got := Saving.Signed(amt); !got.Equal(amt) {
		t.Fatalf("Saving.Signed = %s", got)
	}
}

func TestTransactionTypeSignPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown type")
		}
	}()
	TransactionType("Transfer").Sign()
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Category: "Food",
		Amount:   decimal.NewFromInt(10),
		Date:     NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	income := Transaction{Type: Income, Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1)}
	if err := income.Validate(); err != nil {
		t.Fatalf("income without category should be ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*Transaction)
		want error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "Other" }, ErrInvalidType},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-3) }, ErrInvalidAmount},
		{"expense without category", func(tx *Transaction) { tx.Category = "  " }, ErrMissingCategory},
		{"long category", func(tx *Transaction) { tx.Category = strings.Repeat("c", 101) }, ErrCategoryTooLong},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("d", 201) }, ErrDescriptionTooLong},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mod(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTransactionApply(t *testing.T) {
	base := Transaction{ID: "t1", UserID: "u1", CreatedAt: time.Unix(100, 0)}
	got := base.Apply(TransactionInput{
		Type:        Income,
		Category:    "  Salary ",
		Amount:      decimal.NewFromInt(5),
		Description: " pay ",
		Date:        NewDate(2025, 2, 1),
	})
	if got.ID != "t1" || got.UserID != "u1" || !got.CreatedAt.Equal(base.CreatedAt) {
		t.Fatalf("identity fields changed: %+v", got)
	}
	if got.Category != "Salary" || got.Description != "pay" || got.Type != Income {
		t.Fatalf("fields not applied: %+v", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	u := User{Email: "jane.doe@example.com"}
	if got := u.DisplayName(); got != "jane.doe" {
		t.Fatalf("DisplayName = %q", got)
	}
	u.Metadata.FullName = "Jane Doe"
	if got := u.DisplayName(); got != "Jane Doe" {
		t.Fatalf("DisplayName = %q", got)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	m := UserMetadata{FullName: "A", DefaultView: Last7Days, Avatar: "u1.png"}
	back := MetadataFromMap(m.ToMap())
	if back != m {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, m)
	}
	if _, ok := m.ToMap()[MetaAvatarBase64]; ok {
		t.Fatal("empty fields should be omitted")
	}
}

func TestMetadataUpdate(t *testing.T) {
	m := UserMetadata{FullName: "A", Avatar: "fallback_u1.png", AvatarBase64: "data:..."}
	u := MetadataUpdate{Avatar: StringPtr("u1.png"), AvatarBase64: StringPtr("")}
	got := u.Apply(m)
	if got.FullName != "A" || got.Avatar != "u1.png" || got.AvatarBase64 != "" {
		t.Fatalf("unexpected: %+v", got)
	}
	if len(u.ToMap()) != 2 {
		t.Fatalf("ToMap should list only changed keys: %v", u.ToMap())
	}
	if !m.HasFallbackAvatar() || got.HasFallbackAvatar() {
		t.Fatal("HasFallbackAvatar mismatch")
	}
}

func TestDefaultSelector(t *testing.T) {
	if got := (UserMetadata{}).DefaultSelector(); got != Last30Days {
		t.Fatalf("got %q", got)
	}
	if got := (UserMetadata{DefaultView: Last90Days}).DefaultSelector(); got != Last90Days {
		t.Fatalf("got %q", got)
	}
	if got := (UserMetadata{DefaultView: "lastweek"}).DefaultSelector(); got != Last30Days {
		t.Fatalf("got %q", got)
	}
}

func TestAvatarObjectName(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":                 "u1.jpg",
		"image/jpg":                  "u1.jpg",
		"image/png":                  "u1.png",
		"IMAGE/GIF":                  "u1.gif",
		"image/webp; charset=binary": "u1.webp",
	}
	for ct, want := range cases {
		got, err := AvatarObjectName("u1", ct)
		if err != nil || got != want {
			t.Fatalf("%s: got %q %v", ct, got, err)
		}
	}
	if _, err := AvatarObjectName("u1", "application/pdf"); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
	if AllowedAvatarType("image/svg+xml") {
		t.Fatal("svg should not be allowed")
	}
}
