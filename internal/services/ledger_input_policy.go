package services

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/terraincognita07/ledgerly/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultCategory  = "other"
	TransferCategory = "transfer"

	maxCategoryLength    = 64
	maxDescriptionLength = 500
	maxTagLength         = 32
	maxTagsPerEntry      = 20
)

var monthLabelLayouts = []string{"January 2006", "Jan 2006", "2006-01"}

type TransactionInput struct {
	AccountType string
	Type        string
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	Description string
	Tags        []string
	Recurrence  string
}

type normalizedTransaction struct {
	accountType string
	kind        string
	amountCents int64
	category    string
	date        time.Time
	description string
	tags        []string
	recurrence  string
}

// StripDiacritics folds accented letters to their base form so "Café" and
// "Cafe" are stored alike.
func StripDiacritics(value string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, value)
	if err != nil {
		return value
	}
	return stripped
}

func NormalizeCategory(raw string) string {
	category := strings.TrimSpace(StripDiacritics(raw))
	if category == "" {
		return DefaultCategory
	}
	return category
}

// NormalizeTags trims names and drops blanks and repeats, keeping first-seen order.
func NormalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(tags, name) {
			continue
		}
		tags = append(tags, name)
	}
	return tags
}

func NormalizeAccountType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseMonthLabel accepts labels like "March 2023", "Mar 2023" or "2023-03"
// and returns the first instant of that month in location.
func ParseMonthLabel(label string, location *time.Location) (time.Time, bool) {
	label = strings.TrimSpace(label)
	for _, layout := range monthLabelLayouts {
		parsed, err := time.ParseInLocation(layout, label, location)
		if err == nil {
			return time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, location), true
		}
	}
	return time.Time{}, false
}

func (service *LedgerService) normalizeTransactionInput(input TransactionInput) (normalizedTransaction, error) {
	accountType := NormalizeAccountType(input.AccountType)
	if !models.IsKnownAccountType(accountType) {
		return normalizedTransaction{}, invalidf("unknown account type %q", input.AccountType)
	}

	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if !models.IsKnownTransactionType(kind) {
		return normalizedTransaction{}, invalidf("transaction type must be income or expense")
	}

	amountCents, err := positiveCents(input.Amount)
	if err != nil {
		return normalizedTransaction{}, err
	}

	category := NormalizeCategory(input.Category)
	if len([]rune(category)) > maxCategoryLength {
		return normalizedTransaction{}, invalidf("category is too long")
	}

	description := strings.TrimSpace(input.Description)
	if len([]rune(description)) > maxDescriptionLength {
		return normalizedTransaction{}, invalidf("description is too long")
	}

	tags := NormalizeTags(input.Tags)
	if len(tags) > maxTagsPerEntry {
		return normalizedTransaction{}, invalidf("at most %d tags are allowed", maxTagsPerEntry)
	}
	for _, tag := range tags {
		if len([]rune(tag)) > maxTagLength {
			return normalizedTransaction{}, invalidf("tag %q is too long", tag)
		}
	}

	recurrence := strings.ToLower(strings.TrimSpace(input.Recurrence))
	if recurrence == "" {
		recurrence = models.RecurrenceNone
	}
	if !models.IsKnownRecurrence(recurrence) {
		return normalizedTransaction{}, invalidf("unknown recurrence %q", input.Recurrence)
	}

	date := input.Date
	if date.IsZero() {
		date = service.now().In(service.location)
	}

	return normalizedTransaction{
		accountType: accountType,
		kind:        kind,
		amountCents: amountCents,
		category:    category,
		date:        date.UTC(),
		description: description,
		tags:        tags,
		recurrence:  recurrence,
	}, nil
}
