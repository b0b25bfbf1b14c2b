package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Filter narrows the orders a metric looks at. The zero value matches
// every order.
type Filter struct {
	DateFrom *time.Time `json:"date_from,omitempty"`
	// DateTo is inclusive. A bare date (midnight) covers that whole day.
	DateTo   *time.Time `json:"date_to,omitempty"`
	State    string     `json:"state,omitempty"`
	City     string     `json:"city,omitempty"`
	Statuses []string   `json:"statuses,omitempty"`
}

// ParseFilter builds a Filter from the string form used by the CLI and
// the HTTP API. Empty strings leave the corresponding bound unset.
func ParseFilter(dateFrom, dateTo, state, city string, statuses []string) (Filter, error) {
	var f Filter
	if dateFrom != "" {
		t, err := time.Parse(DateLayout, dateFrom)
		if err != nil {
			return Filter{}, fmt.Errorf("date_from: %w", err)
		}
		f.DateFrom = &t
	}
	if dateTo != "" {
		t, err := time.Parse(DateLayout, dateTo)
		if err != nil {
			return Filter{}, fmt.Errorf("date_to: %w", err)
		}
		f.DateTo = &t
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return Filter{}, fmt.Errorf("date_to %s is before date_from %s", dateTo, dateFrom)
	}
	f.State = strings.TrimSpace(state)
	f.City = strings.TrimSpace(city)
	for _, s := range statuses {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, strings.ToLower(s))
		}
	}
	return f, nil
}

// Key is a canonical string for f; equal filters have equal keys.
func (f Filter) Key() string {
	var b strings.Builder
	if f.DateFrom != nil {
		b.WriteString(f.DateFrom.UTC().Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	if f.DateTo != nil {
		b.WriteString(f.DateTo.UTC().Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	b.WriteString(strings.ToUpper(f.State))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(f.City))
	b.WriteByte('|')
	statuses := make([]string, len(f.Statuses))
	for i, s := range f.Statuses {
		statuses[i] = strings.ToLower(s)
	}
	sort.Strings(statuses)
	b.WriteString(strings.Join(statuses, ","))
	return b.String()
}

func (f Filter) dateBounded() bool { return f.DateFrom != nil || f.DateTo != nil }

func (f Filter) upper() time.Time {
	to := *f.DateTo
	if to.Equal(to.Truncate(24 * time.Hour)) {
		return to.Add(24*time.Hour - time.Nanosecond)
	}
	return to
}

// Match reports whether an order placed by c passes the filter.
func (f Filter) Match(o *Order, c *Customer) bool {
	if f.dateBounded() {
		if o.PurchasedAt == nil {
			return false
		}
		if f.DateFrom != nil && o.PurchasedAt.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && o.PurchasedAt.After(f.upper()) {
			return false
		}
	}
	if f.State != "" && (c == nil || !strings.EqualFold(c.State, f.State)) {
		return false
	}
	if f.City != "" && (c == nil || !strings.EqualFold(c.City, f.City)) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if strings.EqualFold(s, o.Status) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
