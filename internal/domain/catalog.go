package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DurationBucket is a supported rental length in whole hours
type DurationBucket int

// SupportedBuckets lists the rental lengths that can be priced
var SupportedBuckets = []DurationBucket{1, 2, 3, 4, 6, 8}

// IsSupported returns true if d is one of SupportedBuckets
func (d DurationBucket) IsSupported() bool {
	for _, b := range SupportedBuckets {
		if d == b {
			return true
		}
	}
	return false
}

// Duration converts the bucket to time.Duration
func (d DurationBucket) Duration() time.Duration {
	return time.Duration(d) * time.Hour
}

func (d DurationBucket) String() string {
	return strconv.Itoa(int(d)) + "h"
}

// ParseDurationBucket accepts "4h" or "4"
func ParseDurationBucket(s string) (DurationBucket, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "h"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	d := DurationBucket(n)
	if !d.IsSupported() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return d, nil
}

// DurationBucketFromRange requires the range to match a bucket exactly
func DurationBucketFromRange(r TimeRange) (DurationBucket, error) {
	dur := r.Duration()
	if dur%time.Hour != 0 {
		return 0, fmt.Errorf("%w: %s is not a whole number of hours", ErrInvalidDuration, dur)
	}
	d := DurationBucket(dur / time.Hour)
	if !d.IsSupported() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, dur)
	}
	return d, nil
}

// MonthDay is a day of the calendar year, e.g. 07-15
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses "MM-DD"
func ParseMonthDay(s string) (MonthDay, error) {
	t, err := time.Parse("01-02", s)
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q: %w", s, err)
	}
	return MonthDay{Month: t.Month(), Day: t.Day()}, nil
}

// MonthDayOf returns the UTC calendar day of t
func MonthDayOf(t time.Time) MonthDay {
	_, m, d := t.UTC().Date()
	return MonthDay{Month: m, Day: d}
}

func (md MonthDay) ordinal() int {
	return int(md.Month)*100 + md.Day
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// SeasonPeriod is an inclusive range of calendar days; From after To wraps the year end
type SeasonPeriod struct {
	From MonthDay
	To   MonthDay
}

// Contains returns true if the UTC calendar day of date lies in the period
func (p SeasonPeriod) Contains(date time.Time) bool {
	md := MonthDayOf(date).ordinal()
	from, to := p.From.ordinal(), p.To.ordinal()
	if from <= to {
		return md >= from && md <= to
	}
	return md >= from || md <= to
}

// Season is an administered period with its own duration price table
type Season struct {
	Label  string
	Period SeasonPeriod
	Prices map[DurationBucket]Cents
}

// Boat is the normalized boat value object
type Boat struct {
	ID       string
	Name     string
	Capacity int
	Deposit  Cents
	// HourlyRate feeds display-only estimates when no season matches
	HourlyRate Cents
	Seasons    []Season
}

// SeasonFor returns the season whose period contains date
func (b *Boat) SeasonFor(date time.Time) (*Season, bool) {
	for i := range b.Seasons {
		if b.Seasons[i].Period.Contains(date) {
			return &b.Seasons[i], true
		}
	}
	return nil, false
}

// Extra is an add-on with a fixed unit price
type Extra struct {
	ID        string
	Name      string
	UnitPrice Cents
}

// Catalog is an immutable, versioned snapshot of boats, season prices and extras
type Catalog struct {
	Version  int64
	LoadedAt time.Time

	boats  map[string]*Boat
	order  []string
	extras map[string]Extra
}

// NewCatalog validates and indexes catalog data
func NewCatalog(version int64, loadedAt time.Time, boats []Boat, extras []Extra) (*Catalog, error) {
	c := &Catalog{
		Version:  version,
		LoadedAt: loadedAt,
		boats:    make(map[string]*Boat, len(boats)),
		order:    make([]string, 0, len(boats)),
		extras:   make(map[string]Extra, len(extras)),
	}

	for i := range boats {
		b := boats[i]
		if b.ID == "" {
			return nil, fmt.Errorf("%w: boat without id", ErrInvalidCatalog)
		}
		if _, dup := c.boats[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate boat %s", ErrInvalidCatalog, b.ID)
		}
		if err := validateSeasons(&b); err != nil {
			return nil, err
		}
		c.boats[b.ID] = &b
		c.order = append(c.order, b.ID)
	}
	sort.Strings(c.order)

	for _, e := range extras {
		if e.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: extra %s has negative price", ErrInvalidCatalog, e.ID)
		}
		c.extras[e.ID] = e
	}

	return c, nil
}

// validateSeasons checks bucket support, prices and that no calendar day belongs to
// two seasons of the same boat
func validateSeasons(b *Boat) error {
	for _, s := range b.Seasons {
		for bucket, price := range s.Prices {
			if !bucket.IsSupported() {
				return fmt.Errorf("%w: boat %s season %s: unsupported duration %s", ErrInvalidCatalog, b.ID, s.Label, bucket)
			}
			if price <= 0 {
				return fmt.Errorf("%w: boat %s season %s: non-positive price for %s", ErrInvalidCatalog, b.ID, s.Label, bucket)
			}
		}
	}

	// 2024 is a leap year so 02-29 is checked too
	day := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	for day.Year() == 2024 {
		matched := ""
		for _, s := range b.Seasons {
			if !s.Period.Contains(day) {
				continue
			}
			if matched != "" {
				return fmt.Errorf("%w: boat %s seasons %s and %s overlap on %s",
					ErrInvalidCatalog, b.ID, matched, s.Label, MonthDayOf(day))
			}
			matched = s.Label
		}
		day = day.AddDate(0, 0, 1)
	}
	return nil
}

// Boat returns the boat by id
func (c *Catalog) Boat(id string) (*Boat, bool) {
	b, ok := c.boats[id]
	return b, ok
}

// Boats returns all boats ordered by id
func (c *Catalog) Boats() []*Boat {
	res := make([]*Boat, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, c.boats[id])
	}
	return res
}

// Extra returns the extra by id
func (c *Catalog) Extra(id string) (Extra, bool) {
	e, ok := c.extras[id]
	return e, ok
}

// Extras returns all extras ordered by id
func (c *Catalog) Extras() []Extra {
	res := make([]Extra, 0, len(c.extras))
	for _, e := range c.extras {
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
