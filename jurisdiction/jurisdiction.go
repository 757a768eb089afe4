// Package jurisdiction holds the per-county policy the extraction stages depend on:
// where the parcel page lives, who the taxing authority is, and the fixed calendar
// anchors of the semi-annual billing cycle.
package jurisdiction

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"parcel-tax-scraper/format"
)

// Half identifies one semi-annual billing period.
type Half int

const (
	FirstHalf Half = iota + 1
	SecondHalf
)

func (h Half) String() string {
	switch h {
	case FirstHalf:
		return "First Half"
	case SecondHalf:
		return "Second Half"
	default:
		return "Unknown"
	}
}

// MonthDay is a calendar anchor that repeats every year.
type MonthDay struct {
	Month int
	Day   int
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d/%02d", md.Month, md.Day)
}

// HalfSchedule holds the due and delinquent anchors of one half.
type HalfSchedule struct {
	Due        MonthDay
	Delinquent MonthDay
}

// Jurisdiction is the swappable county policy.
type Jurisdiction struct {
	Key             string
	Name            string
	HistoryLabel    string // jurisdiction column of every history entry
	TaxingAuthority string
	ParcelURL       string // %s is replaced by the escaped parcel number
	ReadySelector   string
	FirstHalf       HalfSchedule
	SecondHalf      HalfSchedule
}

// Darke is Darke County, Ohio.
var Darke = Jurisdiction{
	Key:             "darke",
	Name:            "Darke County",
	HistoryLabel:    "County",
	TaxingAuthority: "Darke County Treasurer, 504 S. Broadway, Greenville, OH 45331, Ph: 937-547-7365",
	ParcelURL:       "https://darkecountyrealestate.org/Parcel?Parcel=%s",
	ReadySelector:   "#Location",
	FirstHalf: HalfSchedule{
		Due:        MonthDay{Month: 2, Day: 21},
		Delinquent: MonthDay{Month: 2, Day: 22},
	},
	SecondHalf: HalfSchedule{
		Due:        MonthDay{Month: 7, Day: 18},
		Delinquent: MonthDay{Month: 7, Day: 19},
	},
}

var registry = map[string]Jurisdiction{
	Darke.Key: Darke,
}

// Lookup returns the registered jurisdiction for key.
func Lookup(key string) (Jurisdiction, error) {
	j, ok := registry[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Jurisdiction{}, eris.Errorf("jurisdiction: unknown %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return j, nil
}

// Keys lists the registered jurisdiction keys in order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// URLFor builds the parcel page URL for account.
func (j Jurisdiction) URLFor(account string) string {
	return fmt.Sprintf(j.ParcelURL, url.QueryEscape(account))
}

// Schedule returns the anchors for half.
func (j Jurisdiction) Schedule(h Half) HalfSchedule {
	if h == FirstHalf {
		return j.FirstHalf
	}
	return j.SecondHalf
}

// DueDates renders the due and delinquent dates of half in year. Both are empty
// when year cannot hold the anchors.
func (j Jurisdiction) DueDates(h Half, year int) (due, delinquent string) {
	s := j.Schedule(h)
	due, ok := format.FormatDate(s.Due.Month, s.Due.Day, year)
	if !ok {
		return "", ""
	}
	delinquent, ok = format.FormatDate(s.Delinquent.Month, s.Delinquent.Day, year)
	if !ok {
		return "", ""
	}
	return due, delinquent
}

// FormattedDueDates is the short "MM/DD & MM/DD" form used in notes.
func (j Jurisdiction) FormattedDueDates() string {
	return j.FirstHalf.Due.String() + " & " + j.SecondHalf.Due.String()
}

// DueSchedule is the full set of dates for one tax year.
type DueSchedule struct {
	TaxYear          int
	FirstHalfDue     string
	FirstHalfDelq    string
	SecondHalfDue    string
	SecondHalfDelq   string
	FormattedDueDate string
}

// DueSchedule computes both halves for year. Years outside 2000-2100 are rejected.
func (j Jurisdiction) DueSchedule(year int) (DueSchedule, error) {
	if year < 2000 || year > 2100 {
		return DueSchedule{}, eris.Errorf("jurisdiction: invalid tax year %d", year)
	}
	ds := DueSchedule{TaxYear: year, FormattedDueDate: j.FormattedDueDates()}
	ds.FirstHalfDue, ds.FirstHalfDelq = j.DueDates(FirstHalf, year)
	ds.SecondHalfDue, ds.SecondHalfDelq = j.DueDates(SecondHalf, year)
	return ds, nil
}
