// Package dataset reads league seasons from JSON files and writes forecast reports.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/leaguecast/internal/domain/model"
)

// Accepted match date layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"Jan 2, 2006 15:04:05 PM",
	"Jan 2, 2006 3:04:05 PM",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

type leagueDTO struct {
	Name     string     `json:"name"`
	Year     int        `json:"year"`
	Season   string     `json:"season"`
	Champion string     `json:"champion"`
	Matches  []matchDTO `json:"matches"`
}

type matchDTO struct {
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	HomeGoals int       `json:"homeGoals"`
	AwayGoals int       `json:"awayGoals"`
	Date      matchDate `json:"date"`
	K         float64   `json:"k"`
}

type matchDate time.Time

func (d *matchDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = matchDate(t)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Option applies a configuration option to the loader.
type Option func(*loader)

type loader struct {
	kOverride float64
}

// WithKOverride replaces the rating weight of every loaded match when k > 0.
func WithKOverride(k float64) Option {
	return func(l *loader) {
		if k > 0 {
			l.kOverride = k
		}
	}
}

// Dataset is every league read from a set of files plus the combined,
// date-sorted match history.
type Dataset struct {
	Leagues []*model.League
	History []*model.Match
}

// Load reads each path as a JSON array of leagues.
func Load(paths []string, opts ...Option) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, ErrNoDatasets
	}
	ds := &Dataset{}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open dataset %s: %w", p, err)
		}
		leagues, err := Read(f, opts...)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		ds.Add(leagues...)
	}
	return ds, nil
}

// Read decodes a JSON array of leagues.
func Read(r io.Reader, opts ...Option) ([]*model.League, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	var dtos []leagueDTO
	if err := json.NewDecoder(r).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	leagues := make([]*model.League, 0, len(dtos))
	for _, d := range dtos {
		season := d.Season
		if season == "" && d.Year != 0 {
			season = strconv.Itoa(d.Year)
		}
		league := &model.League{
			Name:     d.Name,
			Season:   season,
			Champion: d.Champion,
			Matches:  make([]*model.Match, 0, len(d.Matches)),
		}
		for _, m := range d.Matches {
			k := m.K
			if l.kOverride > 0 {
				k = l.kOverride
			}
			league.Matches = append(league.Matches, &model.Match{
				Home:      m.Home,
				Away:      m.Away,
				HomeGoals: m.HomeGoals,
				AwayGoals: m.AwayGoals,
				Date:      time.Time(m.Date),
				K:         k,
			})
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

// Add appends leagues and folds their matches into the sorted history.
func (d *Dataset) Add(leagues ...*model.League) {
	for _, l := range leagues {
		d.Leagues = append(d.Leagues, l)
		d.History = append(d.History, l.Matches...)
	}
	model.SortByDate(d.History)
}

// League returns the league with the given name. When several seasons share a
// name the latest loaded one wins.
func (d *Dataset) League(name string) (*model.League, bool) {
	for i := len(d.Leagues) - 1; i >= 0; i-- {
		if d.Leagues[i].Name == name {
			return d.Leagues[i], true
		}
	}
	return nil, false
}

// Select returns the named leagues, or every league when names is empty.
func (d *Dataset) Select(names []string) ([]*model.League, error) {
	if len(names) == 0 {
		return d.Leagues, nil
	}
	out := make([]*model.League, 0, len(names))
	for _, n := range names {
		l, ok := d.League(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLeague, n)
		}
		out = append(out, l)
	}
	return out, nil
}
