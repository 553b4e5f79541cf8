package geo

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yml
var dataFS embed.FS

// Matches is the result of running the gazetteer against a block of text
type Matches struct {
	Counties    []string // counties detected via "<name> county"/"<name> co" patterns
	StateSignal bool     // explicit state-name or abbreviation mention
	OtherStates []string // neighboring-state names mentioned in the text
}

// Matcher is the narrow interface the tagging pipeline depends on, so the
// heuristic can be unit-tested and swapped independently
type Matcher interface {
	Match(text string) Matches
	CityCounties(text string) []string
	State() string
}

type gazetteerFile struct {
	State         string            `yaml:"state"`
	StateSignals  []string          `yaml:"state_signals"`
	Counties      []string          `yaml:"counties"`
	Cities        map[string]string `yaml:"cities"`
	NeighborState []string          `yaml:"neighbor_states"`
}

// Gazetteer holds the static reference data for one state: county names,
// known city-to-county mappings, and neighboring-state names used for
// disambiguation. Loaded once at startup, read-only thereafter.
type Gazetteer struct {
	state          string
	signalPattern  *regexp.Regexp
	countyPatterns []countyPattern
	cityPatterns   []cityPattern
	statePatterns  []statePattern
}

type countyPattern struct {
	county  string
	pattern *regexp.Regexp
}

type cityPattern struct {
	county  string
	pattern *regexp.Regexp
}

type statePattern struct {
	state   string
	pattern *regexp.Regexp
}

var _ Matcher = (*Gazetteer)(nil)

// Load builds the gazetteer from the embedded reference file
func Load() (*Gazetteer, error) {
	data, err := dataFS.ReadFile("data/kentucky.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to read gazetteer data: %w", err)
	}

	var file gazetteerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse gazetteer data: %w", err)
	}

	if file.State == "" || len(file.Counties) == 0 {
		return nil, fmt.Errorf("gazetteer data is missing state or counties")
	}

	g := &Gazetteer{state: file.State}

	signals := make([]string, 0, len(file.StateSignals))
	for _, signal := range file.StateSignals {
		signals = append(signals, regexp.QuoteMeta(Normalize(signal)))
	}
	g.signalPattern = regexp.MustCompile(`\b(?:` + strings.Join(signals, "|") + `)\b`)

	for _, county := range file.Counties {
		// A county mention requires the qualifier token; bare names like
		// "Clay" are too ambiguous to trust on their own
		p := regexp.MustCompile(`\b` + regexp.QuoteMeta(Normalize(county)) + ` (?:county|co)\b`)
		g.countyPatterns = append(g.countyPatterns, countyPattern{county: county, pattern: p})
	}

	for city, county := range file.Cities {
		p := regexp.MustCompile(`\b` + regexp.QuoteMeta(Normalize(city)) + `\b`)
		g.cityPatterns = append(g.cityPatterns, cityPattern{county: county, pattern: p})
	}

	for _, state := range file.NeighborState {
		p := regexp.MustCompile(`\b` + regexp.QuoteMeta(Normalize(state)) + `\b`)
		g.statePatterns = append(g.statePatterns, statePattern{state: state, pattern: p})
	}

	return g, nil
}

func (g *Gazetteer) State() string {
	return g.state
}

// Match evaluates every county pattern against the full text; there is no
// early exit, so multiple counties can match one item.
func (g *Gazetteer) Match(text string) Matches {
	normalized := Normalize(text)

	m := Matches{}
	seen := map[string]bool{}
	for _, cp := range g.countyPatterns {
		if cp.pattern.MatchString(normalized) && !seen[cp.county] {
			seen[cp.county] = true
			m.Counties = append(m.Counties, cp.county)
		}
	}

	m.StateSignal = g.signalPattern.MatchString(normalized)

	seenStates := map[string]bool{}
	for _, sp := range g.statePatterns {
		if sp.pattern.MatchString(normalized) && !seenStates[sp.state] {
			seenStates[sp.state] = true
			m.OtherStates = append(m.OtherStates, sp.state)
		}
	}

	sort.Strings(m.Counties)
	return m
}

// CityCounties maps city-name mentions to counties. City names are highly
// ambiguous across states; callers must only consult this when an explicit
// state signal is present.
func (g *Gazetteer) CityCounties(text string) []string {
	normalized := Normalize(text)

	seen := map[string]bool{}
	var counties []string
	for _, cp := range g.cityPatterns {
		if cp.pattern.MatchString(normalized) && !seen[cp.county] {
			seen[cp.county] = true
			counties = append(counties, cp.county)
		}
	}

	sort.Strings(counties)
	return counties
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text, strips diacritics, and folds every
// non-alphanumeric rune to a space
func Normalize(text string) string {
	if folded, _, err := transform.String(foldTransformer, text); err == nil {
		text = folded
	}

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}
