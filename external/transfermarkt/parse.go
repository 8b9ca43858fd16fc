package transfermarkt

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/riskibarqy/player-scout/internal/domain/player"
)

var (
	playerHrefPattern        = regexp.MustCompile(`/spieler/(\d+)`)
	shirtNumberPrefix        = regexp.MustCompile(`^#\d+\s*`)
	ageSuffixPattern         = regexp.MustCompile(`\s*\(\d+\)\s*$`)
	marketValuePattern       = regexp.MustCompile(`€\s*([\d.,]+)\s*(bn|m|k)?`)
	germanMarketValuePattern = regexp.MustCompile(`([\d.,]+)\s*(Mrd\.|Mio\.|Tsd\.)?\s*€`)
)

// parseSearchResults reads the player table of the quick search page. A page without
// any result table is a valid empty answer; a table whose rows lost their player
// links means the layout changed.
func parseSearchResults(doc *html.Node, now time.Time) ([]player.RawRecord, error) {
	tables := findAll(doc, byTagClass("table", "items"))
	out := make([]player.RawRecord, 0)
	seen := make(map[string]struct{})
	rowsSeen := 0

	for _, table := range tables {
		tbody := findFirst(table, byTagClass("tbody", ""))
		if tbody == nil {
			continue
		}
		for _, row := range children(tbody, "tr") {
			rowsSeen++
			record, ok := parseSearchRow(row, now)
			if !ok {
				continue
			}
			if _, dup := seen[record.ID]; dup {
				continue
			}
			seen[record.ID] = struct{}{}
			out = append(out, record)
		}
	}

	if rowsSeen > 0 && len(out) == 0 && len(tables) > 0 && !hasNonPlayerLinks(tables) {
		return nil, crerr.Wrap(player.ErrParse, "search rows carry no player links")
	}
	return out, nil
}

// hasNonPlayerLinks reports tables that list clubs or agents instead of players.
func hasNonPlayerLinks(tables []*html.Node) bool {
	for _, table := range tables {
		for _, a := range findAll(table, byTagClass("a", "")) {
			href := attr(a, "href")
			if strings.Contains(href, "/verein/") || strings.Contains(href, "/berater/") || strings.Contains(href, "/trainer/") {
				return true
			}
		}
	}
	return false
}

func parseSearchRow(row *html.Node, now time.Time) (player.RawRecord, bool) {
	link := findFirst(row, func(n *html.Node) bool {
		if !isElement(n, "a") {
			return false
		}
		return playerHrefPattern.MatchString(attr(n, "href")) && ancestorHasClass(n, "hauptlink")
	})
	if link == nil {
		return player.RawRecord{}, false
	}

	m := playerHrefPattern.FindStringSubmatch(attr(link, "href"))
	name := strings.TrimSpace(attr(link, "title"))
	if name == "" {
		name = text(link)
	}
	if name == "" {
		return player.RawRecord{}, false
	}

	record := player.RawRecord{ID: m[1], Name: name}

	if crest := findFirst(row, byTagClass("img", "tiny_wappen")); crest != nil {
		record.Attributes.Club = strings.TrimSpace(attr(crest, "title"))
	}
	if record.Attributes.Club == "" {
		if clubLink := findFirst(row, func(n *html.Node) bool {
			return isElement(n, "a") && strings.Contains(attr(n, "href"), "/startseite/verein/") && attr(n, "title") != ""
		}); clubLink != nil {
			record.Attributes.Club = strings.TrimSpace(attr(clubLink, "title"))
		}
	}
	if flag := findFirst(row, byTagClass("img", "flaggenrahmen")); flag != nil {
		record.Attributes.Nationality = strings.TrimSpace(attr(flag, "title"))
	}

	for _, cell := range children(row, "td") {
		if !hasClass(cell, "zentriert") {
			continue
		}
		age, err := strconv.Atoi(text(cell))
		if err == nil && age >= 14 && age <= 60 {
			record.Attributes.BirthYear = now.Year() - age
			break
		}
	}
	return record, true
}

func ancestorHasClass(n *html.Node, class string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if hasClass(p, class) {
			return true
		}
	}
	return false
}

// parseProfile reads the profile header and the info table. Either anchor missing
// means the page is not a player profile we understand.
func parseProfile(doc *html.Node) (player.SourceProfile, error) {
	headline := findFirst(doc, byTagClass("h1", "data-header__headline-wrapper"))
	if headline == nil {
		return player.SourceProfile{}, crerr.Wrap(player.ErrParse, "profile headline not found")
	}
	info := findFirst(doc, byTagClass("div", "info-table"))
	if info == nil {
		return player.SourceProfile{}, crerr.Wrap(player.ErrParse, "profile info table not found")
	}

	name := shirtNumberPrefix.ReplaceAllString(text(headline), "")
	if name == "" {
		return player.SourceProfile{}, crerr.Wrap(player.ErrParse, "profile name is empty")
	}
	out := player.SourceProfile{Name: name}

	for label, value := range infoTableEntries(info) {
		switch label {
		case "full name", "name in home country":
			if _, ok := out.Fields[player.FieldFullName]; !ok || label == "full name" {
				out.SetField(player.FieldFullName, player.StringValue(text(value)))
			}
		case "date of birth/age", "date of birth":
			if date, ok := parseDate(ageSuffixPattern.ReplaceAllString(text(value), "")); ok {
				out.SetField(player.FieldDateOfBirth, player.StringValue(date.Format(time.DateOnly)))
				out.SetField(player.FieldBirthYear, player.IntValue(date.Year()))
			}
		case "height":
			if cm := parseHeightCM(text(value)); cm > 0 {
				out.SetField(player.FieldHeightCM, player.IntValue(cm))
			}
		case "citizenship":
			nationality := ""
			if flag := findFirst(value, byTagClass("img", "")); flag != nil {
				nationality = strings.TrimSpace(attr(flag, "title"))
			}
			if nationality == "" {
				nationality = text(value)
			}
			out.SetField(player.FieldNationality, player.StringValue(nationality))
		case "position":
			position := text(value)
			if i := strings.LastIndex(position, " - "); i >= 0 {
				position = position[i+3:]
			}
			out.SetField(player.FieldPosition, player.StringValue(position))
		case "foot":
			out.SetField(player.FieldPreferredFoot, player.StringValue(text(value)))
		case "current club":
			out.SetField(player.FieldClub, player.StringValue(text(value)))
		case "contract expires":
			if date, ok := parseDate(text(value)); ok {
				out.SetField(player.FieldContractUntil, player.StringValue(date.Format(time.DateOnly)))
			}
		}
	}

	if wrapper := findFirst(doc, byTagClass("a", "data-header__market-value-wrapper")); wrapper != nil {
		if value, ok := parseMarketValueEUR(text(wrapper)); ok {
			out.SetField(player.FieldMarketValueEUR, player.NumberValue(value))
		}
	}
	return out, nil
}

// infoTableEntries pairs each regular label span with the bold value span after it.
func infoTableEntries(info *html.Node) map[string]*html.Node {
	out := make(map[string]*html.Node)
	spans := findAll(info, byTagClass("span", ""))
	for i, span := range spans {
		if !hasClass(span, "info-table__content--regular") || i+1 >= len(spans) {
			continue
		}
		value := spans[i+1]
		if !hasClass(value, "info-table__content--bold") {
			continue
		}
		label := strings.ToLower(strings.TrimSuffix(text(span), ":"))
		if _, exists := out[label]; !exists {
			out[label] = value
		}
	}
	return out
}

var dateLayouts = []string{"Jan 2, 2006", "January 2, 2006", "02.01.2006", "02/01/2006", time.DateOnly}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHeightCM reads "1,70 m" or "1.70 m".
func parseHeightCM(raw string) int {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "m"))
	meters, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || meters <= 0 || meters > 3 {
		return 0
	}
	return int(meters*100 + 0.5)
}

// parseMarketValueEUR reads "€18.00m", "€500k", "€1.20bn" and the German "18,00 Mio. €".
func parseMarketValueEUR(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if m := marketValuePattern.FindStringSubmatch(raw); m != nil {
		return scaleMarketValue(m[1], m[2], false)
	}
	if m := germanMarketValuePattern.FindStringSubmatch(raw); m != nil {
		return scaleMarketValue(m[1], m[2], true)
	}
	return 0, false
}

func scaleMarketValue(number, unit string, decimalComma bool) (float64, bool) {
	if decimalComma {
		number = strings.ReplaceAll(number, ".", "")
		number = strings.ReplaceAll(number, ",", ".")
	} else {
		number = strings.ReplaceAll(number, ",", "")
	}
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "bn", "Mrd.":
		value *= 1e9
	case "m", "Mio.":
		value *= 1e6
	case "k", "Tsd.":
		value *= 1e3
	}
	return value, value > 0
}
