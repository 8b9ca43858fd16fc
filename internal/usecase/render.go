package usecase

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/domain/session"
)

const welcomeText = `Welcome to Player Scout.
Send a football player's name (for example "Messi" or "Kevin De Bruyne") and I will look them up.
If several players match, reply with the number of the one you mean, then confirm with "yes".
Send "cancel" at any time to start over, or "help" for more.`

const helpText = `How it works:
1. Send a player name to search both data sources.
2. Pick a player by number when several match.
3. Reply "yes" to confirm and get the aggregated profile, or "no" to go back to the list.
Commands: /start, /help, /status, /reset (or "cancel").`

// RenderCandidate formats one list entry, e.g.
// "Lionel Messi (Inter Miami, 1987, Argentina) [STRUCTURED 0.95]".
func RenderCandidate(c player.Candidate) string {
	var b strings.Builder
	b.WriteString(c.DisplayName)
	if summary := c.Attributes.Summary(); summary != "" {
		fmt.Fprintf(&b, " (%s)", summary)
	}
	fmt.Fprintf(&b, " [%s %.2f]", c.Source, c.Score)
	if len(c.AlsoKnownAs) > 0 {
		ids := make([]string, 0, len(c.AlsoKnownAs))
		for _, ident := range c.AlsoKnownAs {
			ids = append(ids, string(ident.Source))
		}
		fmt.Fprintf(&b, " +%s", strings.Join(ids, ","))
	}
	return b.String()
}

func RenderCandidateList(candidates []player.Candidate) string {
	lines := make([]string, 0, len(candidates))
	for i, c := range candidates {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, RenderCandidate(c)))
	}
	return strings.Join(lines, "\n")
}

func renderSelectionPrompt(query string, candidates []player.Candidate) string {
	return fmt.Sprintf("I found %d players matching %q:\n%s\nReply with the number of the player you mean.",
		len(candidates), query, RenderCandidateList(candidates))
}

func renderConfirmationPrompt(c player.Candidate) string {
	return fmt.Sprintf("Did you mean %s? (yes/no)", RenderCandidate(c))
}

func renderSourceNote(failed []player.SourceTag) string {
	if len(failed) == 0 {
		return ""
	}
	names := make([]string, 0, len(failed))
	for _, tag := range failed {
		names = append(names, string(tag))
	}
	return fmt.Sprintf("\n(Note: %s source unavailable, results may be incomplete.)", strings.Join(names, ", "))
}

// RenderProfile formats an aggregated profile for chat output.
func RenderProfile(p player.PlayerProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.CanonicalName)

	for _, name := range p.FieldNames() {
		field := p.Fields[name]
		fmt.Fprintf(&b, "  %s: %s [%s]\n", fieldLabel(name), field.Value.String(), field.Provenance)
	}

	if c := p.Career; c != nil {
		t := c.Totals
		fmt.Fprintf(&b, "Career (%d season lines): %d apps, %d min, %d goals, %d assists\n",
			c.Seasons, t.Appearances, t.Minutes, t.Goals, t.Assists)
		fmt.Fprintf(&b, "  per match: %.2f goals, %.2f assists, %.1f shots, %.1f passes\n",
			c.PerMatch.GoalsPerMatch, c.PerMatch.AssistsPerMatch, c.PerMatch.ShotsPerMatch, c.PerMatch.PassesPerMatch)
		if rate := c.Rates.PassCompletion; rate != nil {
			fmt.Fprintf(&b, "  pass completion: %.1f%%\n", *rate*100)
		}
		if rate := c.Rates.ShotAccuracy; rate != nil {
			fmt.Fprintf(&b, "  shot accuracy: %.1f%%\n", *rate*100)
		}
		if style := c.Insights.PlayingStyle; style != "" {
			fmt.Fprintf(&b, "  style: %s\n", style)
		}
		if len(c.Insights.KeyStrengths) > 0 {
			fmt.Fprintf(&b, "  strengths: %s\n", strings.Join(c.Insights.KeyStrengths, ", "))
		}
		for _, line := range c.Competitions {
			fmt.Fprintf(&b, "  %s: %d apps, %d goals, %d assists\n", line.Competition, line.Appearances, line.Goals, line.Assists)
		}
	}

	if len(p.Conflicts) > 0 {
		b.WriteString("Conflicts:\n")
		for _, c := range p.Conflicts {
			fmt.Fprintf(&b, "  %s: %s=%s vs %s=%s, %s\n",
				fieldLabel(c.Field), c.SourceA, c.ValueA.String(), c.SourceB, c.ValueB.String(), c.Resolution)
		}
	}

	ids := make([]string, 0, len(p.Identities))
	for _, ident := range p.Identities {
		ids = append(ids, ident.String())
	}
	fmt.Fprintf(&b, "Sources: %s", strings.Join(ids, ", "))
	if p.Partial {
		b.WriteString(" (partial)")
	}
	return b.String()
}

func fieldLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func renderGuidance(state session.State) string {
	switch state {
	case session.StateAwaitingSelection:
		return "Reply with the number of a player from the list, send a new name, or \"cancel\"."
	case session.StateAwaitingConfirmation:
		return "Reply \"yes\" to confirm, \"no\" to pick another player, or \"cancel\"."
	default:
		return "Send a player's name to start a search, or \"help\" for instructions."
	}
}
