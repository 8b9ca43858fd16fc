package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/riskibarqy/player-scout/internal/domain/session"
)

type InputClass string

const (
	InputNameQuery      InputClass = "NAME_QUERY"
	InputIndexSelection InputClass = "INDEX_SELECTION"
	InputAffirmation    InputClass = "AFFIRMATION"
	InputNegation       InputClass = "NEGATION"
	InputCancel         InputClass = "CANCEL"
	InputUnrecognized   InputClass = "UNRECOGNIZED"
)

// ClassifiedInput carries the parsed payload next to the class: Index for
// INDEX_SELECTION and Query for NAME_QUERY.
type ClassifiedInput struct {
	Class InputClass
	Index int
	Query string
}

var (
	cancelWords = wordSet("cancel", "stop", "quit", "exit", "reset", "/cancel", "/reset")
	affirmWords = wordSet("yes", "y", "yeah", "yep", "yup", "ok", "okay", "sure", "correct", "confirm", "that's him", "si")
	negateWords = wordSet("no", "n", "nope", "nah", "wrong", "not him", "other", "another")

	indexPattern = regexp.MustCompile(`^#?\s*(\d{1,4})\s*[.)]?$`)
)

func wordSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// Classify maps a message to an input class for the given state. Words that only
// make sense in one state are UNRECOGNIZED elsewhere.
func Classify(state session.State, message string) ClassifiedInput {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return ClassifiedInput{Class: InputUnrecognized}
	}
	word := strings.TrimRight(text, "!?. ")

	if _, ok := cancelWords[word]; ok {
		return ClassifiedInput{Class: InputCancel}
	}
	if _, ok := affirmWords[word]; ok {
		if state == session.StateAwaitingConfirmation {
			return ClassifiedInput{Class: InputAffirmation}
		}
		return ClassifiedInput{Class: InputUnrecognized}
	}
	if _, ok := negateWords[word]; ok {
		if state == session.StateAwaitingConfirmation {
			return ClassifiedInput{Class: InputNegation}
		}
		return ClassifiedInput{Class: InputUnrecognized}
	}

	if m := indexPattern.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || state != session.StateAwaitingSelection {
			return ClassifiedInput{Class: InputUnrecognized}
		}
		return ClassifiedInput{Class: InputIndexSelection, Index: n}
	}

	if strings.HasPrefix(text, "/") {
		return ClassifiedInput{Class: InputUnrecognized}
	}
	if countLetters(text) >= 2 {
		return ClassifiedInput{Class: InputNameQuery, Query: strings.TrimSpace(message)}
	}
	return ClassifiedInput{Class: InputUnrecognized}
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
