package usecase

import (
	"errors"

	"github.com/riskibarqy/player-scout/internal/domain/player"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidIdentity = errors.New("invalid player identity")

	ErrSourceUnavailable = player.ErrSourceUnavailable
	ErrParse             = player.ErrParse
	ErrProfileNotFound   = player.ErrProfileNotFound

	ErrNoMatchFound             = errors.New("no matching player found")
	ErrNoDataAvailable          = errors.New("no data available from any source")
	ErrInvalidSelection         = errors.New("invalid selection")
	ErrAmbiguousProfileConflict = errors.New("sources disagree on a profile field")
	ErrSessionExpired           = errors.New("session expired")
)
