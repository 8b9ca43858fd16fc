package player

import "context"

// Source is a provider of player data. Implementations normalize their payloads into
// RawRecord and SourceProfile at this boundary.
type Source interface {
	Tag() SourceTag
	// SearchByName returns raw hits for a free-text name. An empty slice is a valid
	// "nothing found" answer.
	SearchByName(ctx context.Context, name string) ([]RawRecord, error)
	GetProfile(ctx context.Context, id string) (SourceProfile, error)
}
