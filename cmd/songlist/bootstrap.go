package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"songlist/internal/app/songs"
	"songlist/internal/store"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
)

var demoSongs = []songs.Info{
	{Title: "Roygbiv", Singer: "Boards of Canada", Album: "Music Has the Right to Children", Producer: "Marcus Eoin"},
	{Title: "Teardrop", Singer: "Massive Attack", Album: "Mezzanine", Producer: "Neil Davidge"},
	{Title: "Glory Box", Singer: "Portishead", Album: "Dummy", Producer: "Geoff Barrow"},
	{Title: "No Surprises", Singer: "Radiohead", Album: "OK Computer", Producer: "Nigel Godrich"},
	{Title: "Kerala", Singer: "Bonobo", Album: "Migration", Producer: "Simon Green"},
	{Title: "Them Changes", Singer: "Thundercat", Album: "Drunk", Producer: "Flying Lotus"},
}

func bootstrapDemoData(ctx context.Context, a *app) error {
	if err := a.users.Signup(ctx, demoUsername, demoPassword); err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}

	existing, err := a.songs.List(ctx)
	if err != nil {
		return fmt.Errorf("list songs: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for i, info := range demoSongs {
		song, err := a.songs.Add(ctx, demoUsername, info)
		if err != nil {
			return fmt.Errorf("insert demo song %q: %w", info.Title, err)
		}
		if i%2 == 0 {
			if _, err := a.songs.MarkFavorite(ctx, demoUsername, song.ID); err != nil {
				return fmt.Errorf("favorite demo song %q: %w", info.Title, err)
			}
		}
	}

	zerolog.Ctx(ctx).Info().Int("songs", len(demoSongs)).Msg("seeded demo data")
	return nil
}
