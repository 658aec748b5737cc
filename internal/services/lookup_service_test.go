package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/booster-value/internal/models"
)

type stubResolver struct {
	res  *Resolution
	err  error
	keys []ResolveKey
}

func (s *stubResolver) Resolve(_ context.Context, key ResolveKey) (*Resolution, error) {
	s.keys = append(s.keys, key)
	return s.res, s.err
}

func lookupPool() []models.CardPrinting {
	exclusive := multiFinish("ea", models.RarityMythic, 50, 80, 0)
	exclusive.FrameEffects = []string{"extendedart"}

	return []models.CardPrinting{
		printing("r", models.RarityRare, 30),
		printing("m", models.RarityMythic, 20),
		printing("u", models.RarityUncommon, 2),
		exclusive,
	}
}

func TestLookupService_PlayPipeline(t *testing.T) {
	resolver := &stubResolver{res: &Resolution{Printings: lookupPool(), Source: SourceCache}}
	svc := NewLookupService(resolver, testClassifier(t, ""))

	result, err := svc.Lookup(context.Background(), models.LookupParams{SetCode: " MKM "})
	require.NoError(t, err)

	require.Len(t, resolver.keys, 1)
	assert.Equal(t, ResolveKey{SetCode: "mkm", Booster: models.BoosterPlay}, resolver.keys[0])

	assert.Equal(t, "mkm", result.SetCode)
	assert.Equal(t, models.BoosterPlay, result.Booster)
	assert.Equal(t, SourceCache, result.Source)
	assert.Equal(t, 3, result.PoolSize)
	assert.InDelta(t, 28.75, result.PackValue.ExpectedValue, 1e-9)

	require.Len(t, result.Groups, 3)
	assert.Equal(t, "r", result.Groups[0].Printing.ID)
}

func TestLookupService_CollectorIncludesExclusives(t *testing.T) {
	resolver := &stubResolver{res: &Resolution{Printings: lookupPool(), Source: SourceLive}}
	svc := NewLookupService(resolver, testClassifier(t, ""))

	result, err := svc.Lookup(context.Background(), models.LookupParams{SetCode: "mkm", Booster: models.BoosterCollector})
	require.NoError(t, err)
	assert.Equal(t, 4, result.PoolSize)
	assert.Equal(t, "ea", result.Groups[0].Printing.ID)
	assert.Equal(t, 2, result.PackValue.MythicPool)
}

func TestLookupService_FiltersDoNotChangePackValue(t *testing.T) {
	resolver := &stubResolver{res: &Resolution{Printings: lookupPool(), Source: SourceCache}}
	svc := NewLookupService(resolver, testClassifier(t, ""))
	ctx := context.Background()

	plain, err := svc.Lookup(ctx, models.LookupParams{SetCode: "mkm"})
	require.NoError(t, err)

	filtered, err := svc.Lookup(ctx, models.LookupParams{
		SetCode: "mkm",
		Filter:  models.DisplayFilter{MinPrice: 25, ExcludeRares: true, ExcludeFoils: true},
	})
	require.NoError(t, err)

	assert.Equal(t, plain.PackValue, filtered.PackValue)
	assert.Empty(t, filtered.Groups)
}

func TestLookupService_PassesExtrasFlag(t *testing.T) {
	resolver := &stubResolver{res: &Resolution{Source: SourceMemory}}
	svc := NewLookupService(resolver, testClassifier(t, ""))

	_, err := svc.Lookup(context.Background(), models.LookupParams{SetCode: "mkm", IncludeExtras: true})
	require.NoError(t, err)
	assert.True(t, resolver.keys[0].IncludeExtras)
}

func TestLookupService_Errors(t *testing.T) {
	svc := NewLookupService(&stubResolver{}, testClassifier(t, ""))
	_, err := svc.Lookup(context.Background(), models.LookupParams{})
	assert.Error(t, err)

	failing := &stubResolver{err: ErrSourcesExhausted}
	svc = NewLookupService(failing, testClassifier(t, ""))
	_, err = svc.Lookup(context.Background(), models.LookupParams{SetCode: "mkm"})
	assert.True(t, errors.Is(err, ErrSourcesExhausted))
}

func TestLookupService_WithResolver(t *testing.T) {
	live := newFakeLive()
	live.records["mkm"] = []json.RawMessage{
		scryfallRecord("mkm", "a", "10", "rare", "30.00", true),
		scryfallRecord("mkm", "b", "11", "mythic", "20.00", true),
		scryfallRecord("mkm", "c", "400", "mythic", "90.00", false),
	}
	resolver, err := NewResolver(nil, live, nil, 1, 0)
	require.NoError(t, err)
	svc := NewLookupService(resolver, testClassifier(t, ""))

	first, err := svc.Lookup(context.Background(), models.LookupParams{SetCode: "mkm"})
	require.NoError(t, err)
	assert.Equal(t, SourceLive, first.Source)
	assert.InDelta(t, 28.75, first.PackValue.ExpectedValue, 1e-9)

	second, err := svc.Lookup(context.Background(), models.LookupParams{SetCode: "mkm", Filter: models.DisplayFilter{MinPrice: 25}})
	require.NoError(t, err)
	assert.Equal(t, SourceMemory, second.Source)
	assert.Len(t, second.Groups, 1)
	assert.Equal(t, first.PackValue, second.PackValue)
}
