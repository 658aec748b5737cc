package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/codyseavey/booster-value/internal/metrics"
	"github.com/codyseavey/booster-value/internal/models"
)

// PoolResolver is the part of the Resolver the lookup service needs
type PoolResolver interface {
	Resolve(ctx context.Context, key ResolveKey) (*Resolution, error)
}

// LookupService runs the whole pipeline for one user action:
// resolve -> classify -> expand -> {estimate value, filter and group}.
type LookupService struct {
	resolver   PoolResolver
	classifier *Classifier
}

func NewLookupService(resolver PoolResolver, classifier *Classifier) *LookupService {
	return &LookupService{
		resolver:   resolver,
		classifier: classifier,
	}
}

// Lookup answers one query. The pack value is always computed from the
// unfiltered pool so display filters never change it.
func (s *LookupService) Lookup(ctx context.Context, params models.LookupParams) (*models.LookupResult, error) {
	start := time.Now()
	defer func() {
		metrics.LookupDuration.Observe(time.Since(start).Seconds())
	}()

	setCode := strings.ToLower(strings.TrimSpace(params.SetCode))
	if setCode == "" {
		return nil, fmt.Errorf("set code is required")
	}
	booster := params.Booster
	if booster == "" {
		booster = models.BoosterPlay
	}

	res, err := s.resolver.Resolve(ctx, ResolveKey{
		SetCode:       setCode,
		Booster:       booster,
		IncludeExtras: params.IncludeExtras,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cards for %s: %w", setCode, err)
	}

	eligible := s.classifier.Filter(res.Printings, booster)
	entries := ExpandAll(eligible)
	value := EstimatePackValue(entries)
	groups := FilterAndGroup(entries, params.Filter)

	metrics.PackExpectedValue.WithLabelValues(setCode, string(booster)).Set(value.ExpectedValue)
	log.Printf("Lookup: %s/%s via %s: %d printings, %d eligible, %d groups shown, EV $%.2f",
		setCode, booster, res.Source, len(res.Printings), len(eligible), len(groups), value.ExpectedValue)

	return &models.LookupResult{
		SetCode:   setCode,
		Booster:   booster,
		Groups:    groups,
		PackValue: value,
		PoolSize:  len(eligible),
		Source:    res.Source,
	}, nil
}
