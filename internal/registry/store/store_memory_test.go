package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"xcmkit/internal/registry/models"
	"xcmkit/pkg/requestcontext"
)

type InMemoryCacheSuite struct {
	suite.Suite
	cache *InMemoryCache
	ctx   context.Context
}

func TestInMemoryCacheSuite(t *testing.T) {
	suite.Run(t, new(InMemoryCacheSuite))
}

func (s *InMemoryCacheSuite) SetupTest() {
	s.cache = NewInMemoryCache(time.Minute)
	s.ctx = context.Background()
}

func foreignAsset(key, symbol string) models.ForeignAsset {
	return models.ForeignAsset{Key: key, Symbol: symbol, Location: []byte(`{"parents":1,"interior":"Here"}`)}
}

func (s *InMemoryCacheSuite) TestSaveAndList() {
	s.Run("lists saved assets ordered by key", func() {
		s.Require().NoError(s.cache.SaveMany(s.ctx, "statemine", []models.ForeignAsset{
			foreignAsset("b", "B"),
			foreignAsset("a", "A"),
		}))
		assets, err := s.cache.List(s.ctx, "statemine")
		s.Require().NoError(err)
		s.Require().Len(assets, 2)
		s.Equal("a", assets[0].Key)
		s.False(assets[0].CachedAt.IsZero())
	})

	s.Run("overwrites entries with the same key", func() {
		s.Require().NoError(s.cache.Save(s.ctx, "statemine", foreignAsset("a", "A2")))
		assets, err := s.cache.List(s.ctx, "statemine")
		s.Require().NoError(err)
		s.Len(assets, 2)
		s.Equal("A2", assets[0].Symbol)
	})

	s.Run("isolates chains", func() {
		assets, err := s.cache.List(s.ctx, "statemint")
		s.Require().NoError(err)
		s.Empty(assets)
	})

	s.Run("skips entries without a key", func() {
		s.Require().NoError(s.cache.Save(s.ctx, "westmint", foreignAsset("", "X")))
		assets, err := s.cache.List(s.ctx, "westmint")
		s.Require().NoError(err)
		s.Empty(assets)
	})
}

func (s *InMemoryCacheSuite) TestExpiry() {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.cache.Save(requestcontext.WithTime(s.ctx, start), "statemine", foreignAsset("a", "A")))

	assets, err := s.cache.List(requestcontext.WithTime(s.ctx, start.Add(30*time.Second)), "statemine")
	s.Require().NoError(err)
	s.Len(assets, 1)

	assets, err = s.cache.List(requestcontext.WithTime(s.ctx, start.Add(2*time.Minute)), "statemine")
	s.Require().NoError(err)
	s.Empty(assets)
}
