package service

import (
	"context"
	"fmt"

	"fiveaside/models"

	log "github.com/sirupsen/logrus"
)

type matchService struct {
	uowFactory UnitOfWorkFactory
}

// NewMatchService creates a new match service
func NewMatchService(uowFactory UnitOfWorkFactory) MatchService {
	return &matchService{uowFactory: uowFactory}
}

// RecordMatchUpdate upserts a match from a feed event. The feed owns match
// state; this only refreshes the local read-model.
func (s *matchService) RecordMatchUpdate(ctx context.Context, match *models.Match) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.MatchRepository().Upsert(ctx, match); err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID": match.ID,
		"status":  match.Status,
	}).Debug("Recorded match update")

	return nil
}

// GetMatch retrieves a match by ID
func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	match, err := uow.MatchRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, models.ErrMatchNotFound
	}

	return match, nil
}

// ListMatches returns the most recently updated matches
func (s *matchService) ListMatches(ctx context.Context, limit int) ([]*models.Match, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	matches, err := uow.MatchRepository().ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return matches, nil
}
