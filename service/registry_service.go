package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/models"
)

type registryService struct {
	uowFactory UnitOfWorkFactory
}

// NewRegistryService creates a new registry service
func NewRegistryService(uowFactory UnitOfWorkFactory) RegistryService {
	return &registryService{uowFactory: uowFactory}
}

// StoreIdentity records the account's external identity principal,
// registering the account if this is its first contact.
func (s *registryService) StoreIdentity(ctx context.Context, accountID, principal string) (*models.Account, error) {
	if principal == "" {
		return nil, fmt.Errorf("principal must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account == nil {
		account, err = uow.AccountRepository().Create(ctx, accountID, principal)
		if err != nil {
			return nil, fmt.Errorf("failed to register account: %w", err)
		}
		if err := uow.SystemRepository().IncrementUserCount(ctx); err != nil {
			return nil, fmt.Errorf("failed to increment user count: %w", err)
		}

		uow.EventBus().Publish(events.AccountRegisteredEvent{
			AccountID: accountID,
			Principal: principal,
		})
	} else {
		if err := uow.AccountRepository().SetPrincipal(ctx, accountID, principal); err != nil {
			return nil, fmt.Errorf("failed to update principal: %w", err)
		}
		account.Principal = principal
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"principal": principal,
	}).Info("Stored account identity")

	return account, nil
}
