package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/metrics"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

const MinChainLength = 3

// ChainValidator проверяет цепочку многостороннего обмена.
type ChainValidator struct {
	listings repository.ListingRepository
}

func NewChainValidator(listings repository.ListingRepository) *ChainValidator {
	return &ChainValidator{listings: listings}
}

func (v *ChainValidator) Validate(ctx context.Context, proposerID uuid.UUID, chain []entity.ChainLink) error {
	err := validateChain(ctx, v.listings, proposerID, chain)
	metrics.ObserveFailure("validate_chain", err)
	return err
}

// validateChain выполняет проверки по порядку: длина, участие инициатора,
// замыкание, объявления участников, повторы объявлений.
//
// Замыкание проверяется только для последнего звена: его получатель должен
// быть участником первого звена. Попарные связи внутри цепочки не сверяются.
func validateChain(ctx context.Context, listings repository.ListingRepository, proposerID uuid.UUID, chain []entity.ChainLink) error {
	if len(chain) < MinChainLength {
		return apperror.Newf(apperror.ErrCodeValidation, "цепочка должна содержать не менее %d участников", MinChainLength)
	}
	for i, link := range chain {
		if link.UserID == uuid.Nil || link.ListingID == uuid.Nil || link.DeclaredReceiverID == uuid.Nil {
			return apperror.Newf(apperror.ErrCodeValidation, "звено %d цепочки заполнено не полностью", i)
		}
	}

	if !chainHasUser(chain, proposerID) {
		return apperror.New(apperror.ErrCodeForbidden, "инициатор должен быть участником цепочки")
	}

	if chain[len(chain)-1].DeclaredReceiverID != chain[0].UserID {
		return apperror.New(apperror.ErrCodeValidation, "цепочка не замкнута")
	}

	for _, link := range chain {
		if err := checkOfferedListing(ctx, listings, link.ListingID, link.UserID); err != nil {
			return err
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(chain))
	for _, link := range chain {
		if _, ok := seen[link.ListingID]; ok {
			return apperror.Newf(apperror.ErrCodeValidation, "объявление %s повторяется в цепочке", link.ListingID)
		}
		seen[link.ListingID] = struct{}{}
	}
	return nil
}

func chainHasUser(chain []entity.ChainLink, userID uuid.UUID) bool {
	for _, link := range chain {
		if link.UserID == userID {
			return true
		}
	}
	return false
}
