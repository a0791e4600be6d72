// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Account
// model.
//
// Error semantics:
//   - Lookups of a missing account return ErrNotFound.
//   - CreateAccount returns ErrDuplicate when the username or email is taken,
//     including when a concurrent registration wins the race.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/domain"
)

// CreateAccount inserts a new account with a fresh UUID and UTC timestamp.
func CreateAccount(ctx context.Context, db *gorm.DB, username, email, passwordHash string) (*domain.Account, error) {
	a := &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return a, nil
}

// AccountTaken reports whether any account already uses username or email.
func AccountTaken(ctx context.Context, db *gorm.DB, username, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

// GetAccountByEmail fetches an account by its (lower-cased) email.
func GetAccountByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccountByID fetches an account by primary key.
func GetAccountByID(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
