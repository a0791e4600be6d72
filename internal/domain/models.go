// Package domain defines the persistence models for accounts, catalog games,
// chat messages, and server-side sessions. These types are mapped with GORM
// and form the core data layer of the game-catalog backend.
package domain

import "time"

// Account is a registered user. Username and email are each globally unique;
// only a bcrypt hash of the password is stored and it is never serialized.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: public handle (unique).
//   - Email: login identifier, stored lower-cased (unique).
//   - PasswordHash: bcrypt hash, hidden from JSON.
//   - CreatedAt: registration instant (UTC).
type Account struct {
	ID           string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(64);not null;uniqueIndex:ux_accounts_username"`
	Email        string    `json:"email"    gorm:"type:varchar(255);not null;uniqueIndex:ux_accounts_email"`
	PasswordHash string    `json:"-"        gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }

// Game is a catalog entry. Only Title is required; there is no uniqueness
// constraint, so the same title may be submitted more than once.
//
// TitleKey holds the case-folded, NFC-normalized title and is what search
// matches against, so lookups stay case-insensitive on every SQL dialect.
type Game struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string    `json:"title"       gorm:"type:varchar(255);not null"`
	TitleKey    string    `json:"-"           gorm:"type:varchar(255);not null;index:idx_games_title_key"`
	Description string    `json:"description" gorm:"type:text"`
	Genre       string    `json:"genre"       gorm:"type:varchar(64)"`
	Image       string    `json:"image"       gorm:"type:text"`
	Download    string    `json:"download"    gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"  gorm:"index:idx_games_created"`
}

// TableName returns the database table name for Game.
func (Game) TableName() string { return "games" }

// ChatMessage is one accepted message of the public chat room. CreatedAt is
// always the receiving server's clock; rows are append-only.
type ChatMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Author    string    `json:"author"     gorm:"type:text;not null"`
	Body      string    `json:"message"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_chat_messages_created"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// Session is a server-side login session referenced by an opaque cookie.
// ExpiresAt slides forward on every heartbeat.
type Session struct {
	ID           string    `gorm:"type:varchar(64);primaryKey"`
	UserID       string    `gorm:"type:varchar(64);not null;index"`
	Username     string    `gorm:"type:varchar(64);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	LastActivity time.Time `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }
