package models

import "golang.org/x/crypto/bcrypt"

// APIKey grants read access to the public API. Only a bcrypt hash of the
// secret is stored; the plaintext is handed out once at creation.
type APIKey struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Label     string `gorm:"not null;unique" json:"label"`
	KeyHash   string `gorm:"not null" json:"-"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (APIKey) TableName() string {
	return "api_keys"
}

// SetKey hashes and stores the plaintext secret.
func (k *APIKey) SetKey(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	k.KeyHash = string(hash)
	return nil
}

// CheckKey reports whether the plaintext secret matches the stored hash.
func (k *APIKey) CheckKey(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(plaintext)) == nil
}
