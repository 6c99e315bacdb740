// Package wire defines the JSON contract between the sync client and the
// remote sync service. Field names here are the stable interface; changing
// any of them breaks every deployed device.
package wire

import "github.com/inkwell-app/inkwell/internal/cryptox"

// Record is a synchronized record as it travels and is stored remotely.
// Only non-sensitive fields (identifier, date marker, update timestamp,
// tombstone flag) sit outside the ciphertext; everything else is inside
// Data. UpdatedAt is a client-assigned unix timestamp in milliseconds and
// is the sole ordering key for conflict resolution.
type Record struct {
	ID        string                     `json:"id"`
	Date      string                     `json:"date"`
	Data      *cryptox.EncryptionPayload `json:"data"`
	UpdatedAt int64                      `json:"updatedAt"`
	Deleted   bool                       `json:"deleted,omitempty"`
}

// Error codes carried in response bodies.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInternal           = "INTERNAL"
)

// RegisterRequest creates the user on first contact or validates
// credentials on subsequent contacts.
type RegisterRequest struct {
	UserHash          string `json:"p_user_hash" validate:"required,len=64,hexadecimal"`
	VerificationToken string `json:"p_verification_token" validate:"required,len=64,hexadecimal"`
	DeviceID          string `json:"p_device_id" validate:"required"`
	DeviceName        string `json:"p_device_name,omitempty"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id,omitempty"`
	IsNew   bool   `json:"is_new,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SyncRequest is the bulk exchange: the client pushes records changed since
// its cursor and the server answers with every record it holds that is
// newer than that cursor.
type SyncRequest struct {
	UserHash          string    `json:"p_user_hash" validate:"required,len=64,hexadecimal"`
	VerificationToken string    `json:"p_verification_token" validate:"required,len=64,hexadecimal"`
	Entries           []*Record `json:"p_entries" validate:"dive,required"`
	LastSyncAt        int64     `json:"p_last_sync_at" validate:"gte=0"`
}

type SyncResponse struct {
	Success    bool      `json:"success"`
	Pushed     int       `json:"pushed"`
	Pulled     int       `json:"pulled"`
	Entries    []*Record `json:"entries"`
	ServerTime int64     `json:"serverTime"`
	Error      string    `json:"error,omitempty"`
}

// SingleSyncRequest is the fast path used after every local save.
type SingleSyncRequest struct {
	UserHash          string  `json:"p_user_hash" validate:"required,len=64,hexadecimal"`
	VerificationToken string  `json:"p_verification_token" validate:"required,len=64,hexadecimal"`
	Entry             *Record `json:"p_entry" validate:"required"`
}

type SingleSyncResponse struct {
	Success bool   `json:"success"`
	Synced  bool   `json:"synced"`
	Error   string `json:"error,omitempty"`
}
