package models

import (
	"database/sql"

	"github.com/go-webauthn/webauthn/webauthn"
)

// WebauthnAdmin adapts an admin account to the webauthn user interface for
// passwordless login.
type WebauthnAdmin struct {
	ID          string
	Username    string
	DisplayName string
	Credentials []webauthn.Credential
}

// WebAuthnID returns the admin's ID as a []byte
func (u *WebauthnAdmin) WebAuthnID() []byte {
	return []byte(u.ID)
}

// WebAuthnName returns the admin's username
func (u *WebauthnAdmin) WebAuthnName() string {
	return u.Username
}

// WebAuthnDisplayName returns the admin's display name
func (u *WebauthnAdmin) WebAuthnDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// WebAuthnCredentials returns the admin's registered credentials
func (u *WebauthnAdmin) WebAuthnCredentials() []webauthn.Credential {
	return u.Credentials
}

// AddCredential appends a credential to the admin
func (u *WebauthnAdmin) AddCredential(cred webauthn.Credential) {
	u.Credentials = append(u.Credentials, cred)
}

// GetAdminForWebAuthn retrieves an admin by username together with all stored
// passkey credentials.
func GetAdminForWebAuthn(db *sql.DB, username string) (*WebauthnAdmin, error) {
	var admin Admin
	var name sql.NullString
	err := db.QueryRow(`
		SELECT id, username, name
		FROM admins
		WHERE username = $1
	`, username).Scan(&admin.ID, &admin.Username, &name)
	if err != nil {
		return nil, err
	}

	user := &WebauthnAdmin{
		ID:          admin.ID,
		Username:    admin.Username,
		DisplayName: name.String,
	}

	rows, err := db.Query(`
		SELECT credential_id, public_key, sign_count
		FROM passkey_credentials
		WHERE user_id = $1
	`, user.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cred webauthn.Credential
		if err := rows.Scan(&cred.ID, &cred.PublicKey, &cred.Authenticator.SignCount); err != nil {
			return nil, err
		}
		user.Credentials = append(user.Credentials, cred)
	}

	return user, nil
}

// SavePasskeyCredential stores a newly registered passkey credential.
func SavePasskeyCredential(db *sql.DB, userID string, cred webauthn.Credential) error {
	_, err := db.Exec(`
		INSERT INTO passkey_credentials (user_id, credential_id, public_key, sign_count)
		VALUES ($1, $2, $3, $4)
	`, userID, cred.ID, cred.PublicKey, cred.Authenticator.SignCount)
	return err
}

// UpdatePasskeySignCount updates the stored sign count after a login.
func UpdatePasskeySignCount(db *sql.DB, credentialID []byte, signCount uint32) error {
	_, err := db.Exec(`
		UPDATE passkey_credentials
		SET sign_count = $1
		WHERE credential_id = $2
	`, signCount, credentialID)
	return err
}

// HasPasskey reports whether the admin has any registered passkeys.
func HasPasskey(db *sql.DB, userID string) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM passkey_credentials
		WHERE user_id = $1
	`, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeletePasskeys removes all passkey credentials for an admin.
func DeletePasskeys(db *sql.DB, userID string) error {
	_, err := db.Exec(`
		DELETE FROM passkey_credentials
		WHERE user_id = $1
	`, userID)
	return err
}
