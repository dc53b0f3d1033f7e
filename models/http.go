package models

import (
	"encoding/json"
	"time"
)

// Request bodies accepted by the HTTP API. Field names follow the JSON
// contract of the web client; the boundary normalises them into Identity
// before any service call.

// RegisterRequest is the body of POST /api/register and
// POST /api/send-magic-link (the latter reuses the same profile payload).
type RegisterRequest struct {
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	BirthYear    string `json:"birthYear"`
	BirthMonth   string `json:"birthMonth"`
	BirthDay     string `json:"birthDay"`
	GuardianKey  string `json:"guardianKey"`
	GuardianName string `json:"guardianName"`
}

// Identity converts the request payload into an Identity value carrying
// only the profile fields the caller is allowed to set.
func (r RegisterRequest) Identity() Identity {
	return Identity{
		Email:        r.Email,
		Nickname:     r.Nickname,
		BirthYear:    r.BirthYear,
		BirthMonth:   r.BirthMonth,
		BirthDay:     r.BirthDay,
		GuardianKey:  r.GuardianKey,
		GuardianName: r.GuardianName,
	}
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Nickname   string `json:"nickname"`
	BirthYear  string `json:"birthYear"`
	BirthMonth string `json:"birthMonth"`
	BirthDay   string `json:"birthDay"`
	Passphrase string `json:"passphrase"`
}

// RecoveryRequest is the body of POST /api/passphrase-recovery.
type RecoveryRequest struct {
	Nickname   string `json:"nickname"`
	BirthYear  string `json:"birthYear"`
	BirthMonth string `json:"birthMonth"`
	BirthDay   string `json:"birthDay"`
	Email      string `json:"email"`
}

// TokenRequest is the body of POST /api/verify-recovery-token.
type TokenRequest struct {
	Token string `json:"token"`
}

// UpdatePassphraseRequest is the body of POST /api/update-passphrase.
type UpdatePassphraseRequest struct {
	Token         string `json:"token"`
	NewPassphrase string `json:"newPassphrase"`
}

// WithdrawRequest is the body of POST /api/withdraw.
type WithdrawRequest struct {
	Email string `json:"email"`
}

// ConsultationRequest is the body of POST /api/consultation.
type ConsultationRequest struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
}

// UnmarshalJSON accepts the legacy field names older web clients sent for
// the topic ("worry", "worry_type"). Normalisation happens once here;
// handlers and services only ever see Topic.
func (r *ConsultationRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		Topic     string `json:"topic"`
		Worry     string `json:"worry"`
		WorryType string `json:"worry_type"`
		Question  string `json:"question"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.Topic = raw.Topic
	if r.Topic == "" {
		r.Topic = raw.Worry
	}
	if r.Topic == "" {
		r.Topic = raw.WorryType
	}
	r.Question = raw.Question
	return nil
}

// PaymentLinkRequest is the body of POST /api/payment-link.
type PaymentLinkRequest struct {
	Email   string `json:"email"`
	PlanKey string `json:"planKey"`
}

// AdminLoginRequest is the body of POST /api/admin/login.
type AdminLoginRequest struct {
	Login      string `json:"login"`
	Passphrase string `json:"passphrase"`
}

// Response envelopes. Every API response carries a boolean success flag;
// failure responses additionally carry a human-readable error string and
// never surface internal detail.

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RegisterResponse is the success shape of POST /api/register.
type RegisterResponse struct {
	Success bool         `json:"success"`
	Data    RegisterData `json:"data"`
}

// RegisterData is the data payload of RegisterResponse.
type RegisterData struct {
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
}

// MagicLinkResponse is the success shape of POST /api/send-magic-link.
type MagicLinkResponse struct {
	Success      bool      `json:"success"`
	MagicLinkURL string    `json:"magicLinkUrl"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// VerifyResponse is the success shape of GET /api/verify-magic-link and
// POST /api/verify-recovery-token.
type VerifyResponse struct {
	Success bool       `json:"success"`
	User    PublicUser `json:"user"`
}

// LoginResponse is the success shape of POST /api/login.
type LoginResponse struct {
	Success  bool       `json:"success"`
	UserData PublicUser `json:"userData"`
}

// OKResponse is the bare success envelope used by endpoints that return no
// payload (recovery dispatch, passphrase update, withdrawal).
type OKResponse struct {
	Success bool `json:"success"`
}

// ConsultationResponse is the success shape of POST /api/consultation.
type ConsultationResponse struct {
	Success bool   `json:"success"`
	Reading string `json:"reading"`
}

// PaymentLinkResponse is the success shape of POST /api/payment-link.
type PaymentLinkResponse struct {
	Success bool        `json:"success"`
	Link    PaymentLink `json:"link"`
}

// AdminLoginResponse is the success shape of POST /api/admin/login.
type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// AdminIdentitiesResponse is the success shape of GET /api/admin/identities.
type AdminIdentitiesResponse struct {
	Success    bool         `json:"success"`
	Identities []PublicUser `json:"identities"`
	Length     int          `json:"length"`
}

// PublicUser is the caller-visible projection of an Identity. It carries no
// credential or token state.
type PublicUser struct {
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	BirthYear    string `json:"birthYear"`
	BirthMonth   string `json:"birthMonth"`
	BirthDay     string `json:"birthDay"`
	GuardianKey  string `json:"guardianKey"`
	GuardianName string `json:"guardianName"`
	IsVerified   bool   `json:"isVerified"`
}

// PublicUserFrom projects an Identity into its caller-visible shape.
func PublicUserFrom(identity Identity) PublicUser {
	return PublicUser{
		Email:        identity.Email,
		Nickname:     identity.Nickname,
		BirthYear:    identity.BirthYear,
		BirthMonth:   identity.BirthMonth,
		BirthDay:     identity.BirthDay,
		GuardianKey:  identity.GuardianKey,
		GuardianName: identity.GuardianName,
		IsVerified:   identity.IsVerified,
	}
}
