package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Employment status codes stored on the user row.
const (
	EmploymentStatusEmployed   = 1
	EmploymentStatusUnemployed = 2
	EmploymentStatusOther      = 3
)

// Gender codes stored on the user row. GenderCodeFreeText requires GenderText.
const (
	GenderCodeMale     = 1
	GenderCodeFemale   = 2
	GenderCodeNoAnswer = 3
	GenderCodeFreeText = 4
)

// User is the durable identity record. It is created only through signup
// completion; the sign-in flow mutates the mail authentication code fields
// and the sign-in timestamps.
type User struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	EncryptedPassword string     `json:"-" db:"encrypted_password"`
	ActivatedAt       *time.Time `json:"activated_at,omitempty" db:"activated_at"`

	// Both present or both absent; a full overwrite on issue, an
	// unconditional clear after a successful verify.
	MailAuthenticationCode      *string    `json:"-" db:"mail_authentication_code"`
	MailAuthenticationExpiresAt *time.Time `json:"-" db:"mail_authentication_expires_at"`

	LastSignInAt    *time.Time `json:"last_sign_in_at,omitempty" db:"last_sign_in_at"`
	CurrentSignInAt *time.Time `json:"current_sign_in_at,omitempty" db:"current_sign_in_at"`

	LastName      string  `json:"last_name" db:"last_name"`
	FirstName     string  `json:"first_name" db:"first_name"`
	HasMiddleName int     `json:"has_middle_name" db:"has_middle_name"`
	MiddleName    *string `json:"middle_name,omitempty" db:"middle_name"`
	LastKanaName  string  `json:"last_kana_name" db:"last_kana_name"`
	FirstKanaName string  `json:"first_kana_name" db:"first_kana_name"`

	BirthDate  *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	GenderCode int        `json:"gender_code" db:"gender_code"`
	GenderText *string    `json:"gender_text,omitempty" db:"gender_text"`

	PhoneNumber *string `json:"phone_number,omitempty" db:"phone_number"`

	HomeIsAddressSelectedManually int      `json:"home_is_address_selected_manually" db:"home_is_address_selected_manually"`
	HomePostalCode                *string  `json:"home_postal_code,omitempty" db:"home_postal_code"`
	HomePrefectureCode            *int     `json:"home_prefecture_code,omitempty" db:"home_prefecture_code"`
	HomeMasterCityID              *int64   `json:"home_master_city_id,omitempty" db:"home_master_city_id"`
	HomeAddressTown               *string  `json:"home_address_town,omitempty" db:"home_address_town"`
	HomeAddressLater              *string  `json:"home_address_later,omitempty" db:"home_address_later"`
	HomeLatitude                  *float64 `json:"home_latitude,omitempty" db:"home_latitude"`
	HomeLongitude                 *float64 `json:"home_longitude,omitempty" db:"home_longitude"`

	EmploymentStatus int `json:"employment_status" db:"employment_status"`

	WorkplaceName                      *string `json:"workplace_name,omitempty" db:"workplace_name"`
	WorkplacePhoneNumber               *string `json:"workplace_phone_number,omitempty" db:"workplace_phone_number"`
	WorkplaceIsAddressSelectedManually *int    `json:"workplace_is_address_selected_manually,omitempty" db:"workplace_is_address_selected_manually"`
	WorkplacePostalCode                *string `json:"workplace_postal_code,omitempty" db:"workplace_postal_code"`
	WorkplacePrefectureCode            *int    `json:"workplace_prefecture_code,omitempty" db:"workplace_prefecture_code"`
	WorkplaceMasterCityID              *int64  `json:"workplace_master_city_id,omitempty" db:"workplace_master_city_id"`
	WorkplaceAddressTown               *string `json:"workplace_address_town,omitempty" db:"workplace_address_town"`
	WorkplaceAddressLater              *string `json:"workplace_address_later,omitempty" db:"workplace_address_later"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Activated reports whether the account has been activated.
func (u *User) Activated() bool { return u.ActivatedAt != nil }

// HasMailAuthCode reports whether a second-factor code is currently stored.
func (u *User) HasMailAuthCode() bool {
	return u.MailAuthenticationCode != nil && u.MailAuthenticationExpiresAt != nil
}

// MailAuthCodeExpired reports whether the stored code exists but its expiry
// has passed.
func (u *User) MailAuthCodeExpired(now time.Time) bool {
	return u.HasMailAuthCode() && now.After(*u.MailAuthenticationExpiresAt)
}

// FullName joins the name parts, including the middle name when the user
// declared one.
func (u *User) FullName() string {
	if u.HasMiddleName == 1 && u.MiddleName != nil && *u.MiddleName != "" {
		return strings.Join([]string{u.LastName, *u.MiddleName, u.FirstName}, " ")
	}
	return u.LastName + " " + u.FirstName
}

// FullKanaName joins the kana name parts.
func (u *User) FullKanaName() string {
	return u.LastKanaName + " " + u.FirstKanaName
}
