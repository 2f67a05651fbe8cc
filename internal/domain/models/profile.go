package models

import (
	"regexp"
	"strings"
	"time"

	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
)

var (
	postalCodePattern  = regexp.MustCompile(`^\d{7}$`)
	phoneNumberPattern = regexp.MustCompile(`^0\d{9,10}$`)
	kanaPattern        = regexp.MustCompile(`^[ァ-ヶー]+$`)
)

// ProfileForm carries the profile staging payload. Validation is
// conditional: the middle name is required only when declared, the free-text
// gender only for the free-text code, the workplace block only for the
// employed status, and postal formats only when the address was not selected
// manually.
type ProfileForm struct {
	LastName      string `json:"last_name" validate:"required,max=50"`
	FirstName     string `json:"first_name" validate:"required,max=50"`
	HasMiddleName int    `json:"has_middle_name" validate:"oneof=0 1"`
	MiddleName    string `json:"middle_name" validate:"max=50"`
	LastKanaName  string `json:"last_kana_name" validate:"required,max=50"`
	FirstKanaName string `json:"first_kana_name" validate:"required,max=50"`

	BirthDate  string `json:"birth_date" validate:"required"`
	GenderCode int    `json:"gender_code" validate:"oneof=1 2 3 4"`
	GenderText string `json:"gender_text" validate:"max=50"`

	PhoneNumber string `json:"phone_number"`

	HomeIsAddressSelectedManually int    `json:"home_is_address_selected_manually" validate:"oneof=0 1"`
	HomePostalCode                string `json:"home_postal_code"`
	HomePrefectureCode            int    `json:"home_prefecture_code" validate:"required,min=1,max=47"`
	HomeMasterCityID              int64  `json:"home_master_city_id"`
	HomeAddressTown               string `json:"home_address_town" validate:"max=100"`
	HomeAddressLater              string `json:"home_address_later" validate:"max=100"`

	EmploymentStatus int `json:"employment_status" validate:"oneof=1 2 3"`

	WorkplaceName                      string `json:"workplace_name" validate:"max=100"`
	WorkplacePhoneNumber               string `json:"workplace_phone_number"`
	WorkplaceIsAddressSelectedManually int    `json:"workplace_is_address_selected_manually" validate:"oneof=0 1"`
	WorkplacePostalCode                string `json:"workplace_postal_code"`
	WorkplacePrefectureCode            int    `json:"workplace_prefecture_code"`
	WorkplaceMasterCityID              int64  `json:"workplace_master_city_id"`
	WorkplaceAddressTown               string `json:"workplace_address_town" validate:"max=100"`
	WorkplaceAddressLater              string `json:"workplace_address_later" validate:"max=100"`
}

// Employed reports whether the workplace block is in scope.
func (f *ProfileForm) Employed() bool { return f.EmploymentStatus == EmploymentStatusEmployed }

// Normalize strips whitespace and separator characters from postal codes
// and phone numbers before validation.
func (f *ProfileForm) Normalize() {
	f.LastName = strings.TrimSpace(f.LastName)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.MiddleName = strings.TrimSpace(f.MiddleName)
	f.LastKanaName = strings.TrimSpace(f.LastKanaName)
	f.FirstKanaName = strings.TrimSpace(f.FirstKanaName)
	f.GenderText = strings.TrimSpace(f.GenderText)
	f.WorkplaceName = strings.TrimSpace(f.WorkplaceName)

	f.HomePostalCode = normalizeDigits(f.HomePostalCode)
	f.WorkplacePostalCode = normalizeDigits(f.WorkplacePostalCode)
	f.PhoneNumber = normalizeDigits(f.PhoneNumber)
	f.WorkplacePhoneNumber = normalizeDigits(f.WorkplacePhoneNumber)
}

func normalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '０' && r <= '９':
			b.WriteRune('0' + (r - '０'))
		case r == '-' || r == 'ー' || r == '−' || r == ' ' || r == '　':
			// separator, drop
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateConditional applies the rules that depend on other fields and
// returns a field-keyed validation error, or nil.
func (f *ProfileForm) ValidateConditional() error {
	fe := domainErrors.FieldErrors{}

	if !kanaPattern.MatchString(f.LastKanaName) {
		fe.Add("last_kana_name", "must be katakana")
	}
	if !kanaPattern.MatchString(f.FirstKanaName) {
		fe.Add("first_kana_name", "must be katakana")
	}

	if f.HasMiddleName == 1 && f.MiddleName == "" {
		fe.Add("middle_name", "is required")
	}
	if f.GenderCode == GenderCodeFreeText && f.GenderText == "" {
		fe.Add("gender_text", "is required")
	}

	if _, err := time.Parse("2006-01-02", f.BirthDate); err != nil {
		fe.Add("birth_date", "must be a valid date")
	}

	if f.PhoneNumber != "" && !phoneNumberPattern.MatchString(f.PhoneNumber) {
		fe.Add("phone_number", "has an invalid format")
	}

	// Postal format is checked only when the address came from postal
	// lookup; a manual selection bypasses it.
	if f.HomeIsAddressSelectedManually != 1 && !postalCodePattern.MatchString(f.HomePostalCode) {
		fe.Add("home_postal_code", "must be 7 digits")
	}

	if f.Employed() {
		if f.WorkplaceName == "" {
			fe.Add("workplace_name", "is required")
		}
		if f.WorkplacePrefectureCode < 1 || f.WorkplacePrefectureCode > 47 {
			fe.Add("workplace_prefecture_code", "is invalid")
		}
		if f.WorkplacePhoneNumber != "" && !phoneNumberPattern.MatchString(f.WorkplacePhoneNumber) {
			fe.Add("workplace_phone_number", "has an invalid format")
		}
		if f.WorkplaceIsAddressSelectedManually != 1 && !postalCodePattern.MatchString(f.WorkplacePostalCode) {
			fe.Add("workplace_postal_code", "must be 7 digits")
		}
	}

	return fe.AsError()
}

// Apply writes the form onto a user, nilling out every field whose governing
// predicate no longer holds so stale draft values cannot leak through.
func (f *ProfileForm) Apply(u *User) {
	u.LastName = f.LastName
	u.FirstName = f.FirstName
	u.HasMiddleName = f.HasMiddleName
	if f.HasMiddleName == 1 {
		u.MiddleName = strPtr(f.MiddleName)
	} else {
		u.MiddleName = nil
	}
	u.LastKanaName = f.LastKanaName
	u.FirstKanaName = f.FirstKanaName

	if bd, err := time.Parse("2006-01-02", f.BirthDate); err == nil {
		u.BirthDate = &bd
	}
	u.GenderCode = f.GenderCode
	if f.GenderCode == GenderCodeFreeText {
		u.GenderText = strPtr(f.GenderText)
	} else {
		u.GenderText = nil
	}

	u.PhoneNumber = optStr(f.PhoneNumber)

	u.HomeIsAddressSelectedManually = f.HomeIsAddressSelectedManually
	u.HomePostalCode = optStr(f.HomePostalCode)
	u.HomePrefectureCode = intPtr(f.HomePrefectureCode)
	u.HomeMasterCityID = optInt64(f.HomeMasterCityID)
	u.HomeAddressTown = optStr(f.HomeAddressTown)
	u.HomeAddressLater = optStr(f.HomeAddressLater)

	u.EmploymentStatus = f.EmploymentStatus
	if f.Employed() {
		u.WorkplaceName = strPtr(f.WorkplaceName)
		u.WorkplacePhoneNumber = optStr(f.WorkplacePhoneNumber)
		u.WorkplaceIsAddressSelectedManually = intPtr(f.WorkplaceIsAddressSelectedManually)
		u.WorkplacePostalCode = optStr(f.WorkplacePostalCode)
		u.WorkplacePrefectureCode = optInt(f.WorkplacePrefectureCode)
		u.WorkplaceMasterCityID = optInt64(f.WorkplaceMasterCityID)
		u.WorkplaceAddressTown = optStr(f.WorkplaceAddressTown)
		u.WorkplaceAddressLater = optStr(f.WorkplaceAddressLater)
	} else {
		u.WorkplaceName = nil
		u.WorkplacePhoneNumber = nil
		u.WorkplaceIsAddressSelectedManually = nil
		u.WorkplacePostalCode = nil
		u.WorkplacePrefectureCode = nil
		u.WorkplaceMasterCityID = nil
		u.WorkplaceAddressTown = nil
		u.WorkplaceAddressLater = nil
	}
}

func strPtr(s string) *string { return &s }

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(v int) *int { return &v }

func optInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func optInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
