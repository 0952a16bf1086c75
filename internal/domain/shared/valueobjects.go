package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Email Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Email is a normalized (trimmed, lowercased) e-mail address.
type Email string

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NewEmail validates and normalizes an address.
func NewEmail(value string) (Email, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", NewDomainError("shared", "NewEmail", ErrDomainRule, "Email is required")
	}
	if !emailRegex.MatchString(v) {
		return "", NewDomainError("shared", "NewEmail", ErrDomainRule, fmt.Sprintf("Email '%s' is not valid", v))
	}
	return Email(strings.ToLower(v)), nil
}

// IsValidEmail reports whether the value looks like an e-mail address.
func IsValidEmail(value string) bool {
	return emailRegex.MatchString(strings.TrimSpace(value))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// ═══════════════════════════════════════════════════════════════════════════
// Phone Number Value Object
// ═══════════════════════════════════════════════════════════════════════════

// PhoneNumber is a local 8-digit phone number with separators stripped.
type PhoneNumber string

var (
	nonDigitRegex = regexp.MustCompile(`\D`)
	phoneRegex    = regexp.MustCompile(`^\d{8}$`)
)

// NewPhoneNumber strips non-digits and checks the local format.
func NewPhoneNumber(value string) (PhoneNumber, error) {
	digits := nonDigitRegex.ReplaceAllString(value, "")
	if digits == "" {
		return "", NewDomainError("shared", "NewPhoneNumber", ErrDomainRule, "Phone number is required")
	}
	if !phoneRegex.MatchString(digits) {
		return "", NewDomainError("shared", "NewPhoneNumber", ErrDomainRule, "Phone number must be 8 digits")
	}
	return PhoneNumber(digits), nil
}

// IsValidLocalPhone reports whether the raw value is exactly 8 digits.
func IsValidLocalPhone(value string) bool {
	return phoneRegex.MatchString(value)
}

// String returns the string representation.
func (p PhoneNumber) String() string {
	return string(p)
}

// Formatted returns the number as "XXXX-XXXX".
func (p PhoneNumber) Formatted() string {
	if len(p) != 8 {
		return string(p)
	}
	return string(p[:4]) + "-" + string(p[4:])
}

// ═══════════════════════════════════════════════════════════════════════════
// Address Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Address is a postal address split by administrative level.
type Address struct {
	Province string `json:"province"`
	Canton   string `json:"canton"`
	District string `json:"district"`
	Detailed string `json:"detailed,omitempty"`
}

// NewAddress validates the required administrative parts.
func NewAddress(province, canton, district, detailed string) (Address, error) {
	a := Address{
		Province: strings.TrimSpace(province),
		Canton:   strings.TrimSpace(canton),
		District: strings.TrimSpace(district),
		Detailed: strings.TrimSpace(detailed),
	}
	switch {
	case a.Province == "":
		return Address{}, NewDomainError("shared", "NewAddress", ErrDomainRule, "Province is required")
	case a.Canton == "":
		return Address{}, NewDomainError("shared", "NewAddress", ErrDomainRule, "Canton is required")
	case a.District == "":
		return Address{}, NewDomainError("shared", "NewAddress", ErrDomainRule, "District is required")
	}
	return a, nil
}

// IsZero reports whether no address has been set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Full returns "Province, Canton, District. Detailed".
func (a Address) Full() string {
	if a.IsZero() {
		return ""
	}
	full := fmt.Sprintf("%s, %s, %s", a.Province, a.Canton, a.District)
	if a.Detailed != "" {
		full += ". " + a.Detailed
	}
	return full
}

// ═══════════════════════════════════════════════════════════════════════════
// Grade Level
// ═══════════════════════════════════════════════════════════════════════════

// GradeLevel is the school year a student or section belongs to.
type GradeLevel int

const (
	GradeMaternal GradeLevel = iota
	GradePreKinder
	GradeKinder
	GradePreparatoria
	GradePrimero
	GradeSegundo
	GradeTercero
	GradeCuarto
	GradeQuinto
	GradeSexto
	GradeSeptimo
	GradeOctavo
	GradeNoveno
	GradeDecimo
	GradeUndecimo
	GradeDuodecimo
)

var gradeLevelNames = [...]string{
	"Maternal", "PreKinder", "Kinder", "Preparatoria",
	"Primero", "Segundo", "Tercero", "Cuarto", "Quinto", "Sexto",
	"Septimo", "Octavo", "Noveno", "Decimo", "Undecimo", "Duodecimo",
}

// IsValid checks if the grade level is a known value.
func (g GradeLevel) IsValid() bool {
	return g >= GradeMaternal && g <= GradeDuodecimo
}

// String returns the level name.
func (g GradeLevel) String() string {
	if !g.IsValid() {
		return fmt.Sprintf("GradeLevel(%d)", int(g))
	}
	return gradeLevelNames[g]
}

// ═══════════════════════════════════════════════════════════════════════════
// Names
// ═══════════════════════════════════════════════════════════════════════════

// FullName joins first and last name.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// Require trims value and fails with message when nothing is left.
func Require(domain, op, value, message string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", RuleViolation(domain, op, message)
	}
	return v, nil
}
