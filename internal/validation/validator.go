package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"omr-eval/internal/domain"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
	maxNameLength     = 200
	maxStudentIDLen   = 64
)

var (
	validULID      = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	validEmail     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	validStudentID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Validator provides request validation functionality
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateSignup(name, email, password string) domain.ValidationErrors {
	errs := v.validateName("name", name, true)
	errs = append(errs, v.validateCredentials(email, password)...)
	if n := len(password); n > 0 && (n < minPasswordLength || n > maxPasswordLength) {
		errs = append(errs, domain.NewOutOfRangeError("password", n, minPasswordLength, maxPasswordLength))
	}
	return errs
}

func (v *Validator) ValidateLogin(email, password string) domain.ValidationErrors {
	return v.validateCredentials(email, password)
}

func (v *Validator) ValidateBatchName(name string) domain.ValidationErrors {
	return v.validateName("name", name, true)
}

// ValidateBatchID checks path parameters before they reach the database.
func (v *Validator) ValidateBatchID(batchID string) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(batchID) == "" {
		errs = append(errs, domain.NewMissingFieldError("batch_id"))
	} else if !validULID.MatchString(batchID) {
		errs = append(errs, domain.NewInvalidFormatError("batch_id", batchID))
	}
	return errs
}

// ValidateStudent checks the metadata sent with a single sheet. The name is optional.
func (v *Validator) ValidateStudent(studentID, name string) domain.ValidationErrors {
	errs := v.ValidateStudentID(studentID)
	return append(errs, v.validateName("name", name, false)...)
}

func (v *Validator) ValidateStudentID(studentID string) domain.ValidationErrors {
	var errs domain.ValidationErrors
	studentID = strings.TrimSpace(studentID)
	switch {
	case studentID == "":
		errs = append(errs, domain.NewMissingFieldError("student_id"))
	case len(studentID) > maxStudentIDLen:
		errs = append(errs, domain.NewOutOfRangeError("student_id", len(studentID), 1, maxStudentIDLen))
	case !validStudentID.MatchString(studentID):
		errs = append(errs, domain.NewInvalidFormatError("student_id", studentID))
	}
	return errs
}

func (v *Validator) validateCredentials(email, password string) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(email) == "" {
		errs = append(errs, domain.NewMissingFieldError("email"))
	} else if !validEmail.MatchString(strings.TrimSpace(email)) {
		errs = append(errs, domain.NewInvalidFormatError("email", email))
	}
	if password == "" {
		errs = append(errs, domain.NewMissingFieldError("password"))
	}
	return errs
}

func (v *Validator) validateName(field, name string, required bool) domain.ValidationErrors {
	var errs domain.ValidationErrors
	name = strings.TrimSpace(name)
	if name == "" {
		if required {
			errs = append(errs, domain.NewMissingFieldError(field))
		}
		return errs
	}
	if n := utf8.RuneCountInString(name); n > maxNameLength {
		errs = append(errs, domain.NewOutOfRangeError(field, n, 1, maxNameLength))
	}
	return errs
}
