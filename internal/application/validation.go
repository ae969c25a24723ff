package application

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/hernanharco/authcenter-backend/internal/domain"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var usernameRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(3, 50),
	validation.Match(usernamePattern).Error("may contain only letters, digits, underscore and hyphen"),
}

var emailRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(3, 255),
	is.Email,
}

var fullNameRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(2, 100),
}

var passwordRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(8, 128),
	validation.By(passwordComplexity),
}

// passwordComplexity requires at least one upper-case letter, one lower-case
// letter and one digit.
func passwordComplexity(value interface{}) error {
	password, _ := value.(string)
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.New("must contain an upper-case letter, a lower-case letter and a digit")
	}
	return nil
}

func matches(other string) validation.RuleFunc {
	return func(value interface{}) error {
		v, _ := value.(string)
		if v != other {
			return errors.New("passwords do not match")
		}
		return nil
	}
}

func invalidInput(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func normalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeFullName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// validateCreate normalizes req in place and checks every field.
func validateCreate(req *CreateAccountRequest) (domain.Role, domain.Status, error) {
	req.Username = normalizeUsername(req.Username)
	req.Email = normalizeEmail(req.Email)
	req.FullName = normalizeFullName(req.FullName)

	err := validation.Errors{
		"username":         validation.Validate(req.Username, usernameRules...),
		"email":            validation.Validate(req.Email, emailRules...),
		"full_name":        validation.Validate(req.FullName, fullNameRules...),
		"password":         validation.Validate(req.Password, passwordRules...),
		"confirm_password": validation.Validate(req.ConfirmPassword, validation.Required, validation.By(matches(req.Password))),
	}.Filter()
	if err != nil {
		return "", "", invalidInput(err)
	}

	role := domain.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return "", "", err
		}
		role = parsed
	}
	status := domain.StatusPending
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := domain.ParseStatus(req.Status)
		if err != nil {
			return "", "", err
		}
		status = parsed
	}
	return role, status, nil
}

func validateUpdate(req *UpdateAccountRequest) error {
	errs := validation.Errors{}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
		errs["email"] = validation.Validate(email, emailRules...)
	}
	if req.FullName != nil {
		name := normalizeFullName(*req.FullName)
		req.FullName = &name
		errs["full_name"] = validation.Validate(name, fullNameRules...)
	}
	if req.Role != nil {
		if _, err := domain.ParseRole(*req.Role); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if _, err := domain.ParseStatus(*req.Status); err != nil {
			return err
		}
	}
	return invalidInput(errs.Filter())
}

func validatePassword(req SetPasswordRequest) error {
	return invalidInput(validation.Errors{
		"password":         validation.Validate(req.Password, passwordRules...),
		"confirm_password": validation.Validate(req.ConfirmPassword, validation.Required, validation.By(matches(req.Password))),
	}.Filter())
}
