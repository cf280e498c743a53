package review

import (
	"regexp"
	"strings"
)

// Field keys the Error Map. The values double as the wire/result keys, so
// they match the form's JSON field names.
type Field string

const (
	FieldInstallerName Field = "installerName"
	FieldFirstName     Field = "firstName"
	FieldLastName      Field = "lastName"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldPostCode      Field = "postCode"
)

// Section identifies a form section a failing field belongs to.
type Section string

const (
	SectionInstaller Section = "installer-section"
	SectionCustomer  Section = "customer-details"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe    = regexp.MustCompile(`^[\d\s+\-()]{8,20}$`)
	postCodeRe = regexp.MustCompile(`^[0-9a-zA-Z]{3,10}$`)
)

// Errors maps failing fields to human-readable messages. An empty map means
// the form may be submitted.
type Errors map[Field]string

// OK reports whether validation passed.
func (e Errors) OK() bool { return len(e) == 0 }

// FirstSection returns the section the user should be directed to. The
// installer section takes precedence over customer details when both have
// errors.
func (e Errors) FirstSection() Section {
	if _, ok := e[FieldInstallerName]; ok {
		return SectionInstaller
	}
	return SectionCustomer
}

// Validate runs the submission gate over a form snapshot. Only the installer
// name and the customer contact block are checked; ratings, system details,
// and component details are accepted as-is. The engine is a pure function:
// re-running it on the same snapshot yields the same map.
func Validate(f Form) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.InstallerName) == "" {
		errs[FieldInstallerName] = "Please select or enter an installer name"
	}

	c := f.Customer
	if strings.TrimSpace(c.FirstName) == "" {
		errs[FieldFirstName] = "First name is required"
	}
	if strings.TrimSpace(c.LastName) == "" {
		errs[FieldLastName] = "Last name is required"
	}

	if strings.TrimSpace(c.Email) == "" {
		errs[FieldEmail] = "Email address is required"
	} else if !emailRe.MatchString(c.Email) {
		errs[FieldEmail] = "Please enter a valid email address"
	}

	if strings.TrimSpace(c.Phone) == "" {
		errs[FieldPhone] = "Phone number is required"
	} else if !phoneRe.MatchString(c.Phone) {
		errs[FieldPhone] = "Please enter a valid phone number"
	}

	if strings.TrimSpace(c.PostCode) == "" {
		errs[FieldPostCode] = "Post code is required"
	} else if !postCodeRe.MatchString(c.PostCode) {
		errs[FieldPostCode] = "Please enter a valid post code"
	}

	return errs
}
