package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Address is an immutable postal address.
// Street, number, commune and region are required; apartment and postal code are optional.
type Address struct {
	street     string
	number     string
	apartment  string
	commune    string
	region     string
	postalCode string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithApartment sets the apartment / unit
func WithApartment(apartment string) AddressOption {
	return func(a *Address) {
		a.apartment = strings.TrimSpace(apartment)
	}
}

// WithPostalCode sets the postal code for the address
func WithPostalCode(postalCode string) AddressOption {
	return func(a *Address) {
		a.postalCode = strings.TrimSpace(postalCode)
	}
}

// NewAddress creates a new Address with the required fields
func NewAddress(street, number, commune, region string, opts ...AddressOption) (Address, error) {
	addr := Address{
		street:  strings.TrimSpace(street),
		number:  strings.TrimSpace(number),
		commune: strings.TrimSpace(commune),
		region:  strings.TrimSpace(region),
	}
	for _, opt := range opts {
		opt(&addr)
	}

	if err := requireLen("street", addr.street, 100); err != nil {
		return Address{}, err
	}
	if err := requireLen("number", addr.number, 10); err != nil {
		return Address{}, err
	}
	if err := requireLen("commune", addr.commune, 50); err != nil {
		return Address{}, err
	}
	if err := requireLen("region", addr.region, 50); err != nil {
		return Address{}, err
	}
	if utf8.RuneCountInString(addr.apartment) > 10 {
		return Address{}, fmt.Errorf("apartment cannot exceed 10 characters")
	}
	if utf8.RuneCountInString(addr.postalCode) > 10 {
		return Address{}, fmt.Errorf("postal code cannot exceed 10 characters")
	}
	return addr, nil
}

func requireLen(field, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if len(value) > max {
		return fmt.Errorf("%s cannot exceed %d characters", field, max)
	}
	return nil
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

func (a Address) Street() string     { return a.street }
func (a Address) Number() string     { return a.number }
func (a Address) Apartment() string  { return a.apartment }
func (a Address) Commune() string    { return a.commune }
func (a Address) Region() string     { return a.region }
func (a Address) PostalCode() string { return a.postalCode }

// IsEmpty returns true if the address is empty
func (a Address) IsEmpty() bool {
	return a.street == "" && a.number == "" && a.commune == "" && a.region == ""
}

// String formats the address as "Street 123, Apt 4B, Commune, Region"
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := []string{a.street + " " + a.number}
	if a.apartment != "" {
		parts = append(parts, "Apt "+a.apartment)
	}
	parts = append(parts, a.commune, a.region)
	if a.postalCode != "" {
		parts = append(parts, a.postalCode)
	}
	return strings.Join(parts, ", ")
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a == other
}

type addressJSON struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Apartment  string `json:"apartment,omitempty"`
	Commune    string `json:"commune"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Street:     a.street,
		Number:     a.number,
		Apartment:  a.apartment,
		Commune:    a.commune,
		Region:     a.region,
		PostalCode: a.postalCode,
	})
}

// UnmarshalJSON implements json.Unmarshaler, applying the NewAddress rules.
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Street == "" && v.Number == "" && v.Commune == "" && v.Region == "" {
		*a = EmptyAddress()
		return nil
	}
	addr, err := NewAddress(v.Street, v.Number, v.Commune, v.Region,
		WithApartment(v.Apartment), WithPostalCode(v.PostalCode))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
