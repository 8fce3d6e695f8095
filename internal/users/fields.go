package users

import (
	"encoding/json"
)

// Fields is a decoded JSON object body keyed by member name
type Fields map[string]json.RawMessage

// User builds a record from the body of a create or replace request.
// A submitted id is ignored; the store owns id assignment.
func (f Fields) User() (User, error) {
	u, err := f.user()
	if err != nil {
		return User{}, err
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

func (f Fields) user() (User, error) {
	var u User
	for key, raw := range f {
		switch key {
		case "id":
		case "name":
			if err := decodeString(raw, &u.Name); err != nil {
				return User{}, ErrNameEmailRequired.Wrap(err)
			}
		case "email":
			if err := decodeString(raw, &u.Email); err != nil {
				return User{}, ErrNameEmailRequired.Wrap(err)
			}
		default:
			if u.Extra == nil {
				u.Extra = make(map[string]json.RawMessage)
			}
			u.Extra[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return u, nil
}

// apply shallow-merges f onto u. Name and email, when present, must stay
// non-empty strings.
func (f Fields) apply(u *User) error {
	for key, raw := range f {
		switch key {
		case "id":
		case "name", "email":
			var s string
			if err := decodeString(raw, &s); err != nil || s == "" {
				return ErrInvalidMerge
			}
			if key == "name" {
				u.Name = s
			} else {
				u.Email = s
			}
		default:
			if u.Extra == nil {
				u.Extra = make(map[string]json.RawMessage)
			}
			u.Extra[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return nil
}

// decodeString accepts a JSON string; null decodes to the empty string
func decodeString(raw json.RawMessage, dst *string) error {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	if s != nil {
		*dst = *s
	}
	return nil
}
