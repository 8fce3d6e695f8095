package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// User is a stored record. Fields the caller sends beyond id, name and
// email are kept verbatim in Extra.
type User struct {
	ID    int64                      `json:"id"`
	Name  string                     `json:"name" validate:"required"`
	Email string                     `json:"email" validate:"required"`
	Extra map[string]json.RawMessage `json:"-"`
}

// Validate checks the required fields of the record
func (u User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return ErrNameEmailRequired.Wrap(err)
	}
	return nil
}

// Clone returns a deep copy so callers never share Extra with the store
func (u User) Clone() User {
	out := u
	if u.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(u.Extra))
		for k, v := range u.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// MarshalJSON writes id, name and email first, then extra fields in key order
func (u User) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	fmt.Fprintf(&buf, "%d", u.ID)

	for _, kv := range []struct {
		key string
		val string
	}{{"name", u.Name}, {"email", u.Email}} {
		v, err := json.Marshal(kv.val)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"` + kv.key + `":`)
		buf.Write(v)
	}

	keys := make([]string, 0, len(u.Extra))
	for k := range u.Extra {
		if isReserved(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		raw := u.Extra[k]
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a record, routing unknown members into Extra
func (u *User) UnmarshalJSON(data []byte) error {
	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &u.ID); err != nil {
			return fmt.Errorf("id: %w", err)
		}
	}
	rec, err := fields.user()
	if err != nil {
		return err
	}
	u.Name, u.Email, u.Extra = rec.Name, rec.Email, rec.Extra
	return nil
}

func isReserved(key string) bool {
	return key == "id" || key == "name" || key == "email"
}
