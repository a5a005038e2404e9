package comments

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Mentions is the "mentioned" field of a new comment. Clients send a single
// id, an array of ids, an empty string, or null.
type Mentions []string

func (m *Mentions) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = nil
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*m = nil
		} else {
			*m = Mentions{s}
		}
		return nil
	case '[':
		var ss []string
		if err := json.Unmarshal(b, &ss); err != nil {
			return err
		}
		*m = ss
		return nil
	}
	return errors.New("mentioned must be a user id or a list of user ids")
}
