package telegram

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// WebAppUser is the user object embedded in Telegram WebApp init_data.
type WebAppUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url"`
}

// ParseUser extracts the user object from an init_data query string.
func ParseUser(initData string) (*WebAppUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}
	return UserFromValues(values)
}

// UserFromValues extracts the user object from already-parsed init_data
// values (e.g. the output of init_data validation).
func UserFromValues(values url.Values) (*WebAppUser, error) {
	var user WebAppUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ReferrerFromStartParam reads the referring account id from the startapp
// payload ("start_param" inside init_data). Returns 0 when absent or not a
// number; the share link puts the bare account id there.
func ReferrerFromStartParam(values url.Values) int64 {
	param := values.Get("start_param")
	if param == "" {
		return 0
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
