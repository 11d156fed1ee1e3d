package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// errorResponse is the envelope returned on every 4xx/5xx response.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	Success bool  `json:"success"`
	UserID  int64 `json:"userId"`
}

type loginRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Token    string `json:"token"`
	UserName string `json:"userName"`
	UserID   int64  `json:"userId"`
}

// --- Tasks ---

// userID decodes a JSON number or a numeric string. The browser client
// keeps ids as strings, so both forms arrive. null, "" and 0 decode to 0,
// which the service treats as missing.
type userID int64

func (id *userID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}

	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*id = 0
			return nil
		}
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("user_id must be an integer, got %s", b)
	}
	*id = userID(n)
	return nil
}

type createTaskRequest struct {
	Text   string `json:"text"`
	UserID userID `json:"user_id"`
}

type createTaskResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	CreateID int64  `json:"createid"`
}

type listTasksRequest struct {
	UserID userID `json:"user_id"`
}

type taskResponse struct {
	CreateID int64  `json:"createid"`
	Text     string `json:"text"`
	Status   bool   `json:"status"`
}

type listTasksResponse struct {
	Success bool           `json:"success"`
	Tasks   []taskResponse `json:"tasks"`
}
