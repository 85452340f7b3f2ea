package doli

import (
	"encoding/json"
	"fmt"
)

// Response is a parsed payload returned untouched by the API.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Decode unmarshals the payload into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return ErrEmptyResponse
	}

	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// Object decodes a JSON object payload.
func (r *Response) Object() (map[string]interface{}, error) {
	var out map[string]interface{}

	err := r.Decode(&out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Records decodes a JSON array of objects, the shape list endpoints return.
func (r *Response) Records() ([]map[string]interface{}, error) {
	var out []map[string]interface{}

	err := r.Decode(&out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// LoginResponse is the body returned by the login endpoint.
type LoginResponse struct {
	Success *LoginSuccess `json:"success,omitempty"`
}

// LoginSuccess holds the issued token. Code and Entity are kept raw since
// servers disagree on whether they are numbers or strings.
type LoginSuccess struct {
	Code    json.RawMessage `json:"code,omitempty"`
	Token   string          `json:"token,omitempty"`
	Entity  json.RawMessage `json:"entity,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Token returns the issued token or ErrLoginTokenMissing.
func (r *LoginResponse) Token() (string, error) {
	if r.Success == nil || r.Success.Token == "" {
		return "", ErrLoginTokenMissing
	}

	return r.Success.Token, nil
}
