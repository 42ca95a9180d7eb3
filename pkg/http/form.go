package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	apperrors "petcare/pkg/errors"
	"strconv"
	"strings"
)

const maxMultipartMemory = 8 << 20

// Values is a flat view over a urlencoded form, a multipart form or a JSON object body.
type Values struct {
	url.Values
}

func ReadValues(r *http.Request) (Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		values, err := decodeJSONValues(r)
		if err != nil {
			return Values{}, err
		}
		for k, v := range r.URL.Query() {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
		return Values{values}, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return Values{}, apperrors.InvalidInput("Invalid form data")
		}
	default:
		if err := r.ParseForm(); err != nil {
			return Values{}, apperrors.InvalidInput("Invalid form data")
		}
	}
	return Values{r.Form}, nil
}

func decodeJSONValues(r *http.Request) (url.Values, error) {
	values := url.Values{}
	if r.Body == nil || r.Body == http.NoBody {
		return values, nil
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, apperrors.InvalidInput("Invalid request body")
	}

	for key, raw := range body {
		switch v := raw.(type) {
		case nil:
		case []any:
			for _, item := range v {
				values.Add(key, scalarString(item))
			}
		default:
			values.Set(key, scalarString(v))
		}
	}
	return values, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func (v Values) String(key string) string {
	return strings.TrimSpace(v.Get(key))
}

func (v Values) Int(key string, fallback int) int {
	s := v.String(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// Float returns ok=false when the key is missing or not a number.
func (v Values) Float(key string) (float64, bool) {
	s := v.String(key)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool treats checkbox values ("on"), "true", "1" and "yes" as set.
func (v Values) Bool(key string) bool {
	switch strings.ToLower(v.String(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (v Values) Has(key string) bool {
	_, ok := v.Values[key]
	return ok
}

// Strings collects repeated keys and splits comma or newline separated entries.
func (v Values) Strings(key string) []string {
	var out []string
	for _, raw := range v.Values[key] {
		for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' }) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
