package dashboard

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ativarub/rollout/internal/report"
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id %q", raw)
	}
	return uint(id), nil
}

// queryID reads an optional positive integer query parameter. Absent or
// empty yields zero.
func queryID(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("%s must be a positive integer, got %q", key, raw)
	}
	return uint(id), nil
}

// parseFilter reads division_id and group_id.
func parseFilter(c *gin.Context) (report.Filter, error) {
	var f report.Filter
	var err error
	if f.DivisionID, err = queryID(c, "division_id"); err != nil {
		return f, err
	}
	if f.WorkGroupID, err = queryID(c, "group_id"); err != nil {
		return f, err
	}
	return f, nil
}

// input abstracts over form posts and JSON bodies. A JSON null and an
// empty form value both read as "" and clear nullable fields.
type input interface {
	value(key string) (v string, ok bool)
	values(key string) ([]string, bool)
}

type formInput url.Values

func (f formInput) value(key string) (string, bool) {
	vs, ok := f[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (f formInput) values(key string) ([]string, bool) {
	vs, ok := f[key]
	return vs, ok
}

type jsonInput map[string]json.RawMessage

func (j jsonInput) value(key string) (string, bool) {
	raw, ok := j[key]
	if !ok {
		return "", false
	}
	return scalar(raw), true
}

func (j jsonInput) values(key string) ([]string, bool) {
	raw, ok := j[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := scalar(raw); s != "" {
			return []string{s}, true
		}
		return nil, true
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, scalar(it))
	}
	return out, true
}

// scalar renders a JSON value as form-style text: strings unquoted, null
// as "", anything else verbatim.
func scalar(raw json.RawMessage) string {
	t := strings.TrimSpace(string(raw))
	if t == "null" {
		return ""
	}
	if strings.HasPrefix(t, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return t
}

// bindJSON decodes the request body as a JSON object.
func bindJSON(c *gin.Context) (jsonInput, error) {
	var m map[string]json.RawMessage
	if err := c.ShouldBindJSON(&m); err != nil {
		return nil, badRequest("invalid JSON body: %v", err)
	}
	if m == nil {
		return nil, badRequest("request body must be a JSON object")
	}
	return jsonInput(m), nil
}

// bindForm parses the posted form.
func bindForm(c *gin.Context) (formInput, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, badRequest("invalid form: %v", err)
	}
	return formInput(c.Request.PostForm), nil
}

func getString(in input, key string) string {
	v, _ := in.value(key)
	return v
}

func optString(in input, key string) *string {
	v, ok := in.value(key)
	if !ok {
		return nil
	}
	return &v
}

func parseUint(key, raw string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, badRequest("%s must be a positive integer, got %q", key, raw)
	}
	return uint(n), nil
}

// getUint reads a required reference; absent or empty yields zero.
func getUint(in input, key string) (uint, error) {
	v, ok := in.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, nil
	}
	return parseUint(key, v)
}

// optUint reads a nullable reference. clear is true for null or "".
func optUint(in input, key string) (id *uint, clear bool, err error) {
	v, ok := in.value(key)
	if !ok {
		return nil, false, nil
	}
	if strings.TrimSpace(v) == "" {
		return nil, true, nil
	}
	n, err := parseUint(key, v)
	if err != nil {
		return nil, false, err
	}
	return &n, false, nil
}

// uintList reads a list of ids, skipping blanks.
func uintList(in input, key string) ([]uint, bool, error) {
	vs, ok := in.values(key)
	if !ok {
		return nil, false, nil
	}
	var out []uint
	for _, v := range vs {
		if strings.TrimSpace(v) == "" {
			continue
		}
		n, err := parseUint(key, v)
		if err != nil {
			return nil, true, err
		}
		out = append(out, n)
	}
	return out, true, nil
}

// reqUint reads a required reference on update. A supplied null or ""
// yields a pointer to zero so the core reports the field as required.
func reqUint(in input, key string) (*uint, error) {
	id, clear, err := optUint(in, key)
	if clear {
		var zero uint
		return &zero, nil
	}
	return id, err
}

func getInt(in input, key string) (int, error) {
	p, err := optInt(in, key)
	if err != nil || p == nil {
		return 0, err
	}
	return *p, nil
}

// optInt reads an optional integer; empty counts as absent.
func optInt(in input, key string) (*int, error) {
	v, ok := in.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, badRequest("%s must be an integer, got %q", key, v)
	}
	return &n, nil
}

// getTime reads a required timestamp; absent or empty yields the zero time.
func getTime(in input, key string) (time.Time, error) {
	v, ok := in.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return time.Time{}, nil
	}
	return rollout.ParseTime(key, v)
}

// reqTime reads a required timestamp on update. A supplied null or ""
// yields a pointer to the zero time so the core rejects it.
func reqTime(in input, key string) (*time.Time, error) {
	t, clear, err := optTime(in, key)
	if clear {
		return &time.Time{}, nil
	}
	return t, err
}

// optTime reads a nullable timestamp. clear is true for null or "".
func optTime(in input, key string) (t *time.Time, clear bool, err error) {
	v, ok := in.value(key)
	if !ok {
		return nil, false, nil
	}
	if strings.TrimSpace(v) == "" {
		return nil, true, nil
	}
	parsed, err := rollout.ParseTime(key, v)
	if err != nil {
		return nil, false, err
	}
	return &parsed, false, nil
}
