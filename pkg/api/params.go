package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
)

// query wraps the url query values and records the first parse error
type query struct {
	r   *http.Request
	err error
}

func newQuery(r *http.Request) *query {
	return &query{r: r}
}

func (q *query) str(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

func (q *query) required(name string) string {
	v := q.str(name)
	if v == "" && q.err == nil {
		q.err = model.ValidationError("parameter %s is required", name)
	}
	return v
}

func (q *query) int(name string, def int) int {
	v := q.str(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil && q.err == nil {
		q.err = model.ValidationError("parameter %s: %q is not an integer", name, v)
	}
	return i
}

func (q *query) float(name string, def float64) float64 {
	v := q.str(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && q.err == nil {
		q.err = model.ValidationError("parameter %s: %q is not a number", name, v)
	}
	return f
}

func (q *query) sessionKey() provider.SessionKey {
	key := provider.SessionKey{
		Year:    q.int("year", 0),
		Event:   q.required("event"),
		Session: q.str("session"),
	}
	if key.Session == "" {
		key.Session = "R"
	}
	if q.err == nil {
		q.err = key.Validate()
	}
	return key
}
