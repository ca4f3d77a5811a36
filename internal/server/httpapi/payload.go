package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
)

// payload is the merged view of a request's JSON body and query string.
// Body keys win; query parameters only fill the gaps. Numbers are decoded
// with json.Number so a PIN sent as 123456 is not mangled into 1.23456e5.
type payload map[string]any

func parsePayload(c *gin.Context) payload {
	p := payload{}

	if c.Request.Method != http.MethodGet &&
		strings.Contains(c.ContentType(), "application/json") {
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		// a malformed body is treated as empty, validation rejects it later
		_ = dec.Decode(&p)
	}

	for k, vs := range c.Request.URL.Query() {
		if _, ok := p[k]; !ok && len(vs) > 0 {
			p[k] = vs[0]
		}
	}

	return p
}

// str coerces a payload value to its string form, the way query parameters
// arrive anyway. Missing keys yield "".
func (p payload) str(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// empID returns the employee id, accepting the shorter "emp" alias that
// deployed frontends send alongside newer clients' "emp_id".
func (p payload) empID() string {
	if v := p.str("emp_id"); v != "" {
		return v
	}
	return p.str("emp")
}

// action returns the explicit action key, lowercased, and removes it so it
// never shadows a payload field.
func (p payload) action() string {
	a := strings.ToLower(strings.TrimSpace(p.str("action")))
	delete(p, "action")
	return a
}

// seedRecords extracts the batch from a seed payload. A payload without a
// records array is treated as a single inline record, which keeps one-off
// curl invocations simple.
func (p payload) seedRecords() []models.SeedRecord {
	raw, ok := p["records"].([]any)
	if !ok {
		return []models.SeedRecord{recordFrom(p)}
	}

	records := make([]models.SeedRecord, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			records = append(records, models.SeedRecord{})
			continue
		}
		records = append(records, recordFrom(payload(obj)))
	}
	return records
}

func recordFrom(p payload) models.SeedRecord {
	return models.SeedRecord{
		EmpID:    p.empID(),
		PIN:      p.str("pin"),
		DeviceID: p.str("device_id"),
	}
}

// bearerToken pulls a token from the Authorization header, tolerating any
// casing of the scheme, falling back to the token payload field.
func bearerToken(c *gin.Context, p payload) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return strings.TrimSpace(p.str("token"))
}
