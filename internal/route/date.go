package route

import (
	"encoding/json"
	"fmt"
	"time"
	_ "time/tzdata"
)

// Location is the timezone every publication date is normalized to.
var Location = mustLoadLocation("Europe/Sofia")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("loading %s: %v", name, err))
	}
	return loc
}

// Dataset files written before offsets were recorded carry naive local times.
const naiveLayout = "2006-01-02T15:04:05"

// ParseDate reads a stored date. RFC 3339 is preferred; a date without an
// offset is taken to be in Location.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

type recordAlias Record

// UnmarshalJSON decodes a record, accepting both date forms ParseDate does.
func (r *Record) UnmarshalJSON(data []byte) error {
	aux := struct {
		*recordAlias
		Date string `json:"date"`
	}{recordAlias: (*recordAlias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		return fmt.Errorf("route %q: missing date", r.Name)
	}
	t, err := ParseDate(aux.Date)
	if err != nil {
		return fmt.Errorf("route %q: %w", r.Name, err)
	}
	r.Date = t
	return nil
}
