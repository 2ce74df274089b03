package name

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TimestampLayout is the wire format of Record.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrNotFound          = errors.New("name not found")
	ErrLastNameRequired  = errors.New("lname is required")
	ErrFirstNameRequired = errors.New("fname is required")
	ErrLastNameMismatch  = errors.New("lname does not match the requested name")
)

// Record is one person in the names collection, keyed by last name.
type Record struct {
	LastName  string
	FirstName string
	Timestamp time.Time
}

type wireRecord struct {
	LastName  string `json:"lname"`
	FirstName string `json:"fname"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON emits the lname/fname/timestamp object served by the API.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		LastName:  r.LastName,
		FirstName: r.FirstName,
		Timestamp: r.Timestamp.Format(TimestampLayout),
	})
}

// UnmarshalJSON parses the API representation; the timestamp is read as local time.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var ts time.Time
	if w.Timestamp != "" {
		parsed, err := time.ParseInLocation(TimestampLayout, w.Timestamp, time.Local)
		if err != nil {
			return err
		}
		ts = parsed
	}

	*r = Record{LastName: w.LastName, FirstName: w.FirstName, Timestamp: ts}
	return nil
}

// CreateRequest is the POST body. Both fields must be present.
type CreateRequest struct {
	LastName  *string `json:"lname"`
	FirstName *string `json:"fname"`
}

// Validate reports the first missing field.
func (r CreateRequest) Validate() error {
	if r.LastName == nil || strings.TrimSpace(*r.LastName) == "" {
		return ErrLastNameRequired
	}
	if r.FirstName == nil {
		return ErrFirstNameRequired
	}
	return nil
}

// UpdateRequest is the PUT body. Absent fields keep their stored values.
type UpdateRequest struct {
	LastName  *string `json:"lname"`
	FirstName *string `json:"fname"`
}

// Validate rejects bodies that try to move the record to another key.
func (r UpdateRequest) Validate(lastName string) error {
	if r.LastName != nil && *r.LastName != lastName {
		return ErrLastNameMismatch
	}
	return nil
}

// FirstNameOrEmpty returns the requested first name, "" meaning unchanged.
func (r UpdateRequest) FirstNameOrEmpty() string {
	if r.FirstName == nil {
		return ""
	}
	return *r.FirstName
}

// Seed provides the records present when the service starts with an empty store.
func Seed() []Record {
	return []Record{
		{LastName: "Farrell", FirstName: "Doug"},
		{LastName: "Murphy", FirstName: "Kevin"},
		{LastName: "Easter", FirstName: "Bunny"},
		{LastName: "Burglar", FirstName: "Ham"},
		{LastName: "Nye", FirstName: "Bill"},
	}
}
