package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the timestamp format written to the store document.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Reserved attribute names. They live in Record fields, not in Attributes.
const (
	AttrClass     = "__class__"
	AttrID        = "id"
	AttrCreatedAt = "created_at"
	AttrUpdatedAt = "updated_at"
)

var reservedAttributes = map[string]bool{
	AttrClass:     true,
	AttrID:        true,
	AttrCreatedAt: true,
	AttrUpdatedAt: true,
}

// IsReserved reports whether name is one of the record's own fields.
func IsReserved(name string) bool {
	return reservedAttributes[name]
}

// Record is a typed object identified by (Class, ID).
type Record struct {
	Class      string         // Registered class name.
	ID         string         // UUID v4, generated on creation.
	CreatedAt  time.Time      // Timestamp of creation.
	UpdatedAt  time.Time      // Timestamp of last save.
	Attributes map[string]any // Free-form attributes keyed by name.
}

// now returns the current time at the precision the document keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NewRecord creates a record of the given class with a fresh id.
// Returns ErrUnknownClass if class is not registered.
func NewRecord(class string) (*Record, error) {
	if !IsClass(class) {
		return nil, ErrUnknownClass
	}
	ts := now()
	return &Record{
		Class:      class,
		ID:         uuid.New().String(),
		CreatedAt:  ts,
		UpdatedAt:  ts,
		Attributes: make(map[string]any),
	}, nil
}

// RecordKey builds the composite store key for class and id.
func RecordKey(class, id string) string {
	return class + "." + id
}

// Key returns the composite store key "ClassName.id".
func (r *Record) Key() string {
	return RecordKey(r.Class, r.ID)
}

// Set assigns an attribute value.
// Returns ErrReservedAttribute for id, timestamps and __class__, and
// ErrInvalidData for an empty name.
func (r *Record) Set(name string, value any) error {
	if name == "" {
		return ErrInvalidData
	}
	if IsReserved(name) {
		return ErrReservedAttribute
	}
	if r.Attributes == nil {
		r.Attributes = make(map[string]any)
	}
	r.Attributes[name] = value
	return nil
}

// Get returns an attribute value and whether it is set.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Touch refreshes UpdatedAt.
func (r *Record) Touch() {
	r.UpdatedAt = now()
}

// ToMap returns the flat document form of the record: every attribute plus
// __class__, id, created_at and updated_at.
func (r *Record) ToMap() map[string]any {
	m := make(map[string]any, len(r.Attributes)+4)
	for k, v := range r.Attributes {
		m[k] = v
	}
	m[AttrClass] = r.Class
	m[AttrID] = r.ID
	m[AttrCreatedAt] = r.CreatedAt.Format(TimeLayout)
	m[AttrUpdatedAt] = r.UpdatedAt.Format(TimeLayout)
	return m
}

// FromMap rebuilds a record from its flat document form.
// Returns ErrInvalidData when __class__ or id is missing or a timestamp does
// not parse, and ErrUnknownClass for an unregistered class.
func FromMap(m map[string]any) (*Record, error) {
	class, _ := m[AttrClass].(string)
	id, _ := m[AttrID].(string)
	if class == "" || id == "" {
		return nil, fmt.Errorf("missing %s or %s: %w", AttrClass, AttrID, ErrInvalidData)
	}
	if !IsClass(class) {
		return nil, fmt.Errorf("class %q: %w", class, ErrUnknownClass)
	}

	r := &Record{
		Class:      class,
		ID:         id,
		Attributes: make(map[string]any, len(m)),
	}

	var err error
	if r.CreatedAt, err = timeField(m, AttrCreatedAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = timeField(m, AttrUpdatedAt); err != nil {
		return nil, err
	}

	for k, v := range m {
		if IsReserved(k) {
			continue
		}
		r.Attributes[k] = v
	}
	return r, nil
}

// timeField parses a timestamp attribute. An absent field yields the
// current time.
func timeField(m map[string]any, name string) (time.Time, error) {
	raw, ok := m[name]
	if !ok || raw == nil {
		return now(), nil
	}
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%s is not a string: %w", name, ErrInvalidData)
	}
	return ParseTime(s)
}

// ParseTime accepts TimeLayout and RFC 3339 timestamps.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, ErrInvalidData)
	}
	return t.UTC(), nil
}

// String renders "[ClassName] (id) {attributes}" with the attributes as a
// JSON object sorted by key.
func (r *Record) String() string {
	m := r.ToMap()
	delete(m, AttrClass)
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("[%s] (%s) %v", r.Class, r.ID, m)
	}
	return fmt.Sprintf("[%s] (%s) %s", r.Class, r.ID, body)
}

// MarshalJSON encodes the record in its flat document form.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON decodes a record from its flat document form.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	rec, err := FromMap(m)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}
