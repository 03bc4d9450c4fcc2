package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPen indicates a pen payload is missing required fields.
var ErrInvalidPen = errors.New("invalid pen")

// Pen is a physical enclosure. A nil AllowedCategory means the pen is still
// flexible and will adopt the category of the first animal assigned to it.
type Pen struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	AllowedCategory *Category `json:"allowedLivestockType"`
}

// Flexible reports whether the pen has no category restriction yet.
func (p Pen) Flexible() bool {
	return p.AllowedCategory == nil
}

// Validate checks required pen fields.
func (p Pen) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPen)
	}
	if p.AllowedCategory != nil && !p.AllowedCategory.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidPen, *p.AllowedCategory)
	}
	return nil
}

// Clone returns a copy that does not share the AllowedCategory pointer.
func (p Pen) Clone() Pen {
	out := p
	if p.AllowedCategory != nil {
		c := *p.AllowedCategory
		out.AllowedCategory = &c
	}
	return out
}

// CategoryPtr is a small helper for building pens with a restriction.
func CategoryPtr(c Category) *Category {
	return &c
}
