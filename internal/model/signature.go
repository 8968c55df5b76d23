package model

import (
	"time"
)

// FieldKind distinguishes full signatures from initials.
type FieldKind string

const (
	KindSignature FieldKind = "signature"
	KindInitial   FieldKind = "initial"
)

// Valid reports whether k is a known kind.
func (k FieldKind) Valid() bool {
	return k == KindSignature || k == KindInitial
}

// FieldStatus is the lifecycle of a placed field. Signed and declined are
// terminal.
type FieldStatus string

const (
	StatusPending  FieldStatus = "pending"
	StatusSigned   FieldStatus = "signed"
	StatusDeclined FieldStatus = "declined"
)

// Terminal reports whether s can no longer change.
func (s FieldStatus) Terminal() bool {
	return s == StatusSigned || s == StatusDeclined
}

// Position is a normalized coordinate in percent of the page width (X) and
// height (Y).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InBounds reports whether both axes lie in [0,100].
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X <= 100 && p.Y >= 0 && p.Y <= 100
}

// SignatureField is a field placed on one page of one document.
type SignatureField struct {
	ID         string      `json:"_id"`
	DocumentID string      `json:"documentId"`
	Page       int         `json:"page"`
	Position   Position    `json:"position"`
	Kind       FieldKind   `json:"kind,omitempty"`
	Status     FieldStatus `json:"status"`
	// Value holds typed text or an image data URL.
	Value    string     `json:"signatureData,omitempty"`
	SignedBy string     `json:"signedBy,omitempty"`
	SignedAt *time.Time `json:"signedAt,omitempty"`
}

// ValueType tags a SignatureValue.
type ValueType string

const (
	ValueText  ValueType = "text"
	ValueImage ValueType = "image"
)

// SignatureValue is produced by a capture and copied into a field when it is
// placed. It is never persisted on its own.
type SignatureValue struct {
	Type  ValueType `json:"type"`
	Value string    `json:"value"`
}

// Empty reports whether v carries nothing.
func (v SignatureValue) Empty() bool { return v.Value == "" }
