// Package model contains the plain data types shared across the client
// packages. They mirror the JSON documents exchanged with the API.
package model

import (
	"time"
)

// Document is an uploaded PDF. It never changes after upload; finalizing
// produces a new Document holding the signed output.
type Document struct {
	ID           string    `json:"_id"`
	OriginalName string    `json:"originalName"`
	// FilePath is the server relative location of the file, e.g.
	// /uploads/1700000000-contract.pdf.
	FilePath  string    `json:"filePath"`
	Owner     string    `json:"owner,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShareGrant lets a recipient read and sign one document without logging in.
type ShareGrant struct {
	Token       string     `json:"token"`
	DocumentID  string     `json:"documentId"`
	SignerEmail string     `json:"signerEmail"`
	// ExpiresAt is nil for grants that never expire.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	ShareLink string     `json:"shareLink,omitempty"`
}

// Expired reports whether the grant is past its expiry at now.
func (g ShareGrant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && !now.Before(*g.ExpiresAt)
}

// AuditEntry is one row of the owner's audit log.
type AuditEntry struct {
	ID         string    `json:"_id"`
	Action     string    `json:"action"`
	DocumentID string    `json:"documentId,omitempty"`
	User       string    `json:"user,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
