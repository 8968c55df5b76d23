// Package apitest runs an in-memory double of the e-signature API for tests.
// It implements the endpoints the client uses with the same JSON shapes and
// status codes, and counts requests so tests can assert that no call was
// issued.
package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// Server is the fake API. Zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	users    map[string]string // email -> password
	docs     map[string]*model.Document
	files    map[string][]byte // file path -> bytes
	grants   map[string]*model.ShareGrant
	fields   []*model.SignatureField
	audit    []model.AuditEntry
	hits     map[string]int
	failures map[string]int // route -> status to return once
}

// New starts the fake API. Close it with Close.
func New() *Server {
	s := &Server{
		secret:   []byte(randomID()),
		users:    make(map[string]string),
		docs:     make(map[string]*model.Document),
		files:    make(map[string][]byte),
		grants:   make(map[string]*model.ShareGrant),
		hits:     make(map[string]int),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// APIURL is the base URL clients should use.
func (s *Server) APIURL() string { return s.URL + "/api" }

// FileURL returns the absolute URL of a stored file path.
func (s *Server) FileURL(filePath string) string { return s.URL + filePath }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/docs/upload", s.requireAuth(s.handleUpload))
	mux.HandleFunc("GET /api/docs", s.requireAuth(s.handleListDocs))
	mux.HandleFunc("POST /api/docs/share", s.requireAuth(s.handleShare))
	mux.HandleFunc("GET /api/docs/share/{token}", s.handleGetShared)
	mux.HandleFunc("GET /api/docs/{id}", s.requireAuth(s.handleGetDoc))
	mux.HandleFunc("POST /api/signatures", s.requireAuth(s.handleCreateSignature))
	mux.HandleFunc("GET /api/signatures/document/{id}", s.handleListSignatures)
	mux.HandleFunc("POST /api/signatures/finalize", s.requireAuth(s.handleFinalize))
	mux.HandleFunc("PUT /api/signatures/shared/{token}/signature/{id}/status", s.handleUpdateStatus)
	mux.HandleFunc("GET /api/auditlogs", s.requireAuth(s.handleAudit))
	mux.HandleFunc("GET /uploads/", s.handleFile)
	return s.count(mux)
}

// count records every request under "METHOD pattern" and applies injected
// failures.
func (s *Server) count(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := next.Handler(r)
		s.mu.Lock()
		s.hits[pattern]++
		status, fail := s.failures[pattern]
		if fail {
			delete(s.failures, pattern)
		}
		s.mu.Unlock()
		if fail {
			respondMessage(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Hits returns how many requests matched the mux pattern, e.g.
// "POST /api/signatures".
func (s *Server) Hits(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pattern]
}

// FailNext makes the next request matching pattern return status.
func (s *Server) FailNext(pattern string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[pattern] = status
}

// TokenTTL is the lifetime of issued bearer tokens.
const TokenTTL = 2 * time.Hour

// Token registers a user and returns a valid bearer token for it.
func (s *Server) Token(email string) string {
	s.mu.Lock()
	if _, ok := s.users[email]; !ok {
		s.users[email] = "secret"
	}
	s.mu.Unlock()
	token, err := s.issue(email, time.Now().Add(TokenTTL))
	if err != nil {
		panic(err)
	}
	return token
}

// ExpiredToken returns a correctly signed token that expired an hour ago.
func (s *Server) ExpiredToken(email string) string {
	token, err := s.issue(email, time.Now().Add(-time.Hour))
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) issue(email string, expires time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"exp": expires.Unix(),
	})
	return token.SignedString(s.secret)
}

// verify returns the subject of a valid token.
func (s *Server) verify(raw string) (string, bool) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", false
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// SeedDocument stores a document owned by owner with the given file bytes.
func (s *Server) SeedDocument(owner, name string, data []byte) model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.storeDocument(owner, name, data)
}

// SeedField stores a field on a document and returns it.
func (s *Server) SeedField(documentID string, page int, pos model.Position, status model.FieldStatus) model.SignatureField {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &model.SignatureField{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Page:       page,
		Position:   pos,
		Kind:       model.KindSignature,
		Status:     status,
	}
	s.fields = append(s.fields, f)
	return *f
}

// SeedGrant creates a share grant for a document.
func (s *Server) SeedGrant(documentID, email string) model.ShareGrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &model.ShareGrant{Token: randomID(), DocumentID: documentID, SignerEmail: email}
	s.grants[g.Token] = g
	return *g
}

// Field returns the stored copy of a field.
func (s *Server) Field(id string) (model.SignatureField, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.ID == id {
			return *f, true
		}
	}
	return model.SignatureField{}, false
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := s.verify(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if !ok {
			respondMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		next(w, r.WithContext(withUser(r.Context(), email)))
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" {
		respondMessage(w, http.StatusBadRequest, "invalid registration")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[c.Email]; exists {
		respondMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	s.users[c.Email] = c.Password
	token, err := s.issue(c.Email, time.Now().Add(TokenTTL))
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"token": token, "user": map[string]string{"email": c.Email}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid login")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.users[c.Email]; !ok || pw != c.Password {
		respondMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := s.issue(c.Email, time.Now().Add(TokenTTL))
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "expecting multipart form")
		return
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "failed to read upload")
			return
		}
		if part.FormName() != "document" {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil || len(data) == 0 {
			respondMessage(w, http.StatusBadRequest, "empty file")
			return
		}
		s.mu.Lock()
		doc := s.storeDocument(userFrom(r.Context()), part.FileName(), data)
		s.mu.Unlock()
		respondJSON(w, http.StatusCreated, doc)
		return
	}
	respondMessage(w, http.StatusBadRequest, "No file uploaded")
}

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	owner := userFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Document{}
	for _, d := range s.docs {
		if d.Owner == owner {
			out = append(out, *d)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetDoc(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[r.PathValue("id")]
	if !ok || d.Owner != userFrom(r.Context()) {
		respondMessage(w, http.StatusNotFound, "Document not found")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID  string     `json:"documentId"`
		SignerEmail string     `json:"signerEmail"`
		ExpiresAt   *time.Time `json:"expiresAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SignerEmail == "" {
		respondMessage(w, http.StatusBadRequest, "documentId and signerEmail are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[req.DocumentID]; !ok {
		respondMessage(w, http.StatusNotFound, "Document not found")
		return
	}
	g := &model.ShareGrant{
		Token:       randomID(),
		DocumentID:  req.DocumentID,
		SignerEmail: req.SignerEmail,
		ExpiresAt:   req.ExpiresAt,
	}
	g.ShareLink = s.URL + "/share/" + g.Token
	s.grants[g.Token] = g
	s.auditLocked("share", req.DocumentID, userFrom(r.Context()))
	respondJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetShared(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[r.PathValue("token")]
	if !ok || g.Expired(time.Now()) {
		respondMessage(w, http.StatusNotFound, "Invalid or expired share link")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"document": s.docs[g.DocumentID]})
}

func (s *Server) handleCreateSignature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID    string         `json:"documentId"`
		PageNumber    int            `json:"pageNumber"`
		Position      model.Position `json:"position"`
		SignatureData string         `json:"signatureData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PageNumber < 1 {
		respondMessage(w, http.StatusBadRequest, "invalid signature")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[req.DocumentID]; !ok {
		respondMessage(w, http.StatusNotFound, "Document not found")
		return
	}
	f := &model.SignatureField{
		ID:         uuid.NewString(),
		DocumentID: req.DocumentID,
		Page:       req.PageNumber,
		Position:   req.Position,
		Status:     model.StatusPending,
		Value:      req.SignatureData,
	}
	s.fields = append(s.fields, f)
	respondJSON(w, http.StatusCreated, f)
}

func (s *Server) handleListSignatures(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.SignatureField{}
	for _, f := range s.fields {
		if f.DocumentID == id {
			out = append(out, *f)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "documentId is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.docs[req.DocumentID]
	if !ok {
		respondMessage(w, http.StatusNotFound, "Document not found")
		return
	}
	signed := s.storeDocument(src.Owner, "signed_"+src.OriginalName, s.files[src.FilePath])
	s.auditLocked("finalize", req.DocumentID, src.Owner)
	respondJSON(w, http.StatusOK, map[string]any{"signedDocument": signed})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status   model.FieldStatus `json:"status"`
		SignedBy string            `json:"signedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Terminal() || req.SignedBy == "" {
		respondMessage(w, http.StatusBadRequest, "status and signedBy are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[r.PathValue("token")]
	if !ok {
		respondMessage(w, http.StatusNotFound, "Invalid or expired share link")
		return
	}
	for _, f := range s.fields {
		if f.ID != r.PathValue("id") || f.DocumentID != g.DocumentID {
			continue
		}
		if f.Status.Terminal() {
			respondMessage(w, http.StatusBadRequest, "Signature already processed")
			return
		}
		now := time.Now().UTC()
		f.Status = req.Status
		f.SignedBy = req.SignedBy
		f.SignedAt = &now
		s.auditLocked(string(req.Status), f.DocumentID, req.SignedBy)
		respondJSON(w, http.StatusOK, map[string]any{"message": "Signature status updated", "signature": f})
		return
	}
	respondMessage(w, http.StatusNotFound, "Signature not found")
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditEntry, len(s.audit))
	copy(out, s.audit)
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.files[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// storeDocument must be called with s.mu held.
func (s *Server) storeDocument(owner, name string, data []byte) *model.Document {
	if name == "" {
		name = "upload.pdf"
	}
	id := uuid.NewString()
	filePath := "/uploads/" + id + "-" + path.Base(name)
	d := &model.Document{
		ID:           id,
		OriginalName: name,
		FilePath:     filePath,
		Owner:        owner,
		Size:         int64(len(data)),
		CreatedAt:    time.Now().UTC(),
	}
	s.docs[id] = d
	s.files[filePath] = data
	s.auditLocked("upload", id, owner)
	return d
}

func (s *Server) auditLocked(action, documentID, user string) {
	s.audit = append(s.audit, model.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		DocumentID: documentID,
		User:       user,
		Timestamp:  time.Now().UTC(),
	})
}

func randomID() string {
	// Share tokens are random hex so they are URL safe.
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode json failed: %v", err)
	}
}
