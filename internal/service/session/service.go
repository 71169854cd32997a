package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
)

var ErrSessionNotFound = errors.New("session not found")

// Greeting seeds every new (or reset) conversation.
const Greeting = "¡Hola! Soy tu asistente de salud. ¿Qué síntomas estás experimentando?"

// Service owns all per-conversation state: the patient, the transcript and
// the medication cart. Each session's state is isolated; nothing is shared
// across sessions.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
	carts    map[string][]patient.Medication
}

// NewService bootstraps the in-memory session service.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
		carts:    make(map[string][]patient.Medication),
	}
}

func newPatientID() string {
	// Short opaque token, mirrors the 8-char patient ids shown to users.
	return uuid.NewString()[:8]
}

// Create provisions a session with a fresh patient and the greeting as the
// first assistant message.
func (s *Service) Create(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		Patient:   patient.Patient{ID: newPatientID()},
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = []chat.Message{{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      chat.RoleAssistant,
		Content:   Greeting,
		CreatedAt: session.CreatedAt,
	}}
	s.carts[session.ID] = nil
	s.mu.Unlock()

	return session, nil
}

// Get retrieves a session by identifier.
func (s *Service) Get(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Reset performs the "new patient" action: a fresh patient identity, an
// emptied transcript and cart. The previous patient id is returned so the
// caller can reset the case history it keyed.
func (s *Service) Reset(_ context.Context, sessionID string) (chat.Session, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, "", ErrSessionNotFound
	}

	previousPatientID := session.Patient.ID
	session.Patient = patient.Patient{ID: newPatientID()}
	s.sessions[sessionID] = session
	s.messages[sessionID] = []chat.Message{{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   Greeting,
		CreatedAt: time.Now().UTC(),
	}}
	s.carts[sessionID] = nil

	return session, previousPatientID, nil
}

// AppendMessage adds a message to the session transcript.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) error {
	if message.SessionID == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return nil
}

// Transcript returns a copy of the stored messages for the session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// UpdateLocation sets the patient's resolved location.
func (s *Service) UpdateLocation(_ context.Context, sessionID, label string, coords patient.Coordinates) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	session.Patient.LocationLabel = label
	session.Patient.Location = &coords
	s.sessions[sessionID] = session
	return session, nil
}

// Cart returns a copy of the current medication selection.
func (s *Service) Cart(_ context.Context, sessionID string) ([]patient.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}

	cart := s.carts[sessionID]
	copied := make([]patient.Medication, len(cart))
	copy(copied, cart)
	return copied, nil
}

// ReplaceCart swaps the cart wholesale. Repeated medication turns reset
// the selection, they never merge.
func (s *Service) ReplaceCart(_ context.Context, sessionID string, medications []patient.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	s.carts[sessionID] = append([]patient.Medication(nil), medications...)
	return nil
}

// ClearCart empties the cart after a completed purchase.
func (s *Service) ClearCart(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	s.carts[sessionID] = nil
	return nil
}
