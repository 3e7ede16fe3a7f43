package core

import (
	"context"
	"encoding/json"
)

// SyncErrorKind classifies why a remote call did not succeed.
type SyncErrorKind int

const (
	SyncOK SyncErrorKind = iota
	// TransportError: no response, or a response that is not JSON.
	TransportError
	// ServerRejection: a well-formed 4xx/5xx carrying an error message.
	ServerRejection
	// AuthRequired: 401 or "Authentication required"; callers redirect to login.
	AuthRequired
)

func (k SyncErrorKind) String() string {
	switch k {
	case SyncOK:
		return "ok"
	case TransportError:
		return "transport error"
	case ServerRejection:
		return "server rejection"
	case AuthRequired:
		return "authentication required"
	}
	return "unknown"
}

// SyncResult is the normalized outcome of a remote call.
// OK results carry the decoded body in Entity; failed ones carry a user facing Message.
type SyncResult struct {
	OK      bool
	Entity  json.RawMessage
	Message string
	Kind    SyncErrorKind
	Status  int
	Fields  map[string]string // per-field server validation messages, if any
}

// Err returns nil for OK results and a *SyncError otherwise.
func (r SyncResult) Err() error {
	if r.OK {
		return nil
	}
	return &SyncError{Kind: r.Kind, Message: r.Message, Status: r.Status, Fields: r.Fields}
}

type SyncError struct {
	Kind    SyncErrorKind
	Message string
	Status  int
	Fields  map[string]string
}

func (err *SyncError) Error() string { return err.Message }

// SyncService is any REST backend the wizards and lists can talk to.
type SyncService interface {
	// Save creates (POST /collection) when id is empty, else updates (PUT /collection/id).
	Save(ctx context.Context, collection, id string, payload interface{}) SyncResult
	Get(ctx context.Context, collection, id string) SyncResult
	Delete(ctx context.Context, collection, id string) SyncResult
	// List fetches GET /collection?params; Entity holds the list envelope.
	List(ctx context.Context, collection string, params map[string]string) SyncResult
}
