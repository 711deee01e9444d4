package anki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient serves handler and returns a client bound to it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestInvoke_SendsEnvelope(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"result":[1,2,3],"error":null}`))
	})

	ids, err := c.FindNotes(context.Background(), "deck:Spanish")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[2] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if got["action"] != "findNotes" {
		t.Fatalf("expected action findNotes, got %v", got["action"])
	}
	if got["version"] != float64(6) {
		t.Fatalf("expected version 6, got %v", got["version"])
	}
	params, _ := got["params"].(map[string]any)
	if params["query"] != "deck:Spanish" {
		t.Fatalf("expected query param, got %v", params)
	}
}

func TestInvoke_StoreErrorIsProtocolError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null,"error":"model was not found: Basic"}`))
	})

	_, err := c.ModelFieldNames(context.Background(), "Basic")
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProtocolError, got %T (%v)", err, err)
	}
	if pe.Action != "modelFieldNames" {
		t.Fatalf("expected action modelFieldNames, got %q", pe.Action)
	}
	if !strings.Contains(err.Error(), "model was not found") {
		t.Fatalf("error should carry the store message, got %q", err.Error())
	}
}

func TestInvoke_HTTPStatusIsProtocolError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.Version(context.Background())
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProtocolError, got %T", err)
	}
	if pe.Status != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", pe.Status)
	}
}

func TestInvoke_UnreachableIsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(url)
	_, err := c.FindNotes(context.Background(), "*")
	if !IsConnectionError(err) {
		t.Fatalf("expected connection error, got %T (%v)", err, err)
	}
	if !strings.Contains(err.Error(), url) {
		t.Fatalf("connection error should echo the URL %q, got %q", url, err.Error())
	}
	if !strings.Contains(err.Error(), "configuration") {
		t.Fatalf("connection error should point at configuration, got %q", err.Error())
	}
}

func TestAddNote_NullResultIsProtocolError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null,"error":null}`))
	})

	_, err := c.AddNote(context.Background(), NewNote{DeckName: "Default", ModelName: "Basic"})
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProtocolError, got %T", err)
	}
}

func TestUpdateNoteFields_Params(t *testing.T) {
	var got struct {
		Params struct {
			Note struct {
				ID     int64             `json:"id"`
				Fields map[string]string `json:"fields"`
			} `json:"note"`
		} `json:"params"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"result":null,"error":null}`))
	})

	err := c.UpdateNoteFields(context.Background(), 42, map[string]string{"Back": "hola"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Params.Note.ID != 42 || got.Params.Note.Fields["Back"] != "hola" {
		t.Fatalf("unexpected params: %+v", got.Params)
	}
}

func TestNew_DefaultURL(t *testing.T) {
	if u := New("  ").URL(); u != DefaultURL {
		t.Fatalf("expected %q, got %q", DefaultURL, u)
	}
}
