package anki

import (
	"context"
	"fmt"
)

// Version returns the AnkiConnect protocol version. It doubles as a
// connectivity check.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.Invoke(ctx, "version", nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// FindNotes returns the IDs of notes matching an Anki search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.Invoke(ctx, "findNotes", map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo fetches field data, tags and card IDs for the given notes.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]NoteInfo, error) {
	var notes []NoteInfo
	if err := c.Invoke(ctx, "notesInfo", map[string]any{"notes": ids}, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CardsInfo fetches scheduling statistics for the given cards.
func (c *Client) CardsInfo(ctx context.Context, ids []int64) ([]CardInfo, error) {
	var cards []CardInfo
	if err := c.Invoke(ctx, "cardsInfo", map[string]any{"cards": ids}, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// ModelFieldNames returns the field names of a note model in field order.
func (c *Client) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	var names []string
	if err := c.Invoke(ctx, "modelFieldNames", map[string]any{"modelName": model}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// AddNote creates a note and returns its ID.
func (c *Client) AddNote(ctx context.Context, note NewNote) (int64, error) {
	if note.Tags == nil {
		note.Tags = []string{}
	}
	var id *int64
	if err := c.Invoke(ctx, "addNote", map[string]any{"note": note}, &id); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, &ProtocolError{Action: "addNote", Message: fmt.Sprintf("note was not created in deck %q", note.DeckName)}
	}
	return *id, nil
}

// UpdateNoteFields overwrites the given fields of a note. Fields not in the
// map are left untouched.
func (c *Client) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	note := map[string]any{"id": id, "fields": fields}
	return c.Invoke(ctx, "updateNoteFields", map[string]any{"note": note}, nil)
}

// DeleteNotes removes notes and all of their cards.
func (c *Client) DeleteNotes(ctx context.Context, ids []int64) error {
	return c.Invoke(ctx, "deleteNotes", map[string]any{"notes": ids}, nil)
}
