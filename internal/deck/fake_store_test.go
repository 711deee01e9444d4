package deck

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/ankiquiz/internal/anki"
)

// fakeStore is an in-memory Store. Methods are safe for concurrent use.
type fakeStore struct {
	mu        sync.Mutex
	notes     []anki.NoteInfo
	cards     map[int64]anki.CardInfo
	fields    []string
	nextID    int64
	rejectAdd map[string]bool // front values that addNote refuses
	findErr   error

	queries []string
	added   []anki.NewNote
	updated map[int64]map[string]string
	deleted []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cards:     map[int64]anki.CardInfo{},
		fields:    []string{"Front", "Back"},
		nextID:    1000,
		rejectAdd: map[string]bool{},
		updated:   map[int64]map[string]string{},
	}
}

func (f *fakeStore) dialer(urls *[]string) Dialer {
	return func(url string) Store {
		if urls != nil {
			*urls = append(*urls, url)
		}
		return f
	}
}

func (f *fakeStore) addNote(id int64, fields map[string]anki.FieldValue, cards ...anki.CardInfo) {
	n := anki.NoteInfo{NoteID: id, ModelName: "Basic", Fields: fields, Tags: []string{"t"}}
	for _, c := range cards {
		c.Note = id
		f.cards[c.CardID] = c
		n.Cards = append(n.Cards, c.CardID)
	}
	f.notes = append(f.notes, n)
}

func (f *fakeStore) Version(context.Context) (int, error) { return 6, nil }

func (f *fakeStore) FindNotes(_ context.Context, query string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.findErr != nil {
		return nil, f.findErr
	}
	ids := make([]int64, 0, len(f.notes))
	for _, n := range f.notes {
		ids = append(ids, n.NoteID)
	}
	return ids, nil
}

func (f *fakeStore) NotesInfo(_ context.Context, ids []int64) ([]anki.NoteInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []anki.NoteInfo
	for _, n := range f.notes {
		if want[n.NoteID] {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) CardsInfo(_ context.Context, ids []int64) ([]anki.CardInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []anki.CardInfo
	for _, id := range ids {
		if c, ok := f.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ModelFieldNames(_ context.Context, model string) ([]string, error) {
	if model != "Basic" {
		return nil, &anki.ProtocolError{Action: "modelFieldNames", Message: "model was not found: " + model}
	}
	return f.fields, nil
}

func (f *fakeStore) AddNote(_ context.Context, note anki.NewNote) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range note.Fields {
		if f.rejectAdd[v] {
			return 0, &anki.ProtocolError{Action: "addNote", Message: "cannot create note because it is a duplicate"}
		}
	}
	f.nextID++
	f.added = append(f.added, note)
	return f.nextID, nil
}

func (f *fakeStore) UpdateNoteFields(_ context.Context, id int64, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 0 {
		return fmt.Errorf("note %d not found", id)
	}
	f.updated[id] = fields
	return nil
}

func (f *fakeStore) DeleteNotes(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return nil
}

func basicFields(front, back string) map[string]anki.FieldValue {
	return map[string]anki.FieldValue{
		"Front": {Value: front, Order: 0},
		"Back":  {Value: back, Order: 1},
	}
}

func reviewCard(id int64, interval float64) anki.CardInfo {
	return anki.CardInfo{
		CardID:   id,
		Interval: anki.N(interval),
		Factor:   anki.N(2500),
		Reps:     anki.N(5),
		Lapses:   anki.N(0),
		Type:     anki.CardTypeReview,
		Queue:    anki.QueueReview,
	}
}
