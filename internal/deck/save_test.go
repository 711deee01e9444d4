package deck

import (
	"context"
	"maps"
	"slices"
	"strings"
	"testing"
)

func TestSaveCards_PartialFailure(t *testing.T) {
	fs := newFakeStore()
	fs.rejectAdd["dos"] = true
	l := NewLoader(nil, WithDialer(fs.dialer(nil)))

	cards := []*GeneratedCard{
		NewGeneratedCard("uno", "one"),
		NewGeneratedCard("dos", "two"),
		NewGeneratedCard("tres", "three"),
	}
	err := l.SaveCards(context.Background(), cards, "Spanish", "", "")
	if err == nil || !strings.Contains(err.Error(), "dos") {
		t.Fatalf("expected an error naming the failed card, got %v", err)
	}

	if !cards[0].Saved || cards[0].NoteID == 0 {
		t.Errorf("first card should be saved with a note id: %+v", cards[0])
	}
	if !slices.Equal(cards[0].FieldNames, []string{"Front", "Back"}) {
		t.Errorf("unexpected field names %v", cards[0].FieldNames)
	}
	if cards[1].Saved || cards[1].Err == nil || cards[1].NoteID != 0 {
		t.Errorf("second card should carry its error: %+v", cards[1])
	}
	if !cards[2].Saved {
		t.Error("third card should be saved")
	}
	for _, c := range cards {
		if c.Saving {
			t.Errorf("card %q still marked saving", c.Front)
		}
	}

	if len(fs.added) != 2 {
		t.Fatalf("expected 2 notes added, got %d", len(fs.added))
	}
	for _, n := range fs.added {
		if n.DeckName != "Spanish" || n.ModelName != "Basic" {
			t.Errorf("unexpected note target %s/%s", n.DeckName, n.ModelName)
		}
	}
}

func TestSaveCards_RetrySavesOnlyFailed(t *testing.T) {
	fs := newFakeStore()
	fs.rejectAdd["dos"] = true
	l := NewLoader(nil, WithDialer(fs.dialer(nil)), WithSaveConcurrency(2))

	cards := []*GeneratedCard{NewGeneratedCard("uno", "one"), NewGeneratedCard("dos", "two")}
	_ = l.SaveCards(context.Background(), cards, "", "", "")
	if len(fs.added) != 1 {
		t.Fatalf("expected 1 note after the first pass, got %d", len(fs.added))
	}

	delete(fs.rejectAdd, "dos")
	if err := l.SaveCards(context.Background(), cards, "", "", ""); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(fs.added) != 2 {
		t.Errorf("retry should add only the failed card, got %d notes", len(fs.added))
	}
	if !cards[1].Saved || cards[1].Err != nil {
		t.Errorf("retried card not saved: %+v", cards[1])
	}
	if fs.added[1].DeckName != "Default" {
		t.Errorf("empty deck name should fall back to Default, got %q", fs.added[1].DeckName)
	}
}

func TestSaveCards_EditedCardIsUpdated(t *testing.T) {
	fs := newFakeStore()
	l := NewLoader(nil, WithDialer(fs.dialer(nil)))

	card := NewGeneratedCard("uno", "one")
	if err := l.SaveCards(context.Background(), []*GeneratedCard{card}, "", "", ""); err != nil {
		t.Fatal(err)
	}
	id := card.NoteID

	card.Edit("uno", "one (number)")
	if card.Saved {
		t.Fatal("editing should clear the saved flag")
	}
	if err := l.SaveCards(context.Background(), []*GeneratedCard{card}, "", "", ""); err != nil {
		t.Fatal(err)
	}

	if len(fs.added) != 1 {
		t.Errorf("edited card should be updated, not re-added; %d notes added", len(fs.added))
	}
	want := map[string]string{"Front": "uno", "Back": "one (number)"}
	if !maps.Equal(fs.updated[id], want) {
		t.Errorf("updated fields = %v, want %v", fs.updated[id], want)
	}
}

func TestSaveCards_UpdateFallsBackToFrontBack(t *testing.T) {
	fs := newFakeStore()
	l := NewLoader(nil, WithDialer(fs.dialer(nil)))

	card := &GeneratedCard{ID: "x", Front: "a", Back: "b", NoteID: 55}
	if err := l.SaveCards(context.Background(), []*GeneratedCard{card}, "", "", ""); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"Front": "a", "Back": "b"}
	if !maps.Equal(fs.updated[55], want) {
		t.Errorf("updated fields = %v, want %v", fs.updated[55], want)
	}
}

func TestSaveCards_ModelWithoutEnoughFields(t *testing.T) {
	fs := newFakeStore()
	fs.fields = []string{"Text"}
	l := NewLoader(nil, WithDialer(fs.dialer(nil)))

	card := NewGeneratedCard("a", "b")
	if err := l.SaveCards(context.Background(), []*GeneratedCard{card}, "", "", ""); err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(card.ErrorText(), "does not have enough fields") {
		t.Errorf("unexpected card error %q", card.ErrorText())
	}
}

func TestNewGeneratedCard_UniqueIDs(t *testing.T) {
	a, b := NewGeneratedCard("a", "b"), NewGeneratedCard("a", "b")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
}
