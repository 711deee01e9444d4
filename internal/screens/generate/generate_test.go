package generate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/screen"
	"github.com/abhisek/ankiquiz/internal/settings"
)

type fakeDeck struct {
	vocab    []deck.VocabItem
	vocabErr error
	deckName string
}

func (f *fakeDeck) LoadReviewNotes(context.Context, int, string, string) ([]deck.ReviewNote, error) {
	return nil, nil
}

func (f *fakeDeck) LoadVocabulary(context.Context, int, string, string) ([]deck.VocabItem, error) {
	return f.vocab, f.vocabErr
}

func (f *fakeDeck) SaveField(context.Context, int64, map[string]string, string) error { return nil }

func (f *fakeDeck) DeleteNote(context.Context, int64, string) error { return nil }

func (f *fakeDeck) SaveCards(_ context.Context, cards []*deck.GeneratedCard, deckName, _, _ string) error {
	f.deckName = deckName
	var errs []error
	for _, c := range cards {
		if c.Front == "dup" {
			c.Err = errors.New("cannot create note because it is a duplicate")
			errs = append(errs, c.Err)
			continue
		}
		c.Saved = true
	}
	return errors.Join(errs...)
}

type fakeGenerator struct {
	prompt  string
	context []deck.VocabItem
	drafts  []quizgen.CardDraft
	err     error
}

func (f *fakeGenerator) GenerateCards(_ context.Context, prompt string, contextCards []deck.VocabItem, _ settings.QuizSettings) ([]quizgen.CardDraft, error) {
	f.prompt, f.context = prompt, contextCards
	return f.drafts, f.err
}

func specialKey(code rune, mod tea.KeyMod) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: mod}
}

func TestGenerate_DraftAndSave(t *testing.T) {
	d := &fakeDeck{vocab: []deck.VocabItem{{Front: "perro", Back: "dog"}}}
	g := &fakeGenerator{drafts: []quizgen.CardDraft{{Front: "gato", Back: "cat"}, {Front: "dup", Back: "x"}}}
	s := New(screen.Services{Deck: d, Cards: g})

	s.input.Set("animals")
	_, cmd := s.Update(specialKey(tea.KeyEnter, 0))
	if cmd == nil {
		t.Fatal("expected a generate command")
	}
	s.Update(cmd())

	if g.prompt != "animals" {
		t.Fatalf("unexpected prompt %q", g.prompt)
	}
	if len(g.context) != 1 || g.context[0].Front != "perro" {
		t.Fatalf("existing cards should be sent as context, got %v", g.context)
	}
	if len(s.cards) != 2 || s.cards[0].ID == "" {
		t.Fatalf("expected two cards with ids, got %+v", s.cards)
	}

	_, cmd = s.Update(specialKey('s', tea.ModCtrl))
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	s.Update(cmd())

	if d.deckName != "Default" {
		t.Fatalf("cards should go to the default deck, got %q", d.deckName)
	}
	if !s.cards[0].Saved || s.cards[1].Saved {
		t.Fatalf("unexpected saved flags: %v %v", s.cards[0].Saved, s.cards[1].Saved)
	}
	if !strings.Contains(s.View(100, 30), "not saved") {
		t.Fatal("view should report the partial failure")
	}
}

func TestGenerate_DropCard(t *testing.T) {
	s := New(screen.Services{})
	s.cards = []*deck.GeneratedCard{deck.NewGeneratedCard("a", "1"), deck.NewGeneratedCard("b", "2")}
	s.selected = 1

	s.Update(specialKey('d', tea.ModCtrl))
	if len(s.cards) != 1 || s.cards[0].Front != "a" {
		t.Fatalf("expected the selected card dropped, got %+v", s.cards)
	}
	if s.selected != 0 {
		t.Fatalf("selection should move back into range, got %d", s.selected)
	}
}

func TestGenerate_ErrorShown(t *testing.T) {
	g := &fakeGenerator{err: &quizgen.ParseError{Raw: "no cards for you", Err: errors.New("not json")}}
	s := New(screen.Services{Deck: &fakeDeck{}, Cards: g})

	s.input.Set("x")
	_, cmd := s.Update(specialKey(tea.KeyEnter, 0))
	s.Update(cmd())

	if !strings.Contains(s.errMsg, "failed to parse model response") {
		t.Fatalf("unexpected error message %q", s.errMsg)
	}
}

// slowDeck writes card results from a goroutine after release is closed.
type slowDeck struct {
	fakeDeck
	release chan struct{}
}

func (f *slowDeck) SaveCards(_ context.Context, cards []*deck.GeneratedCard, _, _, _ string) error {
	var wg sync.WaitGroup
	for _, c := range cards {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-f.release
			c.Saving = false
			c.Saved = true
		}()
	}
	wg.Wait()
	return nil
}

func TestGenerate_ViewDuringSave(t *testing.T) {
	d := &slowDeck{release: make(chan struct{})}
	s := New(screen.Services{Deck: d})
	s.cards = []*deck.GeneratedCard{deck.NewGeneratedCard("gato", "cat"), deck.NewGeneratedCard("perro", "dog")}

	_, cmd := s.Update(specialKey('s', tea.ModCtrl))
	if cmd == nil {
		t.Fatal("expected a save command")
	}

	done := make(chan tea.Msg)
	go func() { done <- cmd() }()

	for i := 0; i < 50; i++ {
		_ = s.View(100, 30)
		if i == 10 {
			close(d.release)
		}
	}
	msg := <-done

	for _, c := range s.cards {
		if c.Saved {
			t.Fatalf("displayed card %q changed before the save result arrived", c.Front)
		}
	}
	s.Update(msg)
	for _, c := range s.cards {
		if !c.Saved {
			t.Fatalf("card %q should be marked saved", c.Front)
		}
	}
	if s.busy {
		t.Fatal("screen should leave the busy state")
	}
}

func TestGenerate_VocabularyFailureStillGenerates(t *testing.T) {
	d := &fakeDeck{vocabErr: errors.New("connection refused")}
	g := &fakeGenerator{drafts: []quizgen.CardDraft{{Front: "gato", Back: "cat"}}}
	s := New(screen.Services{Deck: d, Cards: g})

	s.input.Set("animals")
	_, cmd := s.Update(specialKey(tea.KeyEnter, 0))
	s.Update(cmd())

	if len(s.cards) != 1 {
		t.Fatalf("expected generation to continue, got %+v", s.cards)
	}
	if g.context != nil {
		t.Fatalf("no deck context expected, got %v", g.context)
	}
	if !strings.Contains(s.errMsg, "connection refused") {
		t.Fatalf("expected a warning about the deck, got %q", s.errMsg)
	}
}
