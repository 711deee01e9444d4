package anki

import (
	"encoding/json"
	"testing"
)

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{`12`, 12, true},
		{`2500`, 2500, true},
		{`"7"`, 7, true},
		{`" 3 "`, 3, true},
		{`1.5`, 1.5, true},
		{`null`, 0, false},
		{`"abc"`, 0, false},
		{`""`, 0, false},
		{`true`, 0, false},
	}
	for _, tt := range tests {
		var n Number
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", tt.in, err)
		}
		if n.Valid != tt.valid || n.Value != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want {%v %v}", tt.in, n, tt.want, tt.valid)
		}
	}
}

func TestCardInfo_TolerantDecode(t *testing.T) {
	raw := `{"cardId": 9, "interval": "x", "factor": 2500, "reps": null, "lapses": 1, "type": 2, "queue": -1}`
	var c CardInfo
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Interval.Valid {
		t.Errorf("non-numeric interval should be invalid")
	}
	if c.Reps.Valid {
		t.Errorf("null reps should be invalid")
	}
	if !c.Factor.Valid || c.Factor.Value != 2500 {
		t.Errorf("unexpected factor: %+v", c.Factor)
	}
	if c.Type != CardTypeReview || c.Queue != QueueSuspended {
		t.Errorf("unexpected type/queue: %v/%v", c.Type, c.Queue)
	}
	if c.IsNew() {
		t.Errorf("review card should not be new")
	}
}

func TestCardInfo_MissingTypeIsNotNew(t *testing.T) {
	var c CardInfo
	if err := json.Unmarshal([]byte(`{"cardId": 1}`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Type != CardTypeUnknown || c.Queue != QueueUnknown {
		t.Errorf("expected unknown type/queue, got %v/%v", c.Type, c.Queue)
	}
	if c.IsNew() {
		t.Errorf("card with unknown type/queue should not be new")
	}
}

func TestNumber_String(t *testing.T) {
	if s := N(250.5).String(); s != "250.5" {
		t.Errorf("got %q", s)
	}
	if s := (Number{}).String(); s != "-" {
		t.Errorf("got %q", s)
	}
}
