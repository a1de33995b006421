package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTodayUsesLocation(t *testing.T) {
	// 02:30 UTC on May 2nd is still May 1st in São Paulo (UTC-3).
	now := time.Date(2024, 5, 2, 2, 30, 0, 0, time.UTC)
	sp := time.FixedZone("BRT", -3*60*60)
	if got := Today(now, time.UTC); got != (Date{2024, time.May, 2}) {
		t.Fatalf("utc today = %v", got)
	}
	if got := Today(now, sp); got != (Date{2024, time.May, 1}) {
		t.Fatalf("local today = %v", got)
	}
}

func TestDateTextRoundTrip(t *testing.T) {
	var p struct {
		Due  Date  `json:"due"`
		Opt  *Date `json:"opt,omitempty"`
		Zero Date  `json:"zero"`
	}
	if err := json.Unmarshal([]byte(`{"due":"2024-02-29","zero":""}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Due.String() != "2024-02-29" || p.Opt != nil || !p.Zero.IsZero() {
		t.Fatalf("unexpected decode: %+v", p)
	}
	if err := json.Unmarshal([]byte(`{"due":"2024-02-30"}`), &p); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2024, time.December, 31}
	if got := d.AddDays(1); got != (Date{2025, time.January, 1}) {
		t.Fatalf("add days = %v", got)
	}
	if !d.Before(d.AddDays(1)) || d.AddDays(1).Before(d) {
		t.Fatalf("before ordering wrong")
	}
}

func TestProjectDeepCopy(t *testing.T) {
	due := Date{2024, time.January, 10}
	p := Project{ID: "p", Access: []string{"1"}, Tasks: []Task{{ID: "t", Deadline: &due}}}
	cp := p.DeepCopy()
	cp.Access[0] = "2"
	cp.Tasks[0].Deadline.Day = 11
	if p.Access[0] != "1" || p.Tasks[0].Deadline.Day != 10 {
		t.Fatalf("copy shares state with original")
	}
	if !p.HasAccess("1") || p.HasAccess("2") {
		t.Fatalf("access check wrong")
	}
}
