package vocab_test

import (
	"testing"

	"davcal/src-server/ical/vocab"
)

func TestStatusVocabularies(t *testing.T) {
	tests := []struct {
		entity vocab.Entity
		value  string
		want   bool
	}{
		{vocab.EntityEvent, vocab.StatusConfirmed, true},
		{vocab.EntityEvent, vocab.StatusInProcess, false},
		{vocab.EntityTodo, vocab.StatusInProcess, true},
		{vocab.EntityTodo, vocab.StatusTentative, false},
		{vocab.EntityTodo, vocab.StatusCancelled, true},
		{vocab.EntityEvent, "confirmed", false},
	}
	for _, tt := range tests {
		if got := vocab.StatusFor(tt.entity).Has(tt.value); got != tt.want {
			t.Errorf("StatusFor(%s).Has(%s) = %v, want %v", tt.entity, tt.value, got, tt.want)
		}
	}
}

func TestParticipantStatusFor(t *testing.T) {
	if vocab.ParticipantStatusFor(vocab.EntityEvent).Has(vocab.PartStatCompleted) {
		t.Error("COMPLETED is only valid for to-do attendees")
	}
	if !vocab.ParticipantStatusFor(vocab.EntityTodo).Has(vocab.PartStatCompleted) {
		t.Error("COMPLETED should be valid for to-do attendees")
	}
	for _, v := range vocab.ParticipantStatus.Values() {
		if !vocab.ParticipantStatusTodo.Has(v) {
			t.Errorf("%s should also be a to-do participant status", v)
		}
	}
}

func TestValuesIsACopy(t *testing.T) {
	values := vocab.WeekDay.Values()
	values[0] = "XX"
	if !vocab.WeekDay.Has(vocab.Sunday) || vocab.WeekDay.Values()[0] != vocab.Sunday {
		t.Error("mutating Values() must not change the set")
	}
	if len(vocab.Frequency.Values()) != 7 || len(vocab.HTTPMethod.Values()) != 15 {
		t.Error("unexpected vocabulary size")
	}
}
