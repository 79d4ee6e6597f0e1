package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndDecode(t *testing.T) {
	e, err := New(TypeBookingCreated, map[string]any{"bookingId": "bkg_1", "price": 340000})
	require.NoError(t, err)
	assert.Regexp(t, `^evt_`, e.ID)
	assert.False(t, e.OccurredAt.IsZero())

	raw, err := e.Encode()
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, TypeBookingCreated, got.Type)
	assert.JSONEq(t, `{"bookingId":"bkg_1","price":340000}`, string(got.Data))
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"id":"evt_1","data":{}}`))
	assert.ErrorContains(t, err, "missing type")
}

func TestNew_UnencodablePayload(t *testing.T) {
	_, err := New(TypeBookingCreated, make(chan int))
	assert.Error(t, err)
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	e, err := New(TypeBookingCreated, struct{}{})
	require.NoError(t, err)
	require.NoError(t, p.Publish(ctx, e))

	events := p.Events()
	require.Len(t, events, 1)
	events[0].Type = "mutated"
	assert.Equal(t, TypeBookingCreated, p.Events()[0].Type)

	p.FailWith(errors.New("bus down"))
	assert.EqualError(t, p.Publish(ctx, e), "bus down")
	assert.Len(t, p.Events(), 1)
}

func TestSubject(t *testing.T) {
	tests := []struct {
		prefix, eventType, want string
	}{
		{"tripfare", "booking.created", "tripfare.booking.created"},
		{"tripfare", " booking created ", "tripfare.booking_created"},
		{"tripfare", "a*b>c", "tripfare.a_b_c"},
		{"tripfare", ".", "tripfare._"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Subject(tt.prefix, tt.eventType))
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
