package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_MarshalLayout(t *testing.T) {
	doc := &Document{
		ID:       "m1",
		Settings: json.RawMessage(`{"startingMoney":1500}`),
		Name:     "Friday",
		Game:     json.RawMessage(`{"globals":{},"players":[]}`),
	}

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"m1","settings":{"startingMoney":1500},"name":"Friday","game":{"globals":{},"players":[]}}`, string(data))

	empty, err := (&Document{ID: "m2"}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"m2","settings":null,"name":"","game":{}}`, string(empty))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *Document
		wantErr bool
	}{
		{
			name: "complete",
			data: `{"id":"m1","settings":{"a":1},"name":"Friday","game":{"players":[]}}`,
			want: &Document{
				ID:       "m1",
				Settings: json.RawMessage(`{"a":1}`),
				Name:     "Friday",
				Game:     json.RawMessage(`{"players":[]}`),
			},
		},
		{
			name: "name and settings missing",
			data: `{"id":"m1","game":{}}`,
			want: &Document{ID: "m1", Settings: json.RawMessage(`null`), Game: json.RawMessage(`{}`)},
		},
		{
			name: "extra keys ignored",
			data: `{"id":"m1","game":{},"version":3}`,
			want: &Document{ID: "m1", Settings: json.RawMessage(`null`), Game: json.RawMessage(`{}`)},
		},
		{name: "not json", data: `{`, wantErr: true},
		{name: "array", data: `[]`, wantErr: true},
		{name: "null", data: `null`, wantErr: true},
		{name: "missing id", data: `{"game":{}}`, wantErr: true},
		{name: "numeric id", data: `{"id":7,"game":{}}`, wantErr: true},
		{name: "missing game", data: `{"id":"m1"}`, wantErr: true},
		{name: "game is an array", data: `{"id":"m1","game":[]}`, wantErr: true},
		{name: "game is null", data: `{"id":"m1","game":null}`, wantErr: true},
		{name: "numeric name", data: `{"id":"m1","game":{},"name":5}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsMalformedDocument(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	doc := &Document{
		ID:       "abc",
		Settings: json.RawMessage(`[1,2]`),
		Name:     "Sunday",
		Game:     json.RawMessage(`{"globals":{"freeParking":5},"players":[{"id":0,"money":1}]}`),
	}
	data, err := doc.Marshal()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}
