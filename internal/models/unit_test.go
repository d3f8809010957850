package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{id: 0, want: "OFF"},
		{id: 6, want: "D"},
		{id: 9, want: "ST"},
		{id: 10, want: "OS"},
		{id: 22, want: "clear"},
		{id: -1, want: ""},
		{id: 23, want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.id), "statusId %d", tt.id)
	}
}

func TestIncidentStatusCode_AvailableMeansClear(t *testing.T) {
	assert.Equal(t, "clear", IncidentStatusCode(1))
	assert.Equal(t, "AV", StatusCode(1))
	assert.Equal(t, "ST", IncidentStatusCode(9))
}
