package scope

import (
	"testing"

	"github.com/samkassa/samkassa/pkg/user"
	"github.com/stretchr/testify/assert"
)

func partneredUser() user.User {
	partnerId := 2
	return user.User{Id: 1, Name: "Alice", PartnerId: &partnerId}
}

func singleUser() user.User {
	return user.User{Id: 1, Name: "Alice"}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		viewer    user.User
		requested string
		want      Scope
	}{
		{
			name:      "ours with partner includes both payers and excludes personal",
			viewer:    partneredUser(),
			requested: "ours",
			want:      Scope{Name: Ours, PayerIds: []int{1, 2}, SharedOnly: true, ViewerId: 1, CounterpartId: 2},
		},
		{
			name:      "ours without partner includes only self",
			viewer:    singleUser(),
			requested: "ours",
			want:      Scope{Name: Ours, PayerIds: []int{1}, SharedOnly: true, ViewerId: 1},
		},
		{
			name:      "mine includes personal expenses",
			viewer:    partneredUser(),
			requested: "mine",
			want:      Scope{Name: Mine, PayerIds: []int{1}, SharedOnly: false, ViewerId: 1, CounterpartId: 2},
		},
		{
			name:      "partner scope targets only the partner",
			viewer:    partneredUser(),
			requested: "partner",
			want:      Scope{Name: Partner, PayerIds: []int{2}, SharedOnly: false, ViewerId: 1, CounterpartId: 2},
		},
		{
			name:      "partner scope without a partner downgrades to mine",
			viewer:    singleUser(),
			requested: "partner",
			want:      Scope{Name: Mine, PayerIds: []int{1}, SharedOnly: false, ViewerId: 1},
		},
		{
			name:      "unrecognized input falls back to ours",
			viewer:    partneredUser(),
			requested: "everything'; DROP TABLE expenses;--",
			want:      Scope{Name: Ours, PayerIds: []int{1, 2}, SharedOnly: true, ViewerId: 1, CounterpartId: 2},
		},
		{
			name:      "empty input falls back to ours",
			viewer:    singleUser(),
			requested: "",
			want:      Scope{Name: Ours, PayerIds: []int{1}, SharedOnly: true, ViewerId: 1},
		},
		{
			name:      "input is trimmed and lowercased",
			viewer:    partneredUser(),
			requested: "  Partner ",
			want:      Scope{Name: Partner, PayerIds: []int{2}, SharedOnly: false, ViewerId: 1, CounterpartId: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.viewer, tt.requested)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_HasCounterpart(t *testing.T) {
	assert.True(t, Resolve(partneredUser(), "ours").HasCounterpart())
	assert.False(t, Resolve(singleUser(), "ours").HasCounterpart())
}
