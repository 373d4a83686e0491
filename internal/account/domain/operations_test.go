package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/classifieds/internal/account/domain"
	"github.com/narwhalmedia/classifieds/pkg/errors"
)

func TestPlanStatusTransitions(t *testing.T) {
	tests := []struct {
		name      string
		op        domain.UserOp
		from      domain.Status
		want      domain.Status
		unchanged bool
		refused   bool
	}{
		{name: "activate inactive", op: domain.Activate{}, from: domain.StatusInactive, want: domain.StatusActive},
		{name: "activate active", op: domain.Activate{}, from: domain.StatusActive, want: domain.StatusActive, unchanged: true},
		{name: "activate banned", op: domain.Activate{}, from: domain.StatusBanned, refused: true},
		{name: "deactivate active", op: domain.Deactivate{}, from: domain.StatusActive, want: domain.StatusInactive},
		{name: "deactivate banned", op: domain.Deactivate{}, from: domain.StatusBanned, refused: true},
		{name: "ban active", op: domain.Ban{}, from: domain.StatusActive, want: domain.StatusBanned},
		{name: "ban inactive", op: domain.Ban{}, from: domain.StatusInactive, want: domain.StatusBanned},
		{name: "ban banned", op: domain.Ban{}, from: domain.StatusBanned, want: domain.StatusBanned, unchanged: true},
		{name: "unban banned", op: domain.Unban{}, from: domain.StatusBanned, want: domain.StatusActive},
		{name: "unban active", op: domain.Unban{}, from: domain.StatusActive, want: domain.StatusActive, unchanged: true},
		{name: "unban inactive", op: domain.Unban{}, from: domain.StatusInactive, refused: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := tt.op.Plan(&domain.User{ID: 5, Status: tt.from})
			if tt.refused {
				assert.True(t, errors.IsPreconditionFailed(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, tr.From)
			assert.Equal(t, tt.want, tr.To)
			assert.Equal(t, tt.unchanged, tr.Unchanged)
		})
	}
}

func TestParseUserOp(t *testing.T) {
	op, err := domain.ParseOp("BAN")
	require.NoError(t, err)
	assert.Equal(t, domain.Ban{}, op)
	assert.Equal(t, domain.EventUserBanned, domain.EventTypeFor(op))

	_, err = domain.ParseOp("delete")
	assert.True(t, errors.IsBadRequest(err))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Asha Patil", (&domain.User{FirstName: "Asha", LastName: "Patil"}).DisplayName())
	assert.Equal(t, "asha", (&domain.User{UserName: "asha"}).DisplayName())
}

func TestUserFilterValidate(t *testing.T) {
	assert.NoError(t, domain.UserFilter{Status: domain.StatusBanned}.Validate())
	assert.True(t, errors.IsBadRequest(domain.UserFilter{Status: "deleted"}.Validate()))

	sort, err := domain.ParseUserSort("")
	require.NoError(t, err)
	assert.Equal(t, domain.SortRecent, sort)
	_, err = domain.ParseUserSort("karma")
	assert.Error(t, err)
}
