package billing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontoffice/internal/domain"
)

func TestDefaultPolicyTable(t *testing.T) {
	table := MustDefaultPolicyTable()

	gst, err := table.LookupGST("anna-salai")
	require.NoError(t, err)
	assert.True(t, gst)

	gst, err = table.LookupGST("bhavani-road")
	require.NoError(t, err)
	assert.False(t, gst)

	assert.Len(t, table.List(), 4)
}

func TestUnknownBranchFailsExplicitly(t *testing.T) {
	table := MustDefaultPolicyTable()

	_, err := table.LookupGST("nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBranch))
}

func TestNewPolicyTableRejectsDuplicates(t *testing.T) {
	_, err := NewPolicyTable([]domain.Branch{
		{ID: "a", Name: "A", GSTEnabled: true},
		{ID: "a", Name: "A again"},
	})
	assert.Error(t, err)

	_, err = NewPolicyTable([]domain.Branch{{ID: " ", Name: "blank"}})
	assert.Error(t, err)
}
