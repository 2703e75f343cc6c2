package billing

import (
	"fmt"
	"sort"
	"strings"

	"frontoffice/internal/domain"
)

func DefaultBranches() []domain.Branch {
	return []domain.Branch{
		{ID: "anna-salai", Name: "Anna Salai", GSTEnabled: true},
		{ID: "erode-road", Name: "Erode Road", GSTEnabled: true},
		{ID: "coimbatore-road", Name: "Coimbatore Road", GSTEnabled: true},
		{ID: "bhavani-road", Name: "Bhavani Road", GSTEnabled: false},
	}
}

// PolicyTable is the static branch configuration. It is built once at
// startup and only read afterwards.
type PolicyTable struct {
	branches map[string]domain.Branch
}

func NewPolicyTable(branches []domain.Branch) (*PolicyTable, error) {
	table := &PolicyTable{branches: make(map[string]domain.Branch, len(branches))}
	for _, branch := range branches {
		branch.ID = strings.TrimSpace(branch.ID)
		if branch.ID == "" {
			return nil, invalid("branch.id", "is required")
		}
		if _, exists := table.branches[branch.ID]; exists {
			return nil, fmt.Errorf("duplicate branch %q", branch.ID)
		}
		if strings.TrimSpace(branch.Name) == "" {
			branch.Name = branch.ID
		}
		table.branches[branch.ID] = branch
	}
	return table, nil
}

func MustDefaultPolicyTable() *PolicyTable {
	table, err := NewPolicyTable(DefaultBranches())
	if err != nil {
		panic(err)
	}
	return table
}

func (t *PolicyTable) Lookup(branchID string) (domain.Branch, error) {
	branch, ok := t.branches[strings.TrimSpace(branchID)]
	if !ok {
		return domain.Branch{}, fmt.Errorf("%w: %q", ErrUnknownBranch, branchID)
	}
	return branch, nil
}

func (t *PolicyTable) LookupGST(branchID string) (bool, error) {
	branch, err := t.Lookup(branchID)
	if err != nil {
		return false, err
	}
	return branch.GSTEnabled, nil
}

func (t *PolicyTable) List() []domain.Branch {
	out := make([]domain.Branch, 0, len(t.branches))
	for _, branch := range t.branches {
		out = append(out, branch)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
