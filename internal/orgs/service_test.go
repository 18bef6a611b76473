package orgs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/societyhub/societyhub/internal/shared"
)

type memoryOrgRepo struct {
	orgs   map[int64]Organization
	nextID int64
}

func newMemoryOrgRepo(orgs ...Organization) *memoryOrgRepo {
	repo := &memoryOrgRepo{orgs: make(map[int64]Organization), nextID: 100}
	for _, o := range orgs {
		repo.orgs[o.ID] = o
	}
	return repo
}

func (r *memoryOrgRepo) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	for _, o := range r.orgs {
		out = append(out, o)
	}
	return out, nil
}

func (r *memoryOrgRepo) ListChildren(ctx context.Context, parentID int64) ([]Organization, error) {
	var out []Organization
	for _, o := range r.orgs {
		if o.ParentID == parentID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memoryOrgRepo) GetOrganization(ctx context.Context, id int64) (Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return Organization{}, shared.ErrNotFound
	}
	return o, nil
}

func (r *memoryOrgRepo) CreateOrganization(ctx context.Context, org Organization) (Organization, error) {
	r.nextID++
	org.ID = r.nextID
	org.IsActive = true
	r.orgs[org.ID] = org
	return org, nil
}

func (r *memoryOrgRepo) UpdateOrganization(ctx context.Context, id int64, name, code string, active bool) (Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return Organization{}, shared.ErrNotFound
	}
	o.Name, o.Code, o.IsActive = name, code, active
	r.orgs[id] = o
	return o, nil
}

func TestCreateOrganizationHierarchyRules(t *testing.T) {
	repo := newMemoryOrgRepo(
		Organization{ID: 1, Kind: KindPlatform, Name: "Platform"},
		Organization{ID: 2, ParentID: 1, Kind: KindFranchise, Name: "North Franchise"},
	)
	svc := NewService(repo)
	ctx := context.Background()

	society, err := svc.CreateOrganization(ctx, Organization{ParentID: 2, Kind: KindSociety, Name: "Green Meadows"})
	require.NoError(t, err)
	require.Equal(t, KindSociety, society.Kind)

	// A society cannot hang off the platform root.
	_, err = svc.CreateOrganization(ctx, Organization{ParentID: 1, Kind: KindSociety, Name: "Bad Society"})
	require.ErrorIs(t, err, shared.ErrValidation)

	// A franchise must have the platform as parent.
	_, err = svc.CreateOrganization(ctx, Organization{ParentID: 2, Kind: KindFranchise, Name: "Nested Franchise"})
	require.ErrorIs(t, err, shared.ErrValidation)

	// The platform root has no parent.
	_, err = svc.CreateOrganization(ctx, Organization{ParentID: 1, Kind: KindPlatform, Name: "Second Root"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateOrganizationValidation(t *testing.T) {
	svc := NewService(newMemoryOrgRepo())
	ctx := context.Background()

	_, err := svc.CreateOrganization(ctx, Organization{Kind: KindPlatform, Name: "   "})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateOrganization(ctx, Organization{Kind: "cooperative", Name: "X"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateOrganization(ctx, Organization{ParentID: 99, Kind: KindFranchise, Name: "Orphan"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateOrganizationNormalizesCode(t *testing.T) {
	repo := newMemoryOrgRepo()
	svc := NewService(repo)

	org, err := svc.CreateOrganization(context.Background(), Organization{Kind: KindPlatform, Name: "Root", Code: " hq-01 "})
	require.NoError(t, err)
	require.Equal(t, "HQ-01", org.Code)
}
