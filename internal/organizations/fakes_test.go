// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package organizations_test

import (
	"context"
	"errors"
	"sync"

	"github.com/taibuivan/gatehouse/internal/organizations"
	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/pkg/uuid"
)

var errStorage = errors.New("storage unavailable")

// memoryRepository keeps organizations and members in maps keyed by id.
type memoryRepository struct {
	mu            sync.Mutex
	organizations map[string]*organizations.Organization
	members       map[string]map[string]*organizations.Member
	users         map[string]string // user id -> username
	lookups       int
	err           error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		organizations: make(map[string]*organizations.Organization),
		members:       make(map[string]map[string]*organizations.Member),
		users:         make(map[string]string),
	}
}

func (repo *memoryRepository) addOrganization(subdomain string) *organizations.Organization {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	organization := &organizations.Organization{ID: uuid.New(), Name: subdomain, Subdomain: subdomain}
	repo.organizations[organization.ID] = organization
	repo.members[organization.ID] = make(map[string]*organizations.Member)
	return organization
}

func (repo *memoryRepository) addUser(username string) string {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	id := uuid.New()
	repo.users[id] = username
	return id
}

func (repo *memoryRepository) FindBySubdomain(_ context.Context, subdomain string) (*organizations.Organization, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.lookups++
	if repo.err != nil {
		return nil, repo.err
	}
	for _, organization := range repo.organizations {
		if organization.Subdomain == subdomain {
			clone := *organization
			return &clone, nil
		}
	}
	return nil, organizations.ErrOrganizationNotFound
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*organizations.Organization, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	organization, ok := repo.organizations[id]
	if !ok {
		return nil, organizations.ErrOrganizationNotFound
	}
	clone := *organization
	return &clone, nil
}

func (repo *memoryRepository) Create(_ context.Context, organization *organizations.Organization, ownerID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.organizations {
		if existing.Subdomain == organization.Subdomain {
			return dberr.ErrDuplicate
		}
	}
	if organization.ID == "" {
		organization.ID = uuid.New()
	}
	clone := *organization
	repo.organizations[organization.ID] = &clone
	repo.members[organization.ID] = map[string]*organizations.Member{
		ownerID: {OrganizationID: organization.ID, UserID: ownerID, Username: repo.users[ownerID], Role: sec.RoleOwner},
	}
	return nil
}

func (repo *memoryRepository) MemberRole(_ context.Context, organizationID, userID string) (sec.MemberRole, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	member, ok := repo.members[organizationID][userID]
	if !ok {
		return "", organizations.ErrMemberNotFound
	}
	return member.Role, nil
}

func (repo *memoryRepository) ListMembers(_ context.Context, organizationID string, limit, offset int) ([]*organizations.Member, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	all := make([]*organizations.Member, 0)
	for _, member := range repo.members[organizationID] {
		clone := *member
		all = append(all, &clone)
	}
	total := len(all)
	if offset >= total {
		return []*organizations.Member{}, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

func (repo *memoryRepository) AddMember(_ context.Context, member *organizations.Member) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	username, ok := repo.users[member.UserID]
	if !ok {
		return dberr.ErrNotFound
	}
	if _, exists := repo.members[member.OrganizationID][member.UserID]; exists {
		return dberr.ErrDuplicate
	}
	clone := *member
	clone.Username = username
	repo.members[member.OrganizationID][member.UserID] = &clone
	return nil
}
