package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andressep95/identity-service/internal/domain"
)

func TestStateChecksAreCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := env.state.CheckDomain(ctx, "d1"); err != nil {
			t.Fatalf("CheckDomain: %v", err)
		}
	}
	if env.domains.calls != 1 {
		t.Fatalf("expected one domain lookup, got %d", env.domains.calls)
	}

	for i := 0; i < 3; i++ {
		err := env.state.CheckWorkspace(ctx, "w-off", "d1")
		if !errors.Is(err, domain.ErrPermissionDenied) || !errors.Is(err, domain.ErrWorkspaceDisabled) {
			t.Fatalf("expected disabled workspace to be denied, got %v", err)
		}
	}
	if env.workspaces.calls != 1 {
		t.Fatalf("expected one workspace lookup, got %d", env.workspaces.calls)
	}
}

func TestStateCheckServesStaleWithinTTL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.state.CheckDomain(ctx, "d1"); err != nil {
		t.Fatalf("CheckDomain: %v", err)
	}
	env.domains.domains["d1"].State = domain.StateDisabled

	if err := env.state.CheckDomain(ctx, "d1"); err != nil {
		t.Fatalf("cached state should still be served, got %v", err)
	}
}

func TestStateCheckDoesNotCacheMisses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := env.state.CheckDomain(ctx, "d9"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if env.domains.calls != 2 {
		t.Fatalf("misses must reach the store every time, got %d lookups", env.domains.calls)
	}
}

func TestRoleResolverPicksOldestBinding(t *testing.T) {
	w1 := "w1"
	bindings := &fakeBindings{bindings: []*domain.RoleBinding{
		{RoleBindingID: "rb-old", UserID: "u1", DomainID: "d1", RoleID: "r-owner", RoleType: domain.RoleTypeWorkspaceOwner, WorkspaceID: &w1, CreatedAt: time.Unix(100, 0)},
		{RoleBindingID: "rb-new", UserID: "u1", DomainID: "d1", RoleID: "r-member", RoleType: domain.RoleTypeWorkspaceMember, WorkspaceID: &w1, CreatedAt: time.Unix(200, 0)},
	}}
	resolver := NewRoleResolver(bindings)
	user := &domain.User{UserID: "u1", DomainID: "d1", RoleType: domain.RoleTypeUser}

	roleType, roleID, err := resolver.Resolve(context.Background(), user, "w1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if roleType != domain.RoleTypeWorkspaceOwner || roleID == nil || *roleID != "r-owner" {
		t.Fatalf("expected the oldest binding, got %s %v", roleType, roleID)
	}

	roleType, roleID, err = resolver.Resolve(context.Background(), user, "w2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if roleType != domain.RoleTypeUser || roleID != nil {
		t.Fatalf("expected USER fallback, got %s %v", roleType, roleID)
	}

	if _, _, err := resolver.Resolve(context.Background(), user, ""); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if bindings.last.WorkspaceID != nil || bindings.last.AnyWorkspace {
		t.Fatalf("empty workspace must select domain level bindings, got %+v", bindings.last)
	}
}

func TestPermissionsForRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.roles.roles["d1/r-empty"] = &domain.Role{RoleID: "r-empty", DomainID: "d1"}

	for i := 0; i < 2; i++ {
		perms, err := env.perms.PermissionsForRole(ctx, "r1", "d1")
		if err != nil {
			t.Fatalf("PermissionsForRole: %v", err)
		}
		if len(perms) != 1 || perms[0] != "compute.Instance.get" {
			t.Fatalf("unexpected permissions %v", perms)
		}
	}
	if env.roles.calls != 1 {
		t.Fatalf("expected one role lookup, got %d", env.roles.calls)
	}

	perms, err := env.perms.PermissionsForRole(ctx, "r-empty", "d1")
	if err != nil {
		t.Fatalf("PermissionsForRole: %v", err)
	}
	if perms == nil || len(perms) != 0 {
		t.Fatalf("expected empty non-nil permissions, got %#v", perms)
	}

	if _, err := env.perms.PermissionsForRole(ctx, "r-gone", "d1"); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestProjectsForMemberDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	env.projects.projects = append(env.projects.projects,
		&domain.Project{ProjectID: "p-pub-1", DomainID: "d1", WorkspaceID: "w1", ProjectType: domain.ProjectTypePrivate, Users: domain.StringList{"u1"}},
	)

	projects, err := env.perms.ProjectsForMember(context.Background(), "u1", "w1", "d1")
	if err != nil {
		t.Fatalf("ProjectsForMember: %v", err)
	}

	want := []string{"p-pub-1", "p-pub-2", "p-priv-in"}
	if len(projects) != len(want) {
		t.Fatalf("expected %v, got %v", want, projects)
	}
	for i := range want {
		if projects[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, projects)
		}
	}
}

func TestDomainService(t *testing.T) {
	env := newTestEnv(t)
	env.domains.domains["d1"].Config = domain.StringMap{"external_auth": "enabled"}
	svc := NewDomainService(env.domains, env.keys)
	ctx := context.Background()

	info, err := svc.GetAuthInfo(ctx, "acme")
	if err != nil {
		t.Fatalf("GetAuthInfo: %v", err)
	}
	if info.DomainID != "d1" || !info.ExternalAuth {
		t.Fatalf("unexpected auth info %+v", info)
	}
	raw, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(raw), "config") {
		t.Fatalf("domain config must not be published: %s", raw)
	}

	if _, err := svc.GetAuthInfo(ctx, "nowhere"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	key, err := svc.PublicKey(ctx, "d1")
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	if !key.Equal(&env.keys.access.PublicKey) {
		t.Fatal("expected the access public key")
	}
}
