package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Permission objects and actions used across the admin surface.
const (
	ObjTariffs   = "tariffs"
	ObjMerchants = "merchants"
	ObjReports   = "reports"
	ObjPayments  = "payments"
	ObjAccounts  = "accounts"

	ActView   = "view"
	ActManage = "manage"
	ActSettle = "settle"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleAuditor  = "auditor"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Policy wraps a casbin enforcer with the built-in role grants.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	p := &Policy{enforcer: e}
	if err := p.seed(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) seed() error {
	grants := [][3]string{
		{RoleAdmin, ObjTariffs, ActView},
		{RoleAdmin, ObjTariffs, ActManage},
		{RoleAdmin, ObjMerchants, ActView},
		{RoleAdmin, ObjMerchants, ActManage},
		{RoleAdmin, ObjReports, ActView},
		{RoleAdmin, ObjPayments, ActSettle},
		{RoleAdmin, ObjAccounts, ActManage},

		{RoleOperator, ObjTariffs, ActView},
		{RoleOperator, ObjMerchants, ActView},
		{RoleOperator, ObjReports, ActView},
		{RoleOperator, ObjPayments, ActSettle},

		{RoleAuditor, ObjTariffs, ActView},
		{RoleAuditor, ObjMerchants, ActView},
		{RoleAuditor, ObjReports, ActView},
	}
	for _, g := range grants {
		if _, err := p.enforcer.AddPolicy(g[0], g[1], g[2]); err != nil {
			return err
		}
	}
	return nil
}

// Allow checks whether any of the subject roles grants act on obj.
func (p *Policy) Allow(roles []string, obj, act string) bool {
	for _, role := range roles {
		ok, err := p.enforcer.Enforce(role, obj, act)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Grant adds a direct permission to a role at runtime.
func (p *Policy) Grant(role, obj, act string) error {
	_, err := p.enforcer.AddPolicy(role, obj, act)
	return err
}

// AddRoleInheritance makes child inherit everything parent holds.
func (p *Policy) AddRoleInheritance(child, parent string) error {
	_, err := p.enforcer.AddGroupingPolicy(child, parent)
	return err
}
