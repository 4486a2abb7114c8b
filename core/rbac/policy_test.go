package rbac

import "testing"

func TestAdminHoldsEverything(t *testing.T) {
	p, err := NewPolicy()
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	checks := [][2]string{
		{ObjTariffs, ActManage},
		{ObjMerchants, ActManage},
		{ObjReports, ActView},
		{ObjPayments, ActSettle},
		{ObjAccounts, ActManage},
	}
	for _, c := range checks {
		if !p.Allow([]string{RoleAdmin}, c[0], c[1]) {
			t.Errorf("admin denied %s.%s", c[0], c[1])
		}
	}
}

func TestOperatorCannotManageTariffs(t *testing.T) {
	p, err := NewPolicy()
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if p.Allow([]string{RoleOperator}, ObjTariffs, ActManage) {
		t.Fatal("operator must not manage tariffs")
	}
	if !p.Allow([]string{RoleOperator}, ObjPayments, ActSettle) {
		t.Fatal("operator must settle payments")
	}
}

func TestAuditorIsReadOnly(t *testing.T) {
	p, err := NewPolicy()
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if p.Allow([]string{RoleAuditor}, ObjPayments, ActSettle) {
		t.Fatal("auditor must not settle payments")
	}
	if !p.Allow([]string{RoleAuditor}, ObjReports, ActView) {
		t.Fatal("auditor must view reports")
	}
}

func TestUnknownRoleDeniedAndInheritance(t *testing.T) {
	p, err := NewPolicy()
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if p.Allow([]string{"ghost"}, ObjReports, ActView) {
		t.Fatal("unknown role must be denied")
	}
	if err := p.AddRoleInheritance("ghost", RoleAuditor); err != nil {
		t.Fatalf("AddRoleInheritance: %v", err)
	}
	if !p.Allow([]string{"ghost"}, ObjReports, ActView) {
		t.Fatal("inherited role must view reports")
	}
}
