// Package role はユーザーロールと認可ポリシーを定義します。
package role

import (
	"errors"
	"fmt"
)

// Role はユーザーに割り当てられる唯一のロールです。
type Role string

const (
	RegularUser   Role = "RegularUser"
	UserManager   Role = "UserManager"
	Administrator Role = "Administrator"
)

// ErrUnknownRole は未定義のロール文字列が渡された場合に返されます。
var ErrUnknownRole = errors.New("unknown role")

// All は定義済みのすべてのロールを返します。
func All() []Role {
	return []Role{RegularUser, UserManager, Administrator}
}

// Valid はロールが定義済みの値かどうかを返します。
func (r Role) Valid() bool {
	switch r {
	case RegularUser, UserManager, Administrator:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Parse は文字列をRoleに変換します。
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Policy は名前付きの認可ルールです。許可されたロールのいずれかを要求します。
type Policy struct {
	Name    string
	allowed map[Role]struct{}
}

func newPolicy(name string, roles ...Role) Policy {
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return Policy{Name: name, allowed: allowed}
}

var (
	MustBeARegularUser                  = newPolicy("MustBeARegularUser", RegularUser)
	MustBeAnAdministrator               = newPolicy("MustBeAnAdministrator", Administrator)
	MustBeAUserManager                  = newPolicy("MustBeAUserManager", UserManager)
	MustBeAnAdministratorOrAUserManager = newPolicy("MustBeAnAdministratorOrAUserManager", Administrator, UserManager)
	MustBeAnAdministratorOrARegularUser = newPolicy("MustBeAnAdministratorOrARegularUser", Administrator, RegularUser)
	MustBeAuthenticated                 = newPolicy("MustBeAuthenticated", All()...)
)

// Allows はロールがポリシーを満たすかどうかを返します。
func (p Policy) Allows(r Role) bool {
	_, ok := p.allowed[r]
	return ok
}
