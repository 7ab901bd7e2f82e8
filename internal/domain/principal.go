package domain

// PrincipalType is a bit set of principal categories.
type PrincipalType int

const (
	PrincipalTypeUser            PrincipalType = 1
	PrincipalTypeDistribution    PrincipalType = 2
	PrincipalTypeSecurityGroup   PrincipalType = 4
	PrincipalTypeSharePointGroup PrincipalType = 8
	PrincipalTypeAll             PrincipalType = 15
)

// PrincipalSource is a bit set of directories a principal may come from.
type PrincipalSource int

const (
	PrincipalSourceUserInfoList       PrincipalSource = 1
	PrincipalSourceWindows            PrincipalSource = 2
	PrincipalSourceMembershipProvider PrincipalSource = 4
	PrincipalSourceRoleProvider       PrincipalSource = 8
	PrincipalSourceAll                PrincipalSource = 15
)

// Principal is an identity found in the directory.
type Principal struct {
	ID          int64
	LoginName   string
	DisplayName string
	Email       string
	Type        PrincipalType
	Source      PrincipalSource
}

// SiteUser is a principal materialized in the target store.
type SiteUser struct {
	ID        int64
	LoginName string
	Title     string
	Email     string
}
