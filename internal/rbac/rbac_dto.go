package rbac

import "flexileave/internal/domain"

type EnforceRequest = domain.EnforceRequest

type EnforceResponse = domain.EnforceResponse

type PermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}
