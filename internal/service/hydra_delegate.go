package service

import (
	"context"

	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
)

// HydraAdmin is the slice of the authorization server's admin API the flows
// need. The production implementation is hydra.AdminClient.
type HydraAdmin interface {
	GetLoginRequest(ctx context.Context, challenge string) (*hydra.LoginRequest, error)
	AcceptLoginRequest(ctx context.Context, challenge string, params hydra.AcceptLoginParams) (string, error)
	RejectLoginRequest(ctx context.Context, challenge string, params hydra.RejectParams) (string, error)
	GetConsentRequest(ctx context.Context, challenge string) (*hydra.ConsentRequest, error)
	AcceptConsentRequest(ctx context.Context, challenge string, params hydra.AcceptConsentParams) (string, error)
	RejectConsentRequest(ctx context.Context, challenge string, params hydra.RejectParams) (string, error)
	GetLogoutRequest(ctx context.Context, challenge string) (*hydra.LogoutRequest, error)
	AcceptLogoutRequest(ctx context.Context, challenge string) (string, error)
	RejectLogoutRequest(ctx context.Context, challenge string, params hydra.RejectParams) error
}

var _ HydraAdmin = (*hydra.AdminClient)(nil)
