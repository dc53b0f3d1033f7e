package http

import (
	"context"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/limiter"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/service"
	"github.com/hoshinolab/fortune-gate/models"
)

// mockIdentityService implements service.IdentityService for unit tests.
// Each method field can be overridden per test case.
type mockIdentityService struct {
	registerFn            func(ctx context.Context, identity models.Identity) (models.Identity, error)
	requestVerificationFn func(ctx context.Context, identity models.Identity) (string, time.Time, error)
	consumeVerificationFn func(ctx context.Context, token string) (models.Identity, error)
	requestRecoveryFn     func(ctx context.Context, req models.RecoveryRequest) error
	verifyRecoveryTokenFn func(ctx context.Context, token string) (models.Identity, error)
	updatePassphraseFn    func(ctx context.Context, token, newPassphrase string) error
	setPassphraseFn       func(ctx context.Context, email, passphrase string) error
	withdrawFn            func(ctx context.Context, email string) error
}

func (m *mockIdentityService) Register(ctx context.Context, identity models.Identity) (models.Identity, error) {
	return m.registerFn(ctx, identity)
}

func (m *mockIdentityService) RequestVerification(ctx context.Context, identity models.Identity) (string, time.Time, error) {
	return m.requestVerificationFn(ctx, identity)
}

func (m *mockIdentityService) ConsumeVerificationToken(ctx context.Context, token string) (models.Identity, error) {
	return m.consumeVerificationFn(ctx, token)
}

func (m *mockIdentityService) RequestPassphraseRecovery(ctx context.Context, req models.RecoveryRequest) error {
	return m.requestRecoveryFn(ctx, req)
}

func (m *mockIdentityService) VerifyRecoveryToken(ctx context.Context, token string) (models.Identity, error) {
	return m.verifyRecoveryTokenFn(ctx, token)
}

func (m *mockIdentityService) UpdatePassphrase(ctx context.Context, token, newPassphrase string) error {
	return m.updatePassphraseFn(ctx, token, newPassphrase)
}

func (m *mockIdentityService) SetPassphrase(ctx context.Context, email, passphrase string) error {
	return m.setPassphraseFn(ctx, email, passphrase)
}

func (m *mockIdentityService) Withdraw(ctx context.Context, email string) error {
	return m.withdrawFn(ctx, email)
}

// mockAuthService implements service.AuthService.
type mockAuthService struct {
	loginFn func(ctx context.Context, req models.LoginRequest) (models.Identity, error)
}

func (m *mockAuthService) Login(ctx context.Context, req models.LoginRequest) (models.Identity, error) {
	return m.loginFn(ctx, req)
}

// mockAdminService implements service.AdminService.
type mockAdminService struct {
	loginFn      func(ctx context.Context, login, passphrase string) (string, error)
	parseTokenFn func(tokenString string) (string, error)
	listFn       func(ctx context.Context) ([]models.Identity, error)
}

func (m *mockAdminService) Login(ctx context.Context, login, passphrase string) (string, error) {
	return m.loginFn(ctx, login, passphrase)
}

func (m *mockAdminService) ParseToken(tokenString string) (string, error) {
	return m.parseTokenFn(tokenString)
}

func (m *mockAdminService) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	return m.listFn(ctx)
}

// mockConsultService implements service.ConsultService.
type mockConsultService struct {
	consultFn     func(ctx context.Context, identityID string, req models.ConsultationRequest) (string, error)
	paymentLinkFn func(ctx context.Context, req models.PaymentLinkRequest) (models.PaymentLink, error)
}

func (m *mockConsultService) Consult(ctx context.Context, identityID string, req models.ConsultationRequest) (string, error) {
	return m.consultFn(ctx, identityID, req)
}

func (m *mockConsultService) CreatePaymentLink(ctx context.Context, req models.PaymentLinkRequest) (models.PaymentLink, error) {
	return m.paymentLinkFn(ctx, req)
}

// pingerOK is the healthy storage probe.
type pingerOK struct{}

func (pingerOK) PingContext(context.Context) error { return nil }

// pingerFn lets a test fail the probe.
type pingerFn func(ctx context.Context) error

func (f pingerFn) PingContext(ctx context.Context) error { return f(ctx) }

// denyAllLimiter rejects every request.
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string) bool { return false }

func testConfig() *config.StructuredConfig {
	return &config.StructuredConfig{
		App: config.App{
			SessionCookieName: "fortune_session",
			SessionTTL:        720 * time.Hour,
		},
		Admin: config.Admin{
			Login:          "mikado",
			PassphraseHash: "$2a$10$stub",
			TokenSignKey:   "sign-key",
		},
	}
}

// newTestHandler builds a Handler over the given service mocks, a healthy
// storage probe and a pass-through limiter.
func newTestHandler(svcs *service.Services) *Handler {
	return NewHandler(svcs, limiter.NoopLimiter{}, pingerOK{}, testConfig(), logger.Nop())
}
