package service

import (
	"context"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/adapter"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/models"
)

// repoMock implements store.IdentityRepository with per-method functions so
// each test stubs only what it touches. Unstubbed methods panic, which
// makes an unexpected repository call an immediate test failure.
type repoMock struct {
	createOrReplaceFn      func(ctx context.Context, identity models.Identity, reset bool) (models.Identity, error)
	findByEmailFn          func(ctx context.Context, email string) (models.Identity, error)
	findByIDFn             func(ctx context.Context, id string) (models.Identity, error)
	findByLoginFactorsFn   func(ctx context.Context, nickname, by, bm, bd string) ([]models.Identity, error)
	setVerifyTokenFn       func(ctx context.Context, email, token string, issuedAt time.Time) error
	setRecoveryTokenFn     func(ctx context.Context, email, token string, issuedAt time.Time) error
	findByVerifyTokenFn    func(ctx context.Context, token string) (models.Identity, error)
	findByRecoveryTokenFn  func(ctx context.Context, token string) (models.Identity, error)
	consumeVerifyTokenFn   func(ctx context.Context, token string) (models.Identity, error)
	consumeRecoveryTokenFn func(ctx context.Context, token, hash string) (models.Identity, error)
	clearVerifyTokenFn     func(ctx context.Context, email string) error
	setPassphraseFn        func(ctx context.Context, email, hash string) error
	deleteFn               func(ctx context.Context, email string) error
	listFn                 func(ctx context.Context) ([]models.Identity, error)
}

var _ store.IdentityRepository = (*repoMock)(nil)

func (m *repoMock) CreateOrReplace(ctx context.Context, identity models.Identity, reset bool) (models.Identity, error) {
	return m.createOrReplaceFn(ctx, identity, reset)
}

func (m *repoMock) FindByEmail(ctx context.Context, email string) (models.Identity, error) {
	return m.findByEmailFn(ctx, email)
}

func (m *repoMock) FindByID(ctx context.Context, id string) (models.Identity, error) {
	return m.findByIDFn(ctx, id)
}

func (m *repoMock) FindByLoginFactors(ctx context.Context, nickname, by, bm, bd string) ([]models.Identity, error) {
	return m.findByLoginFactorsFn(ctx, nickname, by, bm, bd)
}

func (m *repoMock) SetVerifyToken(ctx context.Context, email, token string, issuedAt time.Time) error {
	return m.setVerifyTokenFn(ctx, email, token, issuedAt)
}

func (m *repoMock) SetRecoveryToken(ctx context.Context, email, token string, issuedAt time.Time) error {
	return m.setRecoveryTokenFn(ctx, email, token, issuedAt)
}

func (m *repoMock) FindByVerifyToken(ctx context.Context, token string) (models.Identity, error) {
	return m.findByVerifyTokenFn(ctx, token)
}

func (m *repoMock) FindByRecoveryToken(ctx context.Context, token string) (models.Identity, error) {
	return m.findByRecoveryTokenFn(ctx, token)
}

func (m *repoMock) ConsumeVerifyToken(ctx context.Context, token string) (models.Identity, error) {
	return m.consumeVerifyTokenFn(ctx, token)
}

func (m *repoMock) ConsumeRecoveryToken(ctx context.Context, token, hash string) (models.Identity, error) {
	return m.consumeRecoveryTokenFn(ctx, token, hash)
}

func (m *repoMock) ClearVerifyToken(ctx context.Context, email string) error {
	return m.clearVerifyTokenFn(ctx, email)
}

func (m *repoMock) SetPassphrase(ctx context.Context, email, hash string) error {
	return m.setPassphraseFn(ctx, email, hash)
}

func (m *repoMock) Delete(ctx context.Context, email string) error {
	return m.deleteFn(ctx, email)
}

func (m *repoMock) List(ctx context.Context) ([]models.Identity, error) {
	return m.listFn(ctx)
}

// issuerMock stubs token issuance.
type issuerMock struct {
	issueFn func(ctx context.Context, email string, kind models.TokenKind) (models.IssuedToken, error)
}

func (m *issuerMock) Issue(ctx context.Context, email string, kind models.TokenKind) (models.IssuedToken, error) {
	return m.issueFn(ctx, email, kind)
}

// mailMock records delivered links.
type mailMock struct {
	magicFn    func(ctx context.Context, recipient, link string, expiresAt time.Time) error
	recoveryFn func(ctx context.Context, recipient, link string, expiresAt time.Time) error
}

func (m *mailMock) DeliverMagicLink(ctx context.Context, recipient, link string, expiresAt time.Time) error {
	return m.magicFn(ctx, recipient, link, expiresAt)
}

func (m *mailMock) DeliverRecoveryLink(ctx context.Context, recipient, link string, expiresAt time.Time) error {
	return m.recoveryFn(ctx, recipient, link, expiresAt)
}

// oracleMock stubs reading generation.
type oracleMock struct {
	generateFn func(ctx context.Context, req adapter.ReadingRequest) (string, error)
}

func (m *oracleMock) GenerateReading(ctx context.Context, req adapter.ReadingRequest) (string, error) {
	return m.generateFn(ctx, req)
}

// paymentsMock stubs checkout-link creation.
type paymentsMock struct {
	createFn func(ctx context.Context, email, planKey string) (models.PaymentLink, error)
}

func (m *paymentsMock) CreatePaymentLink(ctx context.Context, email, planKey string) (models.PaymentLink, error) {
	return m.createFn(ctx, email, planKey)
}
