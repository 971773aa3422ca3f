package auth

import (
	"context"
	"time"

	"github.com/hitoshi/ignitecall/internal/model"
	"github.com/hitoshi/ignitecall/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn   func(ctx context.Context, email string) (*model.User, error)
	finalizeFn      func(ctx context.Context, id string, profile repository.ProfileFields, finalizedAt time.Time) (*model.User, error)
	updateProfileFn func(ctx context.Context, id string, profile repository.ProfileFields) (*model.User, error)

	finalizeWithAccountFn func(ctx context.Context, id string, profile repository.ProfileFields, finalizedAt time.Time, account *model.Account) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(_ context.Context, _ string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) CreatePending(_ context.Context, _ *model.User) error {
	return nil
}

func (m *mockUserRepo) Finalize(ctx context.Context, id string, profile repository.ProfileFields, finalizedAt time.Time) (*model.User, error) {
	if m.finalizeFn != nil {
		return m.finalizeFn(ctx, id, profile, finalizedAt)
	}
	return nil, model.ErrMissingPendingUser
}

func (m *mockUserRepo) FinalizeWithAccount(ctx context.Context, id string, profile repository.ProfileFields, finalizedAt time.Time, account *model.Account) (*model.User, error) {
	if m.finalizeWithAccountFn != nil {
		return m.finalizeWithAccountFn(ctx, id, profile, finalizedAt, account)
	}
	return m.Finalize(ctx, id, profile, finalizedAt)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id string, profile repository.ProfileFields) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, profile)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepo) UpdateBio(_ context.Context, _ string, _ string) error {
	return nil
}

func (m *mockUserRepo) DeleteByID(_ context.Context, _ string) error {
	return nil
}

type mockAccountRepo struct {
	createFn   func(ctx context.Context, account *model.Account) error
	findUserFn func(ctx context.Context, providerID, providerAccountID string) (*model.User, error)
}

func (m *mockAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, account)
	}
	return nil
}

func (m *mockAccountRepo) FindUserByProviderAccount(ctx context.Context, providerID, providerAccountID string) (*model.User, error) {
	if m.findUserFn != nil {
		return m.findUserFn(ctx, providerID, providerAccountID)
	}
	return nil, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, session *model.Session) error
	findWithUserFn  func(ctx context.Context, token string) (*model.Session, *model.User, error)
	updateFn        func(ctx context.Context, token, userID string, expires time.Time) (*model.Session, error)
	deleteByTokenFn func(ctx context.Context, token string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByToken(_ context.Context, _ string) (*model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) FindWithUserByToken(ctx context.Context, token string) (*model.Session, *model.User, error) {
	if m.findWithUserFn != nil {
		return m.findWithUserFn(ctx, token)
	}
	return nil, nil, model.ErrSessionNotFound
}

func (m *mockSessionRepo) Update(ctx context.Context, token, userID string, expires time.Time) (*model.Session, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, token, userID, expires)
	}
	return nil, model.ErrSessionNotFound
}

func (m *mockSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if m.deleteByTokenFn != nil {
		return m.deleteByTokenFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(_ context.Context, _ string) error {
	return nil
}

type mockOAuthProvider struct {
	getLoginURLFn  func(state string) string
	exchangeCodeFn func(ctx context.Context, code string) (*OAuthUserInfo, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return nil, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.AccountRepository = (*mockAccountRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)
var _ OAuthProvider = (*mockOAuthProvider)(nil)

func strPtr(s string) *string { return &s }
