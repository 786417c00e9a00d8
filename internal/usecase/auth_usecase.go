package usecase

import (
	"context"
	"strings"
	"time"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/logger"
)

const minPasswordLength = 6

type AuthUseCase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenService
	revoker  TokenRevoker
	now      func() time.Time
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenService,
	revoker TokenRevoker,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		revoker:  revoker,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	Role        string
	Name        string
	Phone       string
	CompanyName string
}

type AuthResult struct {
	Token string
	User  *entity.User
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	role := entity.Role(strings.ToUpper(strings.TrimSpace(input.Role)))
	if role == entity.RoleAdmin {
		return nil, errors.Forbidden("ADMIN cannot be registered publicly", nil)
	}

	email := entity.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || input.Password == "" || role == "" || name == "" {
		return nil, errors.BadRequest("email, password, role, name are required", nil)
	}
	if role != entity.RoleCustomer && role != entity.RoleCompany {
		return nil, errors.BadRequest("role must be CUSTOMER or COMPANY", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, errors.BadRequest("password must be at least 6 chars", nil)
	}
	companyName := strings.TrimSpace(input.CompanyName)
	if role == entity.RoleCompany && companyName == "" {
		return nil, errors.BadRequest("companyName is required for COMPANY", nil)
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Conflict("Email already exists")
	} else if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	now := uc.now()
	var user *entity.User
	if role == entity.RoleCompany {
		user = entity.NewCompany("", email, hash, name, input.Phone, companyName, now)
	} else {
		user = entity.NewCustomer("", email, hash, name, input.Phone, now)
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("registered %s account %s", user.Role, user.ID)
	return user, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.BadRequest("email and password are required", nil)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.Unauthorized("Invalid email or password", nil)
		}
		return nil, err
	}
	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	token, _, err := uc.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, errors.Internal("Failed to issue token", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// Logout revokes the presented token until it would have expired anyway.
func (uc *AuthUseCase) Logout(ctx context.Context, principal *entity.Principal) error {
	if principal == nil || principal.TokenID == "" {
		return nil
	}
	ttl := principal.ExpiresAt.Sub(uc.now())
	if ttl <= 0 {
		return nil
	}
	if err := uc.revoker.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return errors.Internal("Failed to revoke token", err)
	}
	return nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.Principal, error) {
	principal, err := uc.tokens.Verify(token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	if uc.revoker != nil && principal.TokenID != "" {
		revoked, err := uc.revoker.IsRevoked(ctx, principal.TokenID)
		if err != nil {
			return nil, errors.Internal("Failed to check token", err)
		}
		if revoked {
			return nil, errors.Unauthorized("Invalid or expired token", nil)
		}
	}
	return principal, nil
}

// EnsureAdmin creates the admin account when the email is free. It reports
// whether a new account was created.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password, name string) (*entity.User, bool, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, false, errors.BadRequest("admin email and password are required", nil)
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, false, err
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, false, errors.Internal("Failed to hash password", err)
	}
	if name == "" {
		name = "Admin"
	}
	admin := entity.NewAdmin("", email, hash, name, uc.now())
	if err := uc.userRepo.Create(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
