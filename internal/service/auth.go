package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linemk/agro-shop/internal/domain/models"
	security "github.com/linemk/agro-shop/internal/jwt"
	"github.com/linemk/agro-shop/internal/storage"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

// Register создаёт нового пользователя с ролью USER.
// Пароль хэшируется через bcrypt (автоматически добавляет соль).
// Роль назначается здесь и не принимается снаружи: самостоятельная регистрация
// не может создать администратора.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	const op = "auth.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("registering user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		PassHash: passHash,
		Role:     models.RoleUser,
	}
	user, err = a.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("username already taken")
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// Login проверяет учётные данные и возвращает JWT-токен вместе с пользователем.
// Отсутствие пользователя и неверный пароль неразличимы для клиента.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	// Генерация JWT-токена. Функция security.NewToken внутри сама загружает секрет из переменной окружения JWT_SECRET.
	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, user, nil
}

// EnsureAdmin создаёт учётную запись администратора при старте приложения,
// если её ещё нет. При пустом пароле ничего не делает.
func (a *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	const op = "auth.EnsureAdmin"
	logger := a.log.With(slog.String("op", op), slog.String("username", username))

	if password == "" {
		logger.Warn("admin password is not set, skipping admin bootstrap")
		return nil
	}

	_, err := a.userRepo.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("%s: failed to check admin: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	admin := &models.User{
		Username: username,
		Email:    email,
		PassHash: passHash,
		Role:     models.RoleAdmin,
	}
	if _, err := a.userRepo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("%s: failed to create admin: %w", op, err)
	}

	logger.Info("admin account created")
	return nil
}
