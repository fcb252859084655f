package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
)

func newAccountService(users *memoryUserRepo, notifier *stubNotifier) AccountService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAccountService(users, policy.New(policy.EnrollmentPolicyAdmin), notifier, validate, "https://aula.example.com/login", testLogger())
}

func TestAccountServiceRegisterHashesPasswordAndNotifies(t *testing.T) {
	users := newMemoryUserRepo()
	notifier := &stubNotifier{}
	svc := newAccountService(users, notifier)

	admin := users.mustAdd(models.User{ID: 1, Role: models.RoleAdmin})

	account, err := svc.Register(context.Background(), admin, dto.AccountCreateRequest{
		Name:     "Maria Lopez",
		Email:    "maria@example.com",
		Password: "s3cret",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, account.Role)
	require.Equal(t, []string{"maria@example.com"}, notifier.sent)

	stored, err := users.GetByEmail(context.Background(), "maria@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", stored.PasswordHash)
	require.True(t, stored.CheckPassword("s3cret"))
}

func TestAccountServiceRegisterDeniedForNonAdmin(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAccountService(users, &stubNotifier{})

	teacher := users.mustAdd(models.User{ID: 1, Role: models.RoleTeacher})

	_, err := svc.Register(context.Background(), teacher, dto.AccountCreateRequest{
		Name:     "Pedro",
		Email:    "pedro@example.com",
		Password: "pass",
		Role:     models.RoleStudent,
	})
	require.True(t, policy.IsDenied(err))
	require.Empty(t, users.users[2].Email)
}

func TestAccountServiceRegisterDuplicateEmail(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAccountService(users, &stubNotifier{})

	admin := users.mustAdd(models.User{ID: 1, Role: models.RoleAdmin})

	payload := dto.AccountCreateRequest{
		Name:     "Maria Lopez",
		Email:    "maria@example.com",
		Password: "s3cret",
		Role:     models.RoleStudent,
	}
	_, err := svc.Register(context.Background(), admin, payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), admin, payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAccountServiceRegisterUnknownRole(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAccountService(users, &stubNotifier{})

	admin := users.mustAdd(models.User{ID: 1, Role: models.RoleAdmin})

	_, err := svc.Register(context.Background(), admin, dto.AccountCreateRequest{
		Name:     "Nobody",
		Email:    "nobody@example.com",
		Password: "pass",
		Role:     "superuser",
	})
	require.Error(t, err)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestAccountServiceRegisterSucceedsWhenNotificationFails(t *testing.T) {
	users := newMemoryUserRepo()
	notifier := &stubNotifier{err: context.DeadlineExceeded}
	svc := newAccountService(users, notifier)

	admin := users.mustAdd(models.User{ID: 1, Role: models.RoleAdmin})

	account, err := svc.Register(context.Background(), admin, dto.AccountCreateRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "pass",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	require.NotZero(t, account.ID)
}

func TestAccountServiceBootstrapNeedsNoActor(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAccountService(users, &stubNotifier{})

	account, err := svc.Bootstrap(context.Background(), dto.AccountCreateRequest{
		Name:     "Root Admin",
		Email:    "root@example.com",
		Password: "changeme",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, account.Role)
}

func TestAccountServiceListByRole(t *testing.T) {
	users := newMemoryUserRepo()
	svc := newAccountService(users, &stubNotifier{})

	admin := users.mustAdd(models.User{ID: 1, Role: models.RoleAdmin})
	users.mustAdd(models.User{ID: 2, Name: "T", Email: "t@example.com", Role: models.RoleTeacher})
	users.mustAdd(models.User{ID: 3, Name: "S1", Email: "s1@example.com", Role: models.RoleStudent})
	users.mustAdd(models.User{ID: 4, Name: "S2", Email: "s2@example.com", Role: models.RoleStudent})

	students, err := svc.ListByRole(context.Background(), admin, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 2)

	_, err = svc.ListByRole(context.Background(), admin, "wizard")
	require.ErrorIs(t, err, ErrValidation)

	teacher := users.users[2]
	_, err = svc.ListByRole(context.Background(), teacher, models.RoleStudent)
	require.True(t, policy.IsDenied(err))
}
