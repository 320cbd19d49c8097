package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nandhu-6/leave-management-system/leave"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("employee already registered")
	ErrNotRegistered      = errors.New("employee not registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service handles registration and login against the employee directory.
type Service struct {
	Store  leave.Store
	Tokens *TokenService
}

func NewService(store leave.Store, tokens *TokenService) *Service {
	return &Service{Store: store, Tokens: tokens}
}

// Register attaches a password to a provisioned directory record. An
// employee unknown to the directory cannot self-enroll.
func (s *Service) Register(ctx context.Context, id leave.EmployeeID, password string) error {
	if password == "" {
		return ErrInvalidCredentials
	}
	return s.Store.WithTx(ctx, func(tx leave.Store) error {
		employee, err := tx.Employees().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if employee.PasswordHash != "" {
			return fmt.Errorf("employee %s: %w", id, ErrAlreadyRegistered)
		}
		hash, err := HashPassword(password)
		if err != nil {
			return err
		}
		employee.PasswordHash = hash
		return tx.Employees().Save(ctx, employee)
	})
}

// Login verifies the password and issues a session token.
func (s *Service) Login(ctx context.Context, id leave.EmployeeID, password string) (token string, expiresAt int64, employee *leave.Employee, err error) {
	employee, err = s.Store.Employees().FindByID(ctx, id)
	if err != nil {
		if leave.IsNotFound(err) {
			// Same error as a bad password: existence of an employee id
			// is not disclosed to unauthenticated callers.
			return "", 0, nil, ErrInvalidCredentials
		}
		return "", 0, nil, err
	}
	if employee.PasswordHash == "" {
		return "", 0, nil, fmt.Errorf("employee %s: %w", id, ErrNotRegistered)
	}
	if !CheckPassword(employee.PasswordHash, password) {
		return "", 0, nil, ErrInvalidCredentials
	}

	token, expiresAt, err = s.Tokens.IssueToken(employee)
	if err != nil {
		return "", 0, nil, err
	}
	return token, expiresAt, employee, nil
}
