package usecases

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/samirrijal/lankide/internal/core/domain"
)

type mockEmployeeRepo struct {
	createFn     func(ctx context.Context, e *domain.Employee) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Employee, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.Employee, error)
	listFn       func(ctx context.Context, activeOnly bool) ([]domain.Employee, error)
	searchFn     func(ctx context.Context, query string, limit int) ([]domain.Employee, error)
}

func (m *mockEmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	if m.createFn != nil {
		return m.createFn(ctx, e)
	}
	return nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, e *domain.Employee) error { return nil }
func (m *mockEmployeeRepo) Deactivate(ctx context.Context, id string) error      { return nil }

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) List(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	if m.listFn != nil {
		return m.listFn(ctx, activeOnly)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) Search(ctx context.Context, query string, limit int) ([]domain.Employee, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func TestEmployeeService_Create(t *testing.T) {
	var stored *domain.Employee
	repo := &mockEmployeeRepo{
		createFn: func(ctx context.Context, e *domain.Employee) error {
			stored = e
			return nil
		},
	}
	svc := NewEmployeeService(repo, nil)

	e, err := svc.Create(context.Background(), CreateEmployeeInput{
		Number:   "E-042",
		Name:     "Maite Etxeberria",
		Email:    "Maite@Example.com",
		Position: "Engineer",
		Password: "correct horse battery",
		HiredAt:  time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected Create to hit the repository")
	}
	if e.Email != "maite@example.com" {
		t.Errorf("expected lowercased email, got %s", e.Email)
	}
	if e.Role != "employee" {
		t.Errorf("expected default role employee, got %s", e.Role)
	}
	if !e.Active {
		t.Error("new employees should be active")
	}
	if e.PasswordHash == "" || e.PasswordHash == "correct horse battery" {
		t.Error("password must be stored hashed")
	}
}

func TestEmployeeService_Create_Validation(t *testing.T) {
	svc := NewEmployeeService(&mockEmployeeRepo{}, nil)

	cases := []struct {
		name string
		in   CreateEmployeeInput
	}{
		{"missing name", CreateEmployeeInput{Email: "a@b.eus", Password: "longenough"}},
		{"bad email", CreateEmployeeInput{Name: "X", Email: "nope", Password: "longenough"}},
		{"short password", CreateEmployeeInput{Name: "X", Email: "a@b.eus", Password: "short"}},
		{"bad role", CreateEmployeeInput{Name: "X", Email: "a@b.eus", Password: "longenough", Role: "owner"}},
		{"negative salary", CreateEmployeeInput{Name: "X", Email: "a@b.eus", Password: "longenough", BaseSalary: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEmployeeService_Authenticate(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	active := &domain.Employee{
		ID: "emp-1", Email: "maite@example.com", Active: true, PasswordHash: string(hash),
	}
	repo := &mockEmployeeRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.Employee, error) {
			if email == active.Email {
				return active, nil
			}
			return nil, nil
		},
	}
	svc := NewEmployeeService(repo, nil)

	e, err := svc.Authenticate(context.Background(), "Maite@Example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "emp-1" {
		t.Errorf("expected emp-1, got %s", e.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "maite@example.com", "wrong"); err == nil {
		t.Error("wrong password must fail")
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "hunter2hunter2"); err == nil {
		t.Error("unknown email must fail")
	}

	active.Active = false
	if _, err := svc.Authenticate(context.Background(), "maite@example.com", "hunter2hunter2"); err == nil {
		t.Error("deactivated employee must fail")
	}
}
