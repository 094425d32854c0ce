package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
)

// EmployeeService handles employee records and credentials.
type EmployeeService struct {
	employees ports.EmployeeRepository
	cache     ports.CacheService
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(employees ports.EmployeeRepository, cache ports.CacheService) *EmployeeService {
	return &EmployeeService{employees: employees, cache: cache}
}

// CreateEmployeeInput is the payload for Create.
type CreateEmployeeInput struct {
	Number     string
	Name       string
	Email      string
	Position   string
	Department string
	Role       string
	BaseSalary float64
	HiredAt    time.Time
	Password   string
}

// Create validates and stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, in CreateEmployeeInput) (*domain.Employee, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if in.Role == "" {
		in.Role = "employee"
	}
	if in.Role != "admin" && in.Role != "employee" {
		return nil, fmt.Errorf("role must be admin or employee")
	}
	if in.BaseSalary < 0 {
		return nil, fmt.Errorf("base salary must not be negative")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	e := &domain.Employee{
		ID:           uuid.NewString(),
		Number:       in.Number,
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		Position:     in.Position,
		Department:   in.Department,
		Role:         in.Role,
		BaseSalary:   in.BaseSalary,
		HiredAt:      in.HiredAt,
		Active:       true,
		PasswordHash: string(hash),
	}
	if err := s.employees.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update stores changed employee fields and invalidates the cache entry.
func (s *EmployeeService) Update(ctx context.Context, e *domain.Employee) error {
	if e.ID == "" {
		return fmt.Errorf("employee id is required")
	}
	if err := s.employees.Update(ctx, e); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "employees:id:"+e.ID)
	}
	return nil
}

// Deactivate soft-deletes an employee.
func (s *EmployeeService) Deactivate(ctx context.Context, id string) error {
	if err := s.employees.Deactivate(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "employees:id:"+id)
	}
	return nil
}

// GetByID returns a single employee, read-through cached.
func (s *EmployeeService) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	cacheKey := "employees:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var e domain.Employee
			if err := json.Unmarshal(data, &e); err == nil {
				return &e, nil
			}
		}
	}

	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(e); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return e, nil
}

// List returns employees, optionally only active ones.
func (s *EmployeeService) List(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	return s.employees.List(ctx, activeOnly)
}

// Search performs name/number/email search.
func (s *EmployeeService) Search(ctx context.Context, query string, limit int) ([]domain.Employee, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.employees.Search(ctx, query, limit)
}

// Authenticate verifies credentials and returns the employee on success.
func (s *EmployeeService) Authenticate(ctx context.Context, email, password string) (*domain.Employee, error) {
	e, err := s.employees.GetByEmail(ctx, strings.ToLower(email))
	if err != nil || e == nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !e.Active {
		return nil, fmt.Errorf("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return e, nil
}
