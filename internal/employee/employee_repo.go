package employee

import (
	"context"

	"gorm.io/gorm"
)

// Directory is the identity-provider contract the core consumes: hire date
// and part-time flag per employee. Records are owned elsewhere and never
// mutated here.
//
//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Directory interface {
	FindEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

type directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) Directory {
	return &directory{db: db}
}

func (d *directory) FindEmployee(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := d.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (d *directory) ListEmployees(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := d.db.WithContext(ctx).Order("created_at ASC").Find(&employees).Error
	return employees, err
}
