package services

import (
	"context"

	"ticket-backend/internal/cache"
	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"
)

// MasterDataService owns the lookup tables that feed the directory:
// technicians, customers and projects.
type MasterDataService struct {
	TechnicianRepo *repositories.TechnicianRepository
	CustomerRepo   *repositories.CustomerRepository
	ProjectRepo    *repositories.ProjectRepository
}

func NewMasterDataService(techRepo *repositories.TechnicianRepository, custRepo *repositories.CustomerRepository, projRepo *repositories.ProjectRepository) *MasterDataService {
	return &MasterDataService{
		TechnicianRepo: techRepo,
		CustomerRepo:   custRepo,
		ProjectRepo:    projRepo,
	}
}

func (s *MasterDataService) ListTechnicians(ctx context.Context) ([]*models.Technician, error) {
	return s.TechnicianRepo.List(ctx)
}

func (s *MasterDataService) CreateTechnician(ctx context.Context, t *models.Technician) error {
	if t.Name == "" || t.Initials == "" {
		return validationErr("technician name and initials are required")
	}
	if err := s.TechnicianRepo.Create(ctx, t); err != nil {
		return err
	}
	cache.InvalidateTechnicianCaches(ctx)
	return nil
}

func (s *MasterDataService) UpdateTechnician(ctx context.Context, t *models.Technician) error {
	if t.Name == "" || t.Initials == "" {
		return validationErr("technician name and initials are required")
	}
	if err := s.TechnicianRepo.Update(ctx, t); err != nil {
		return err
	}
	cache.InvalidateTechnicianCaches(ctx)
	return nil
}

func (s *MasterDataService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.CustomerRepo.List(ctx)
}

func (s *MasterDataService) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if c.Name == "" {
		return validationErr("customer name is required")
	}
	if err := s.CustomerRepo.Create(ctx, c); err != nil {
		return err
	}
	cache.InvalidateCustomerCaches(ctx)
	return nil
}

func (s *MasterDataService) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if c.Name == "" {
		return validationErr("customer name is required")
	}
	if err := s.CustomerRepo.Update(ctx, c); err != nil {
		return err
	}
	cache.InvalidateCustomerCaches(ctx)
	return nil
}

func (s *MasterDataService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.ProjectRepo.List(ctx)
}

func (s *MasterDataService) CreateProject(ctx context.Context, p *models.Project) error {
	if p.Name == "" {
		return validationErr("project name is required")
	}
	if p.CustomerID == 0 {
		return validationErr("project customer_id is required")
	}
	if err := s.ProjectRepo.Create(ctx, p); err != nil {
		return err
	}
	cache.InvalidateProjectCaches(ctx)
	return nil
}
