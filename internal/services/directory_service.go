package services

import (
	"context"
	"encoding/json"
	"time"

	"ticket-backend/internal/cache"
	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"
	"ticket-backend/internal/tickets"
)

const directoryCacheKey = "directory:lookup"
const directoryCacheTTL = 10 * time.Minute

// directorySnapshot is one consistent load of the master data, indexed
// for the aggregator's lookups.
type directorySnapshot struct {
	Technicians map[int]*models.Technician `json:"technicians"`
	Customers   map[int]*models.Customer   `json:"customers"`
	Projects    map[int]*models.Project    `json:"projects"`
}

// DirectoryService resolves display names and rates for aggregates from
// the master-data tables, with a Redis-backed snapshot cache in front.
type DirectoryService struct {
	TechnicianRepo *repositories.TechnicianRepository
	CustomerRepo   *repositories.CustomerRepository
	ProjectRepo    *repositories.ProjectRepository
}

func NewDirectoryService(techRepo *repositories.TechnicianRepository, custRepo *repositories.CustomerRepository, projRepo *repositories.ProjectRepository) *DirectoryService {
	return &DirectoryService{
		TechnicianRepo: techRepo,
		CustomerRepo:   custRepo,
		ProjectRepo:    projRepo,
	}
}

// Load returns a point-in-time Directory for one reconciliation pass.
// Master-data writes invalidate the cache key, so a stale snapshot lives
// at most one TTL.
func (s *DirectoryService) Load(ctx context.Context) (tickets.Directory, error) {
	if data, ok := cache.GetCached(ctx, directoryCacheKey); ok {
		var snap directorySnapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			return &snap, nil
		}
	}

	snap := &directorySnapshot{
		Technicians: make(map[int]*models.Technician),
		Customers:   make(map[int]*models.Customer),
		Projects:    make(map[int]*models.Project),
	}

	techs, err := s.TechnicianRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range techs {
		snap.Technicians[t.ID] = t
	}

	customers, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		snap.Customers[c.ID] = c
	}

	projects, err := s.ProjectRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		snap.Projects[p.ID] = p
	}

	if data, err := json.Marshal(snap); err == nil {
		cache.SetCached(ctx, directoryCacheKey, data, directoryCacheTTL)
	}

	return snap, nil
}

func (d *directorySnapshot) CustomerName(id int) string {
	if c, ok := d.Customers[id]; ok {
		return c.Name
	}
	return ""
}

func (d *directorySnapshot) CustomerAddress(id int) string {
	if c, ok := d.Customers[id]; ok {
		return c.Address
	}
	return ""
}

func (d *directorySnapshot) CustomerContact(id int) string {
	if c, ok := d.Customers[id]; ok {
		return c.Contact
	}
	return ""
}

func (d *directorySnapshot) ProjectName(id int) string {
	if p, ok := d.Projects[id]; ok {
		return p.Name
	}
	return ""
}

func (d *directorySnapshot) TechnicianName(id int) string {
	if t, ok := d.Technicians[id]; ok {
		return t.Name
	}
	return ""
}

func (d *directorySnapshot) TechnicianInitials(id int) string {
	if t, ok := d.Technicians[id]; ok {
		return t.Initials
	}
	return ""
}

func (d *directorySnapshot) TechnicianRates(id int) tickets.Rates {
	if t, ok := d.Technicians[id]; ok {
		return tickets.Rates{
			Shop:    t.RateShop,
			Travel:  t.RateTravel,
			Field:   t.RateField,
			ShopOT:  t.RateShopOT,
			FieldOT: t.RateFieldOT,
		}
	}
	return tickets.Rates{}
}
