package repositories

import (
	"context"
	"fmt"

	"ticket-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Master-data lookups: technicians, customers, projects. These resolve
// display names and pay rates only; the reconciliation engine never
// writes them.

type TechnicianRepository struct {
	DB *pgxpool.Pool
}

func NewTechnicianRepository(db *pgxpool.Pool) *TechnicianRepository {
	return &TechnicianRepository{DB: db}
}

const technicianColumns = `id, name, initials, COALESCE(email, ''), COALESCE(phone, ''),
	rt, tt, ft, shop_ot, field_ot, is_active, created_at, updated_at`

func scanTechnician(row interface{ Scan(...any) error }) (*models.Technician, error) {
	var t models.Technician
	err := row.Scan(&t.ID, &t.Name, &t.Initials, &t.Email, &t.Phone,
		&t.RateShop, &t.RateTravel, &t.RateField, &t.RateShopOT, &t.RateFieldOT,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (r *TechnicianRepository) Get(ctx context.Context, id int) (*models.Technician, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+technicianColumns+` FROM technicians WHERE id=$1`, id)
	return scanTechnician(row)
}

func (r *TechnicianRepository) List(ctx context.Context) ([]*models.Technician, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+technicianColumns+` FROM technicians ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", mapError(err))
	}
	defer rows.Close()

	var out []*models.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TechnicianRepository) Create(ctx context.Context, t *models.Technician) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO technicians(name, initials, email, phone, rt, tt, ft, shop_ot, field_ot, is_active)
         VALUES($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at, updated_at`,
		t.Name, t.Initials, t.Email, t.Phone,
		t.RateShop, t.RateTravel, t.RateField, t.RateShopOT, t.RateFieldOT, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create technician: %w", mapError(err))
	}
	return nil
}

func (r *TechnicianRepository) Update(ctx context.Context, t *models.Technician) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE technicians SET name=$1, initials=$2, email=NULLIF($3, ''), phone=NULLIF($4, ''),
			rt=$5, tt=$6, ft=$7, shop_ot=$8, field_ot=$9, is_active=$10, updated_at=CURRENT_TIMESTAMP
         WHERE id=$11`,
		t.Name, t.Initials, t.Email, t.Phone,
		t.RateShop, t.RateTravel, t.RateField, t.RateShopOT, t.RateFieldOT, t.IsActive, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update technician %d: %w", t.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, COALESCE(address, ''), COALESCE(contact, ''), COALESCE(phone, ''), created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Contact, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
	return scanCustomer(row)
}

func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", mapError(err))
	}
	defer rows.Close()

	var out []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, address, contact, phone)
         VALUES($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
         RETURNING id, created_at, updated_at`,
		c.Name, c.Address, c.Contact, c.Phone,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", mapError(err))
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET name=$1, address=NULLIF($2, ''), contact=NULLIF($3, ''),
			phone=NULLIF($4, ''), updated_at=CURRENT_TIMESTAMP
         WHERE id=$5`,
		c.Name, c.Address, c.Contact, c.Phone, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer %d: %w", c.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type ProjectRepository struct {
	DB *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

const projectColumns = `id, customer_id, name, COALESCE(approver, ''), COALESCE(po_afe, ''), COALESCE(cost_center, ''), created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.CustomerID, &p.Name, &p.Approver, &p.POAFE, &p.CostCenter, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id int) (*models.Project, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, id)
	return scanProject(row)
}

func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", mapError(err))
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO projects(customer_id, name, approver, po_afe, cost_center)
         VALUES($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
         RETURNING id, created_at, updated_at`,
		p.CustomerID, p.Name, p.Approver, p.POAFE, p.CostCenter,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", mapError(err))
	}
	return nil
}
