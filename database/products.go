package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

// ProductService handles all product catalog operations. Products are
// shared catalog entities and carry no ownership.
type ProductService struct {
	db *sql.DB
}

// NewProductService creates a new product service instance
func NewProductService(db *sql.DB) *ProductService {
	return &ProductService{db: db}
}

// Create validates and persists a new product.
func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	if err := models.ValidateProduct(p); err != nil {
		return err
	}

	p.ID = uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)
	p.CreatedAt = now
	p.UpdatedAt = now

	ingredients, err := json.Marshal(p.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	certifications, err := json.Marshal(certsOrEmpty(p.Certifications))
	if err != nil {
		return fmt.Errorf("failed to marshal certifications: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, brand, ingredients, description, certifications, packaging, sustainability, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Brand, ingredients, p.Description, certifications, p.Packaging, p.Sustainability, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		log.Errorf("Failed to insert product %s: %v", p.Name, err)
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Get returns a single product by id, or ErrNotFound.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, brand, ingredients, description, certifications, packaging, sustainability, created_at, updated_at
		FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// List returns one page of products, optionally filtered by category,
// together with the total count.
func (s *ProductService) List(ctx context.Context, page, limit int, category string) ([]models.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := ""
	args := []interface{}{}
	if category != "" {
		where = " WHERE category = ?"
		args = append(args, category)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, brand, ingredients, description, certifications, packaging, sustainability, created_at, updated_at
		FROM products`+where+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search matches the query against product name, brand and description,
// optionally narrowed by category.
func (s *ProductService) Search(ctx context.Context, query, category string) ([]models.Product, error) {
	pattern := "%" + query + "%"
	where := " WHERE (name LIKE ? OR brand LIKE ? OR description LIKE ?)"
	args := []interface{}{pattern, pattern, pattern}
	if category != "" {
		where += " AND category = ?"
		args = append(args, category)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, brand, ingredients, description, certifications, packaging, sustainability, created_at, updated_at
		FROM products`+where+`
		ORDER BY name ASC LIMIT 50`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Update applies a partial merge onto an existing product and re-validates
// the result before writing it back.
func (s *ProductService) Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Ingredients != nil {
		p.Ingredients = *req.Ingredients
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Certifications != nil {
		p.Certifications = *req.Certifications
	}
	if req.Packaging != nil {
		p.Packaging = *req.Packaging
	}
	if req.Sustainability != nil {
		p.Sustainability = *req.Sustainability
	}

	if err := models.ValidateProduct(p); err != nil {
		return nil, err
	}

	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	ingredients, err := json.Marshal(p.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	certifications, err := json.Marshal(certsOrEmpty(p.Certifications))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal certifications: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, category = ?, brand = ?, ingredients = ?, description = ?, certifications = ?, packaging = ?, sustainability = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Category, p.Brand, ingredients, p.Description, certifications, p.Packaging, p.Sustainability, p.UpdatedAt, id)
	if err != nil {
		log.Errorf("Failed to update product %s: %v", id, err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// Delete removes a product. Its questions go with it via the FK cascade;
// reports keep their product reference.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func certsOrEmpty(certs []string) []string {
	if certs == nil {
		return []string{}
	}
	return certs
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var ingredients, certifications []byte
	var description, packaging, sustainability sql.NullString

	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &ingredients, &description, &certifications, &packaging, &sustainability, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if err := json.Unmarshal(ingredients, &p.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if len(certifications) > 0 {
		if err := json.Unmarshal(certifications, &p.Certifications); err != nil {
			return nil, fmt.Errorf("failed to unmarshal certifications: %w", err)
		}
	}
	p.Description = description.String
	p.Packaging = packaging.String
	p.Sustainability = sustainability.String

	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
