package vehicles

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societyhub/societyhub/internal/platform/db"
	"github.com/societyhub/societyhub/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `id, society_id, plate, owner_name, kind, is_active, created_at, updated_at`

// ListVehicles returns whitelisted vehicles for a society.
func (r *Repository) ListVehicles(ctx context.Context, societyID int64) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE society_id = $1 ORDER BY plate`, societyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.SocietyID, &v.Plate, &v.OwnerName, &v.Kind, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateVehicle inserts a whitelist entry. A duplicate plate within the
// society maps to ErrConflict.
func (r *Repository) CreateVehicle(ctx context.Context, v Vehicle) (Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO vehicles (society_id, plate, owner_name, kind, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		 RETURNING `+vehicleColumns,
		v.SocietyID, v.Plate, v.OwnerName, v.Kind,
	)
	var created Vehicle
	err := row.Scan(&created.ID, &created.SocietyID, &created.Plate, &created.OwnerName, &created.Kind, &created.IsActive, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Vehicle{}, shared.ErrConflict
		}
		return Vehicle{}, err
	}
	return created, nil
}

// DeactivateVehicle removes a vehicle from the whitelist without losing
// its history.
func (r *Repository) DeactivateVehicle(ctx context.Context, societyID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE vehicles SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND society_id = $2`,
		id, societyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindActiveByPlate looks up an active whitelist entry by normalized plate.
func (r *Repository) FindActiveByPlate(ctx context.Context, societyID int64, plate string) (Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE society_id = $1 AND plate = $2 AND is_active`,
		societyID, plate,
	)
	var v Vehicle
	err := row.Scan(&v.ID, &v.SocietyID, &v.Plate, &v.OwnerName, &v.Kind, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Vehicle{}, shared.ErrNotFound
		}
		return Vehicle{}, err
	}
	return v, nil
}

// RecordGateEvent stores a sighting and its decision.
func (r *Repository) RecordGateEvent(ctx context.Context, e GateEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO gate_events (society_id, device_id, plate, allowed, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		e.SocietyID, e.DeviceID, e.Plate, e.Allowed, e.OccurredAt.UTC(),
	)
	return err
}

// ListGateEvents returns recent sightings for a society, newest first.
func (r *Repository) ListGateEvents(ctx context.Context, societyID int64, since time.Time, limit int) ([]GateEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, society_id, device_id, plate, allowed, occurred_at
		 FROM gate_events WHERE society_id = $1 AND occurred_at >= $2
		 ORDER BY occurred_at DESC LIMIT $3`,
		societyID, since.UTC(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GateEvent
	for rows.Next() {
		var e GateEvent
		if err := rows.Scan(&e.ID, &e.SocietyID, &e.DeviceID, &e.Plate, &e.Allowed, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
