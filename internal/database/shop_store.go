package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/belphemur/storefront/internal/constants"
	"github.com/belphemur/storefront/internal/hours"
	"github.com/belphemur/storefront/internal/logging"
)

var (
	// ErrShopNotFound is returned when no shop matches the given id or alias
	ErrShopNotFound = errors.New("shop not found")
	// ErrAliasTaken is returned when another shop already uses the alias
	ErrAliasTaken = errors.New("shop alias already in use")
	// ErrInvalidShop is returned when a shop's fields cannot be stored
	ErrInvalidShop = errors.New("invalid shop")
)

// Shop is a storefront whose business hours are published
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Alias     string    `json:"alias"`
	WhatsApp  string    `json:"whatsapp,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShopStore handles shop and business hours storage in SQLite
type ShopStore struct {
	db     *DB
	logger zerolog.Logger
}

// NewShopStore creates a new shop store
func NewShopStore(db *DB) (*ShopStore, error) {
	return &ShopStore{db: db, logger: logging.GetLogger("shop-store")}, nil
}

const shopColumns = `id, name, alias, whatsapp, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShop(row rowScanner) (*Shop, error) {
	var shop Shop
	if err := row.Scan(&shop.ID, &shop.Name, &shop.Alias, &shop.WhatsApp, &shop.CreatedAt, &shop.UpdatedAt); err != nil {
		return nil, err
	}
	return &shop, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// CreateShop inserts a shop, generating an id when none is set.
// An empty alias is derived from the name.
func (s *ShopStore) CreateShop(ctx context.Context, shop *Shop) error {
	if strings.TrimSpace(shop.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidShop)
	}
	if shop.ID == "" {
		shop.ID = uuid.NewString()
	} else if _, err := uuid.Parse(shop.ID); err != nil {
		return fmt.Errorf("%w: id %q is not a UUID: %v", ErrInvalidShop, shop.ID, err)
	}
	if shop.Alias == "" {
		shop.Alias = constants.Slugify(shop.Name)
	}
	if !constants.IsValidAlias(shop.Alias) {
		return fmt.Errorf("%w: alias %q is not a lowercase slug", ErrInvalidShop, shop.Alias)
	}

	s.logger.Debug().Str("shop_id", shop.ID).Str("alias", shop.Alias).Msg("Creating shop")
	now := time.Now().UTC().Truncate(time.Second)
	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO shops (id, name, alias, whatsapp, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, shop.ID, shop.Name, shop.Alias, shop.WhatsApp, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn().Str("alias", shop.Alias).Msg("Shop alias already in use")
			return fmt.Errorf("failed to create shop %q: %w", shop.Alias, ErrAliasTaken)
		}
		s.logger.Error().Err(err).Str("shop_id", shop.ID).Msg("Failed to create shop")
		return fmt.Errorf("failed to create shop: %w", err)
	}

	shop.CreatedAt = now
	shop.UpdatedAt = now
	s.logger.Info().Str("shop_id", shop.ID).Str("alias", shop.Alias).Msg("Shop created")
	return nil
}

// GetShop retrieves a shop by id
func (s *ShopStore) GetShop(ctx context.Context, id string) (*Shop, error) {
	s.logger.Debug().Str("shop_id", id).Msg("Retrieving shop")
	shop, err := scanShop(s.db.Conn().QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("shop_id", id).Msg("Failed to retrieve shop")
		return nil, fmt.Errorf("failed to retrieve shop: %w", err)
	}
	return shop, nil
}

// GetShopByAlias retrieves a shop by its public alias
func (s *ShopStore) GetShopByAlias(ctx context.Context, alias string) (*Shop, error) {
	s.logger.Debug().Str("alias", alias).Msg("Retrieving shop by alias")
	shop, err := scanShop(s.db.Conn().QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE alias = ?`, alias))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("alias", alias).Msg("Failed to retrieve shop by alias")
		return nil, fmt.Errorf("failed to retrieve shop: %w", err)
	}
	return shop, nil
}

// ListShops returns every shop ordered by name
func (s *ShopStore) ListShops(ctx context.Context) ([]*Shop, error) {
	s.logger.Debug().Msg("Listing shops")
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY name, alias`)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to query shops")
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	shops := make([]*Shop, 0)
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to scan shop row")
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, shop)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("Error iterating shop rows")
		return nil, fmt.Errorf("error iterating shops: %w", err)
	}

	s.logger.Debug().Int("count", len(shops)).Msg("Shops listed")
	return shops, nil
}

// DeleteShop removes a shop and, through the foreign key, its hours
func (s *ShopStore) DeleteShop(ctx context.Context, id string) error {
	s.logger.Debug().Str("shop_id", id).Msg("Deleting shop")
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM shops WHERE id = ?`, id)
	if err != nil {
		s.logger.Error().Err(err).Str("shop_id", id).Msg("Failed to delete shop")
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrShopNotFound
	}
	s.logger.Info().Str("shop_id", id).Msg("Shop deleted")
	return nil
}

// GetBusinessHours returns a shop's schedule in stored order.
// A shop without stored hours yields an empty schedule.
func (s *ShopStore) GetBusinessHours(ctx context.Context, shopID string) (hours.WeeklySchedule, error) {
	s.logger.Debug().Str("shop_id", shopID).Msg("Retrieving business hours")

	var exists int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM shops WHERE id = ?`, shopID).Scan(&exists)
	if err != nil {
		s.logger.Error().Err(err).Str("shop_id", shopID).Msg("Failed to check shop existence")
		return nil, fmt.Errorf("failed to check shop: %w", err)
	}
	if exists == 0 {
		return nil, ErrShopNotFound
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT day, is_open, open_time, close_time
		FROM business_hours
		WHERE shop_id = ?
		ORDER BY position
	`, shopID)
	if err != nil {
		s.logger.Error().Err(err).Str("shop_id", shopID).Msg("Failed to query business hours")
		return nil, fmt.Errorf("failed to retrieve business hours: %w", err)
	}
	defer rows.Close()

	schedule := make(hours.WeeklySchedule, 0, hours.DaysInWeek)
	for rows.Next() {
		var day hours.DaySchedule
		if err := rows.Scan(&day.Day, &day.IsOpen, &day.OpenTime, &day.CloseTime); err != nil {
			s.logger.Error().Err(err).Msg("Failed to scan business hours row")
			return nil, fmt.Errorf("failed to scan business hours: %w", err)
		}
		schedule = append(schedule, day)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("Error iterating business hours rows")
		return nil, fmt.Errorf("error iterating business hours: %w", err)
	}

	s.logger.Debug().Str("shop_id", shopID).Int("entries", len(schedule)).Msg("Business hours retrieved")
	return schedule, nil
}

// SaveBusinessHours replaces a shop's schedule, keeping the given order
func (s *ShopStore) SaveBusinessHours(ctx context.Context, shopID string, schedule hours.WeeklySchedule) error {
	s.logger.Debug().Str("shop_id", shopID).Int("entries", len(schedule)).Msg("Saving business hours")

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE shops SET updated_at = ? WHERE id = ?`, time.Now().UTC().Truncate(time.Second), shopID)
		if err != nil {
			return fmt.Errorf("failed to touch shop: %w", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read updated rows: %w", err)
		} else if affected == 0 {
			return ErrShopNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM business_hours WHERE shop_id = ?`, shopID); err != nil {
			return fmt.Errorf("failed to delete existing business hours: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO business_hours (shop_id, position, day, is_open, open_time, close_time)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, day := range schedule {
			if _, err := stmt.ExecContext(ctx, shopID, i, day.Day, day.IsOpen, day.OpenTime, day.CloseTime); err != nil {
				return fmt.Errorf("failed to insert business hours for %s: %w", day.Day, err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrShopNotFound) {
			s.logger.Error().Err(err).Str("shop_id", shopID).Msg("Failed to save business hours")
		}
		return err
	}

	s.logger.Info().Str("shop_id", shopID).Int("entries", len(schedule)).Msg("Business hours saved")
	return nil
}
