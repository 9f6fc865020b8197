package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"brickpress/pkg/domain"
)

const migrateLockID int64 = 20251017

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so several archive replicas can start at once.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &GenerationModel{}, &PasskeyModel{}, &OrderModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(ctx context.Context, u domain.User) error {
	model := userToModel(u)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "password_hash", "status", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(ctx context.Context, id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// CreateGeneration inserts a generation record.
func (s *GormStore) CreateGeneration(ctx context.Context, g domain.Generation) error {
	model := generationToModel(g)
	return s.db.WithContext(ctx).Create(&model).Error
}

// GetGeneration returns a generation by ID.
func (s *GormStore) GetGeneration(ctx context.Context, id string) (domain.Generation, bool, error) {
	var model GenerationModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Generation{}, false, nil
		}
		return domain.Generation{}, false, err
	}
	return generationFromModel(model), true, nil
}

// ListGenerationsByOwner returns the newest records for an owner.
func (s *GormStore) ListGenerationsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Generation, error) {
	var models []GenerationModel
	tx := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Generation, 0, len(models))
	for _, m := range models {
		res = append(res, generationFromModel(m))
	}
	return res, nil
}

// SavePasskey stores a credential, updating counter and name when the owner
// re-registers it. A credential held by another user is never touched.
func (s *GormStore) SavePasskey(ctx context.Context, p domain.Passkey) (domain.Passkey, error) {
	model := passkeyToModel(p)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing PasskeyModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("credential_id = ?", model.CredentialID).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&model).Error
		case err != nil:
			return err
		case existing.UserID != model.UserID:
			return ErrPasskeyConflict
		}
		existing.Name = model.Name
		existing.Counter = model.Counter
		existing.BackedUp = model.BackedUp
		existing.Transports = model.Transports
		model = existing
		return tx.Model(&existing).Select("name", "counter", "backed_up", "transports").Updates(&existing).Error
	})
	if err != nil {
		return domain.Passkey{}, err
	}
	return passkeyFromModel(model), nil
}

// ListPasskeysByUser returns a user's credentials, oldest first.
func (s *GormStore) ListPasskeysByUser(ctx context.Context, userID string) ([]domain.Passkey, error) {
	var models []PasskeyModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Passkey, 0, len(models))
	for _, m := range models {
		res = append(res, passkeyFromModel(m))
	}
	return res, nil
}

// CreateOrder inserts an order.
func (s *GormStore) CreateOrder(ctx context.Context, o domain.Order) error {
	model, err := orderToModel(o)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// ListOrdersByOwner returns a user's orders, newest first.
func (s *GormStore) ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	var models []OrderModel
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Order, 0, len(models))
	for _, m := range models {
		o, err := orderFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func generationToModel(g domain.Generation) GenerationModel {
	var owner *string
	if g.OwnerID != "" {
		id := g.OwnerID
		owner = &id
	}
	return GenerationModel{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Theme:       g.Theme,
		StorageID:   g.StorageID,
		OwnerID:     owner,
		CreatedAt:   g.CreatedAt,
	}
}

func generationFromModel(m GenerationModel) domain.Generation {
	g := domain.Generation{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Theme:       m.Theme,
		StorageID:   m.StorageID,
		CreatedAt:   m.CreatedAt,
	}
	if m.OwnerID != nil {
		g.OwnerID = *m.OwnerID
	}
	return g
}

func passkeyToModel(p domain.Passkey) PasskeyModel {
	return PasskeyModel{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		PublicKey:    p.PublicKey,
		CredentialID: p.CredentialID,
		Counter:      p.Counter,
		DeviceType:   p.DeviceType,
		BackedUp:     p.BackedUp,
		Transports:   datatypes.NewJSONSlice(p.Transports),
		AAGUID:       p.AAGUID,
		CreatedAt:    p.CreatedAt,
	}
}

func passkeyFromModel(m PasskeyModel) domain.Passkey {
	return domain.Passkey{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		PublicKey:    m.PublicKey,
		CredentialID: m.CredentialID,
		Counter:      m.Counter,
		DeviceType:   m.DeviceType,
		BackedUp:     m.BackedUp,
		Transports:   []string(m.Transports),
		AAGUID:       m.AAGUID,
		CreatedAt:    m.CreatedAt,
	}
}

func orderToModel(o domain.Order) (OrderModel, error) {
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return OrderModel{}, fmt.Errorf("encode shipping: %w", err)
	}
	return OrderModel{
		ID:           o.ID,
		OwnerID:      o.OwnerID,
		ProductID:    o.ProductID,
		GenerationID: o.GenerationID,
		Shipping:     datatypes.JSON(shipping),
		TotalCents:   o.TotalCents,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
	}, nil
}

func orderFromModel(m OrderModel) (domain.Order, error) {
	o := domain.Order{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		ProductID:    m.ProductID,
		GenerationID: m.GenerationID,
		TotalCents:   m.TotalCents,
		Status:       domain.OrderStatus(m.Status),
		CreatedAt:    m.CreatedAt,
	}
	if len(m.Shipping) > 0 {
		if err := json.Unmarshal(m.Shipping, &o.Shipping); err != nil {
			return domain.Order{}, fmt.Errorf("decode shipping for order %s: %w", m.ID, err)
		}
	}
	return o, nil
}
