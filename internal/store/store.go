package store

import (
	"errors"  // Sentinel error checks
	"strings" // Username normalization

	"ecosort/internal/domain" // Domain models and errors

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Store is the data-access layer. Handlers go through it instead of issuing
// queries themselves, so the storage engine stays swappable behind one type.
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migration and middleware
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Open connects to the configured database. SQLite keeps the original
// single-file deployment; "mysql" swaps in a networked server without
// touching any call site.
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{TranslateError: true}
	switch driver {
	case "mysql":
		return gorm.Open(mysql.Open(dsn), gcfg)
	default:
		return gorm.Open(sqlite.Open(dsn), gcfg)
	}
}

// Register creates a new user with a bcrypt-hashed password. Usernames are
// stored lowercase so uniqueness is case-insensitive.
func (s *Store) Register(username, password, role, address, zone string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username: strings.ToLower(username),
		Password: string(hash),
		Role:     role,
		Address:  address,
		Zone:     zone,
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair and returns the matching
// user. A missing user and a wrong password are indistinguishable to the
// caller.
func (s *Store) Authenticate(username, password string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser fetches a user by ID
func (s *Store) GetUser(id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AssignZone moves a collector to a new duty zone
func (s *Store) AssignZone(username, zone string) error {
	res := s.db.Model(&domain.User{}).
		Where("username = ? AND role = ?", strings.ToLower(username), domain.RoleCollector).
		Update("zone", zone)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UserAdminRow is one line of the admin user listing: account data plus the
// live ledger balance.
type UserAdminRow struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Zone     string `json:"zone"`
	Points   int    `json:"points"`
}

// ListUsers returns one page of users with their derived point balances
func (s *Store) ListUsers(page, pageSize int) ([]UserAdminRow, int64, error) {
	var total int64
	if err := s.db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []UserAdminRow
	err := s.db.Model(&domain.User{}).
		Select("users.id, users.username, users.role, users.zone, COALESCE(SUM(ledger_entries.points_delta), 0) AS points").
		Joins("LEFT JOIN ledger_entries ON ledger_entries.resident_id = users.id").
		Group("users.id").
		Order("users.id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
