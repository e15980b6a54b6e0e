package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type seedStudentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	Create(ctx context.Context, student *models.Student) error
}

type seedGuardianRepository interface {
	Create(ctx context.Context, guardian *models.Guardian) error
}

type seedCategoryRepository interface {
	ListAll(ctx context.Context) ([]models.AgeCategory, error)
	Create(ctx context.Context, category *models.AgeCategory) error
}

type seedBeltRepository interface {
	ListAll(ctx context.Context) ([]models.Belt, error)
	SeedDefaults(ctx context.Context) error
}

type seedUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SeedResult summarizes what the demo seed created.
type SeedResult struct {
	Categories int `json:"categories"`
	Belts      int `json:"belts"`
	Guardians  int `json:"guardians"`
	Students   int `json:"students"`
	Users      int `json:"users"`
}

// SeedService populates an empty installation with demo data for trials and
// local development. It refuses to run when students already exist.
type SeedService struct {
	students   seedStudentRepository
	guardians  seedGuardianRepository
	categories seedCategoryRepository
	belts      seedBeltRepository
	users      seedUserRepository
	logger     *zap.Logger
	adminEmail string
	adminPass  string
}

// NewSeedService constructs the seed service.
func NewSeedService(students seedStudentRepository, guardians seedGuardianRepository, categories seedCategoryRepository, belts seedBeltRepository, users seedUserRepository, adminEmail, adminPass string, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adminEmail == "" {
		adminEmail = "admin@dojo.local"
	}
	if adminPass == "" {
		adminPass = "admin123"
	}
	return &SeedService{
		students:   students,
		guardians:  guardians,
		categories: categories,
		belts:      belts,
		users:      users,
		logger:     logger,
		adminEmail: adminEmail,
		adminPass:  adminPass,
	}
}

var seedCategories = []struct {
	Name   string
	MinAge int
	MaxAge int
	Price  float64
}{
	{"Benjamin", 4, 7, 25},
	{"Alevin", 8, 9, 25},
	{"Infantil", 10, 11, 28},
	{"Cadete", 12, 13, 28},
	{"Junior", 14, 15, 30},
	{"Senior", 16, 34, 30},
	{"Veterano", 35, 99, 30},
}

var seedGuardians = []models.Guardian{
	{DocumentID: "V-14725836", FullName: "María González", Email: "maria.gonzalez@example.com", Phone: "0414-5551234", Address: "Av. Bolívar, Caracas"},
	{DocumentID: "V-18365492", FullName: "Carlos Rodríguez", Email: "carlos.rodriguez@example.com", Phone: "0412-5554321", Address: "Calle Sucre, Valencia"},
}

var seedStudents = []struct {
	DocumentID string
	FullName   string
	BirthYear  int
	BeltRank   int
	Guardian   int // index into seedGuardians, -1 for adults
}{
	{"V-33012456", "Sofía González", 2016, 1, 0},
	{"V-33548721", "Diego Rodríguez", 2014, 2, 1},
	{"V-31254896", "Valentina Rodríguez", 2012, 3, 1},
	{"V-12903478", "Andrés Mendoza", 1995, 5, -1},
	{"V-09128734", "Luisa Herrera", 1988, 7, -1},
}

// EnsureAdmin creates the bootstrap ADMIN account when it does not exist.
func (s *SeedService) EnsureAdmin(ctx context.Context) error {
	if _, err := s.users.FindByEmail(ctx, s.adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check admin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Email:        s.adminEmail,
		PasswordHash: string(hash),
		FullName:     "Administrador",
		Role:         models.RoleAdmin,
		Language:     "es",
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", zap.String("email", s.adminEmail))
	return nil
}

// Run seeds categories, belts, guardians and students. It is idempotent in
// the sense that a non-empty roster aborts the run.
func (s *SeedService) Run(ctx context.Context, actorID string) (*SeedResult, error) {
	_, total, err := s.students.List(ctx, models.StudentFilter{PageSize: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect roster")
	}
	if total > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "demo seed requires an empty roster")
	}

	result := &SeedResult{}

	if err := s.belts.SeedDefaults(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed belts")
	}
	belts, err := s.belts.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load belts")
	}
	result.Belts = len(belts)
	beltByRank := make(map[int]string, len(belts))
	for _, belt := range belts {
		beltByRank[belt.Rank] = belt.ID
	}

	existing, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load categories")
	}
	categories := existing
	if len(existing) == 0 {
		for _, seed := range seedCategories {
			minAge, maxAge, price := seed.MinAge, seed.MaxAge, seed.Price
			category := &models.AgeCategory{
				Name:         seed.Name,
				MinAge:       &minAge,
				MaxAge:       &maxAge,
				MonthlyPrice: &price,
			}
			if err := s.categories.Create(ctx, category); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed category")
			}
			categories = append(categories, *category)
			result.Categories++
		}
	}

	guardianIDs := make([]string, 0, len(seedGuardians))
	for _, seed := range seedGuardians {
		guardian := seed
		if err := s.guardians.Create(ctx, &guardian); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed guardian")
		}
		guardianIDs = append(guardianIDs, guardian.ID)
		result.Guardians++
	}

	now := time.Now()
	for _, seed := range seedStudents {
		birth := time.Date(seed.BirthYear, time.March, 15, 0, 0, 0, 0, time.UTC)
		student := &models.Student{
			DocumentID: seed.DocumentID,
			FullName:   seed.FullName,
			BirthDate:  birth,
			Active:     true,
		}
		if beltID, ok := beltByRank[seed.BeltRank]; ok {
			student.BeltID = &beltID
		}
		if seed.Guardian >= 0 && seed.Guardian < len(guardianIDs) {
			student.GuardianID = &guardianIDs[seed.Guardian]
		}
		age := AgeAt(birth, now)
		if resolution := ResolveCategory(age, categories); resolution.Category != nil {
			student.CategoryID = &resolution.Category.ID
		}
		if err := s.students.Create(ctx, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed student")
		}
		result.Students++
	}

	if err := s.EnsureAdmin(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed admin")
	}
	result.Users = 1

	entry := &models.AuditLog{
		Action:    models.AuditActionDemoSeed,
		Resource:  "seed",
		NewValues: []byte(fmt.Sprintf(`{"students":%d,"guardians":%d}`, result.Students, result.Guardians)),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.users.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed", zap.Error(err))
	}

	s.logger.Info("demo data seeded",
		zap.Int("students", result.Students),
		zap.Int("guardians", result.Guardians),
		zap.Int("categories", result.Categories))
	return result, nil
}
