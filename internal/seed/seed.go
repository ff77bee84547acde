// Package seed imports the club roster from a YAML file. There is no
// self-service signup; this is the only way members enter the system.
package seed

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/clubware/taskhub/internal/directory"
	"github.com/clubware/taskhub/internal/models"
	"github.com/clubware/taskhub/internal/repository"
	"github.com/clubware/taskhub/internal/utils"
)

// MemberEntry is one roster row in the seed file. ReportsTo refers to
// the manager by email so the file stays stable across databases.
type MemberEntry struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	Position  string `yaml:"position"`
	Domain    string `yaml:"domain"`
	Subdomain string `yaml:"subdomain"`
	Level     *int   `yaml:"level"`
	ReportsTo string `yaml:"reports_to"`
	Password  string `yaml:"password"`
}

// Roster is the parsed seed file.
type Roster struct {
	Members []MemberEntry `yaml:"members"`
}

// Result reports what a seeding run changed.
type Result struct {
	Created int
	Updated int

	// GeneratedPasswords maps email to the temporary password issued to
	// members seeded without one. Callers print these exactly once.
	GeneratedPasswords map[string]string
}

// ParseRoster reads and validates a roster document.
func ParseRoster(r io.Reader) (*Roster, error) {
	var roster Roster
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	if len(roster.Members) == 0 {
		return nil, errors.New("roster has no members")
	}

	seen := make(map[string]bool, len(roster.Members))
	for i := range roster.Members {
		entry := &roster.Members[i]
		entry.Email = strings.ToLower(strings.TrimSpace(entry.Email))
		entry.ReportsTo = strings.ToLower(strings.TrimSpace(entry.ReportsTo))

		if entry.Email == "" {
			return nil, fmt.Errorf("roster entry %d has no email", i+1)
		}
		if seen[entry.Email] {
			return nil, fmt.Errorf("duplicate roster email %q", entry.Email)
		}
		seen[entry.Email] = true

		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("roster entry %q has no name", entry.Email)
		}
		if !models.ValidDomain(models.Domain(entry.Domain)) {
			return nil, fmt.Errorf("roster entry %q has unknown domain %q", entry.Email, entry.Domain)
		}
		if !models.ValidSubdomain(models.Subdomain(entry.Subdomain)) {
			return nil, fmt.Errorf("roster entry %q has unknown subdomain %q", entry.Email, entry.Subdomain)
		}
		if entry.Level == nil {
			return nil, fmt.Errorf("roster entry %q has no level", entry.Email)
		}
		if *entry.Level < models.LevelPresident {
			return nil, fmt.Errorf("roster entry %q has negative level %d", entry.Email, *entry.Level)
		}
	}

	return &roster, nil
}

// ParseRosterFile is ParseRoster over a file path.
func ParseRosterFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()

	return ParseRoster(f)
}

// Seeder upserts roster members into the user store.
type Seeder struct {
	userRepo repository.UserRepository
	dir      *directory.Directory
	logger   *slog.Logger
}

// NewSeeder creates a new Seeder. dir may be nil when no server is
// running against the same store.
func NewSeeder(userRepo repository.UserRepository, dir *directory.Directory, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		userRepo: userRepo,
		dir:      dir,
		logger:   logger,
	}
}

// Apply upserts every roster member, matching existing users by email.
// Existing password hashes are kept unless the entry carries a new
// password; new members without one get a generated temporary password.
func (s *Seeder) Apply(roster *Roster) (*Result, error) {
	result := &Result{
		GeneratedPasswords: make(map[string]string),
	}

	// First pass: upsert the users themselves so every manager row
	// exists before reports_to is resolved.
	idByEmail := make(map[string]uint64, len(roster.Members))
	for _, entry := range roster.Members {
		id, created, err := s.upsertMember(entry, result)
		if err != nil {
			return nil, err
		}
		idByEmail[entry.Email] = id
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	// Second pass: resolve reports_to now that all IDs are known.
	for _, entry := range roster.Members {
		if err := s.linkManager(entry, idByEmail); err != nil {
			return nil, err
		}
	}

	s.checkLevelOrder(roster)

	if s.dir != nil {
		s.dir.Invalidate()
	}

	return result, nil
}

func (s *Seeder) upsertMember(entry MemberEntry, result *Result) (uint64, bool, error) {
	existing, err := s.userRepo.FindByEmail(entry.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, fmt.Errorf("failed to look up %q: %w", entry.Email, err)
	}

	if existing != nil && err == nil {
		existing.Name = entry.Name
		existing.Phone = entry.Phone
		existing.Position = entry.Position
		existing.Domain = models.Domain(entry.Domain)
		existing.Subdomain = models.Subdomain(entry.Subdomain)
		existing.Level = *entry.Level
		if entry.Password != "" {
			hash, err := hashPassword(entry.Password)
			if err != nil {
				return 0, false, err
			}
			existing.PasswordHash = hash
		}
		if err := s.userRepo.Update(existing); err != nil {
			return 0, false, fmt.Errorf("failed to update %q: %w", entry.Email, err)
		}
		return existing.ID, false, nil
	}

	password := entry.Password
	if password == "" {
		password, err = utils.GenerateTempPassword()
		if err != nil {
			return 0, false, fmt.Errorf("failed to generate password for %q: %w", entry.Email, err)
		}
		result.GeneratedPasswords[entry.Email] = password
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, false, err
	}

	user := &models.User{
		Name:         entry.Name,
		Email:        entry.Email,
		Phone:        entry.Phone,
		PasswordHash: hash,
		Position:     entry.Position,
		Domain:       models.Domain(entry.Domain),
		Subdomain:    models.Subdomain(entry.Subdomain),
		Level:        *entry.Level,
	}
	if err := s.userRepo.Create(user); err != nil {
		return 0, false, fmt.Errorf("failed to create %q: %w", entry.Email, err)
	}
	return user.ID, true, nil
}

func (s *Seeder) linkManager(entry MemberEntry, idByEmail map[string]uint64) error {
	user, err := s.userRepo.FindByEmail(entry.Email)
	if err != nil {
		return fmt.Errorf("failed to reload %q: %w", entry.Email, err)
	}

	if entry.ReportsTo == "" {
		if user.ReportsTo != nil {
			user.ReportsTo = nil
			if err := s.userRepo.Update(user); err != nil {
				return fmt.Errorf("failed to clear manager of %q: %w", entry.Email, err)
			}
		}
		return nil
	}

	managerID, ok := idByEmail[entry.ReportsTo]
	if !ok {
		manager, err := s.userRepo.FindByEmail(entry.ReportsTo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("roster entry %q reports to unknown member %q", entry.Email, entry.ReportsTo)
			}
			return fmt.Errorf("failed to look up manager %q: %w", entry.ReportsTo, err)
		}
		managerID = manager.ID
	}

	if managerID == user.ID {
		return fmt.Errorf("roster entry %q reports to itself", entry.Email)
	}

	if user.ReportsTo == nil || *user.ReportsTo != managerID {
		user.ReportsTo = &managerID
		if err := s.userRepo.Update(user); err != nil {
			return fmt.Errorf("failed to set manager of %q: %w", entry.Email, err)
		}
	}
	return nil
}

// checkLevelOrder warns when a member outranks their own manager.
// Assignment rules assume levels never decrease down a reporting chain,
// so an inversion is almost always a data entry mistake.
func (s *Seeder) checkLevelOrder(roster *Roster) {
	levelByEmail := make(map[string]int, len(roster.Members))
	for _, entry := range roster.Members {
		levelByEmail[entry.Email] = *entry.Level
	}

	for _, entry := range roster.Members {
		if entry.ReportsTo == "" {
			continue
		}
		managerLevel, ok := levelByEmail[entry.ReportsTo]
		if !ok {
			continue
		}
		if *entry.Level < managerLevel {
			s.logger.Warn("roster level inversion",
				"member", entry.Email, "level", *entry.Level,
				"manager", entry.ReportsTo, "manager_level", managerLevel)
		}
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
